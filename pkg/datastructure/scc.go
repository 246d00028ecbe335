package datastructure

import (
	"github.com/lintang-b-s/offlinenav/pkg/util"
)

// Components strongly connected components of a graph plus its condensation dag.
type Components struct {
	scc        []int32
	count      int
	condensAdj [][]int32
}

// ComputeComponents kosaraju scc. first pass records dfs finish order on the forward arcs,
// second pass walks the reversed arcs in reverse finish order, every tree is one component.
func ComputeComponents(g *Graph) *Components {
	n := int32(g.NumNodes())
	components := make([][]int32, 0)

	order := make([]int32, 0, n)
	visited := make([]bool, n)

	for i := int32(0); i < n; i++ {
		if !visited[i] {
			dfs(g, i, &order, visited, false)
		}
	}

	order = util.ReverseG[int32](order)

	// reset visited
	visited = make([]bool, n)

	for _, v := range order {
		if !visited[v] {
			component := make([]int32, 0)
			dfs(g, v, &component, visited, true)
			components = append(components, component)
		}
	}

	c := &Components{
		scc:   make([]int32, n),
		count: len(components),
	}
	for i, component := range components {
		for _, v := range component {
			c.scc[v] = int32(i)
		}
	}

	// add edges to condensation graph
	c.condensAdj = make([][]int32, len(components))
	seen := make(map[[2]int32]struct{})
	for v := int32(0); v < n; v++ {
		for _, arc := range g.Neighbors(v) {
			from, to := c.scc[v], c.scc[arc.Head]
			if from == to {
				continue
			}
			if _, ok := seen[[2]int32{from, to}]; ok {
				continue
			}
			seen[[2]int32{from, to}] = struct{}{}
			c.condensAdj[from] = append(c.condensAdj[from], to)
		}
	}

	return c
}

func dfs(g *Graph, v int32, output *[]int32,
	visited []bool, reversed bool) {
	visited[v] = true

	if !reversed {
		for _, arc := range g.Neighbors(v) {
			if !visited[arc.Head] {
				dfs(g, arc.Head, output, visited, reversed)
			}
		}
	} else {
		for _, arc := range g.InNeighbors(v) {
			if !visited[arc.Head] {
				dfs(g, arc.Head, output, visited, reversed)
			}
		}
	}

	*output = append(*output, v)
}

func (c *Components) Count() int {
	return c.count
}

// ComponentOf component id of the node index.
func (c *Components) ComponentOf(idx int32) int32 {
	return c.scc[idx]
}

// Reachable whether a directed path from node index from to node index to exists.
// answered on the condensation dag, which is usually far smaller than the graph.
func (c *Components) Reachable(from, to int32) bool {
	src, dst := c.scc[from], c.scc[to]
	if src == dst {
		return true
	}

	visited := make(map[int32]struct{})
	visited[src] = struct{}{}
	queue := []int32{src}
	for len(queue) > 0 {
		comp := queue[0]
		queue = queue[1:]
		for _, next := range c.condensAdj[comp] {
			if next == dst {
				return true
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return false
}
