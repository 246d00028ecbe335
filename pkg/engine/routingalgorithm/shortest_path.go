package routingalgorithm

import (
	"context"
	"errors"
	"fmt"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/util"
)

var (
	ErrNoPathFound = errors.New("no path found")
)

const (
	ctxCheckInterval = 1024
)

type RouteAlgorithm struct {
	graph           Graph
	maxSettledNodes int
}

// NewRouteAlgorithm maxSettledNodes bounds the nodes one search may settle, 0 means the node count.
func NewRouteAlgorithm(graph Graph, maxSettledNodes int) *RouteAlgorithm {
	if maxSettledNodes <= 0 {
		maxSettledNodes = graph.NumNodes()
	}
	return &RouteAlgorithm{graph: graph, maxSettledNodes: maxSettledNodes}
}

// PathResult node indexes from source to target, the edge id of every traversed arc and the total length (meter).
type PathResult struct {
	Nodes    []int32
	Edges    []int32
	Distance float64
}

type cameFromPair struct {
	EdgeID int32
	NodeID int32
}

// ShortestPath globally shortest path. a* with the great-circle heuristic when the graph is
// heuristic-safe, plain dijkstra otherwise.
func (rt *RouteAlgorithm) ShortestPath(ctx context.Context, from, to int32) (PathResult, error) {
	if rt.graph.HeuristicSafe() {
		return rt.ShortestPathAStar(ctx, from, to)
	}
	return rt.ShortestPathDijkstra(ctx, from, to)
}

func (rt *RouteAlgorithm) ShortestPathDijkstra(ctx context.Context, from, to int32) (PathResult, error) {
	return rt.search(ctx, from, to, func(int32) float64 { return 0 })
}

// https://www.cs.princeton.edu/courses/archive/spr06/cos423/Handouts/GH05.pdf
func (rt *RouteAlgorithm) ShortestPathAStar(ctx context.Context, from, to int32) (PathResult, error) {
	target := rt.graph.GetNode(to)
	return rt.search(ctx, from, to, func(idx int32) float64 {
		n := rt.graph.GetNode(idx)
		return datastructure.HeuristicSlack * geo.HaversineMeters(n.Lat, n.Lon, target.Lat, target.Lon)
	})
}

// search label-setting search ordered by cost + heuristic. the heuristic must be consistent,
// a settled node is then never improved again.
func (rt *RouteAlgorithm) search(ctx context.Context, from, to int32, heuristic func(int32) float64) (PathResult, error) {
	if err := ctx.Err(); err != nil {
		return PathResult{}, err
	}
	if from == to {
		return PathResult{Nodes: []int32{from}, Edges: []int32{}, Distance: 0}, nil
	}

	pq := datastructure.NewMinHeap[int32]()

	costSoFar := make(map[int32]float64)
	costSoFar[from] = 0.0

	cameFrom := make(map[int32]cameFromPair)
	cameFrom[from] = cameFromPair{-1, -1}

	settled := make(map[int32]struct{})

	pq.Insert(datastructure.NewPriorityQueueNode(heuristic(from), from))

	for pq.Size() > 0 {
		current, err := pq.ExtractMin()
		if err != nil {
			break
		}
		if current.Item == to {
			return rt.buildPath(from, to, cameFrom, costSoFar[to]), nil
		}

		settled[current.Item] = struct{}{}
		if len(settled)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return PathResult{}, err
			}
		}
		if len(settled) > rt.maxSettledNodes {
			return PathResult{}, fmt.Errorf("%w: search limit of %d settled nodes reached", ErrNoPathFound, rt.maxSettledNodes)
		}

		for _, arc := range rt.graph.Neighbors(current.Item) {
			if _, ok := settled[arc.Head]; ok {
				continue
			}

			newCost := costSoFar[current.Item] + arc.Weight
			oldCost, ok := costSoFar[arc.Head]
			if ok && newCost >= oldCost {
				continue
			}

			costSoFar[arc.Head] = newCost
			cameFrom[arc.Head] = cameFromPair{arc.EdgeID, current.Item}
			neighborNode := datastructure.NewPriorityQueueNode(newCost+heuristic(arc.Head), arc.Head)
			if !ok {
				pq.Insert(neighborNode)
			} else {
				pq.DecreaseKey(neighborNode)
			}
		}
	}

	return PathResult{}, ErrNoPathFound
}

func (rt *RouteAlgorithm) buildPath(from, to int32, cameFrom map[int32]cameFromPair, dist float64) PathResult {
	nodes := []int32{}
	edges := []int32{}
	for curr := to; curr != from; curr = cameFrom[curr].NodeID {
		nodes = append(nodes, curr)
		edges = append(edges, cameFrom[curr].EdgeID)
	}
	nodes = append(nodes, from)

	return PathResult{
		Nodes:    util.ReverseG(nodes),
		Edges:    util.ReverseG(edges),
		Distance: dist,
	}
}
