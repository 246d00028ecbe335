package datastructure

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/offlinenav/pkg/geo"
)

var (
	ErrMalformedGraph = errors.New("malformed graph")
	ErrNodeNotFound   = errors.New("node not found")
)

const (
	// arc lengths may be a little shorter than the great-circle distance of their endpoints
	// (rounded lengths, different earth radius). the a* heuristic is scaled by this factor and the
	// graph is heuristic-safe when every arc is at least this fraction of the great-circle distance.
	HeuristicSlack = 0.99
)

type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

func NewNode(id int64, lat, lon float64) Node {
	return Node{ID: id, Lat: lat, Lon: lon}
}

// Edge road segment between two dense node indexes. Length in meter.
// a non-oneway edge is expanded into two arcs.
type Edge struct {
	From   int32
	To     int32
	Length float64
	Oneway bool
}

func NewEdge(from, to int32, length float64, oneway bool) Edge {
	return Edge{From: from, To: to, Length: length, Oneway: oneway}
}

// Arc directed adjacency record. EdgeID is the index of the Edge it was expanded from.
type Arc struct {
	Head   int32
	Weight float64
	EdgeID int32
}

type Neighbor struct {
	NodeID int64
	Weight float64
}

// Graph immutable road graph in compressed sparse row form.
// outgoing arcs of node i are arcs[firstOut[i]:firstOut[i+1]], incoming arcs of node i are
// inArcs[firstIn[i]:firstIn[i+1]] with Head being the tail node.
type Graph struct {
	nodes    []Node
	idIndex  map[int64]int32
	edges    []Edge
	firstOut []int32
	arcs     []Arc
	firstIn  []int32
	inArcs   []Arc

	heuristicSafe bool
	components    *Components
}

// NewGraph validates nodes & edges and builds the csr adjacency.
func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	idIndex := make(map[int64]int32, len(nodes))
	for i, n := range nodes {
		if !geo.IsValidCoordinate(n.Lat, n.Lon) {
			return nil, fmt.Errorf("%w: node %d has invalid coordinate (%f, %f)", ErrMalformedGraph, n.ID, n.Lat, n.Lon)
		}
		if _, ok := idIndex[n.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrMalformedGraph, n.ID)
		}
		idIndex[n.ID] = int32(i)
	}

	numNodes := int32(len(nodes))
	outDegree := make([]int32, numNodes+1)
	inDegree := make([]int32, numNodes+1)
	heuristicSafe := true
	for i, e := range edges {
		if e.From < 0 || e.From >= numNodes || e.To < 0 || e.To >= numNodes {
			return nil, fmt.Errorf("%w: edge %d references a missing node", ErrMalformedGraph, i)
		}
		if math.IsNaN(e.Length) || math.IsInf(e.Length, 0) || e.Length < 0 {
			return nil, fmt.Errorf("%w: edge %d has invalid length %f", ErrMalformedGraph, i, e.Length)
		}

		from, to := nodes[e.From], nodes[e.To]
		if e.Length < HeuristicSlack*geo.HaversineMeters(from.Lat, from.Lon, to.Lat, to.Lon) {
			heuristicSafe = false
		}

		outDegree[e.From]++
		inDegree[e.To]++
		if !e.Oneway {
			outDegree[e.To]++
			inDegree[e.From]++
		}
	}

	firstOut := prefixSum(outDegree)
	firstIn := prefixSum(inDegree)
	arcs := make([]Arc, firstOut[numNodes])
	inArcs := make([]Arc, firstIn[numNodes])

	outPos := make([]int32, numNodes)
	inPos := make([]int32, numNodes)
	copy(outPos, firstOut[:numNodes])
	copy(inPos, firstIn[:numNodes])

	addArc := func(tail, head int32, weight float64, edgeID int32) {
		arcs[outPos[tail]] = Arc{Head: head, Weight: weight, EdgeID: edgeID}
		outPos[tail]++
		inArcs[inPos[head]] = Arc{Head: tail, Weight: weight, EdgeID: edgeID}
		inPos[head]++
	}

	for i, e := range edges {
		addArc(e.From, e.To, e.Length, int32(i))
		if !e.Oneway {
			addArc(e.To, e.From, e.Length, int32(i))
		}
	}

	g := &Graph{
		nodes:         nodes,
		idIndex:       idIndex,
		edges:         edges,
		firstOut:      firstOut,
		arcs:          arcs,
		firstIn:       firstIn,
		inArcs:        inArcs,
		heuristicSafe: heuristicSafe,
	}
	g.components = ComputeComponents(g)
	return g, nil
}

// prefixSum turns per-node degrees into csr offsets, offsets[i+1]-offsets[i] = degree[i].
func prefixSum(degree []int32) []int32 {
	offsets := make([]int32, len(degree))
	var sum int32
	for i := 0; i < len(degree)-1; i++ {
		sum += degree[i]
		offsets[i+1] = sum
	}
	return offsets
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

func (g *Graph) NumArcs() int {
	return len(g.arcs)
}

func (g *Graph) GetNode(idx int32) Node {
	return g.nodes[idx]
}

func (g *Graph) GetEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

// Nodes read-only view of every node, in index order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// NodeIndex dense index of the node with the stable id.
func (g *Graph) NodeIndex(id int64) (int32, bool) {
	idx, ok := g.idIndex[id]
	return idx, ok
}

// Neighbors outgoing arcs of the node. the returned slice aliases the graph and must not be modified.
func (g *Graph) Neighbors(idx int32) []Arc {
	return g.arcs[g.firstOut[idx]:g.firstOut[idx+1]]
}

// InNeighbors incoming arcs of the node, Head is the tail of the arc.
func (g *Graph) InNeighbors(idx int32) []Arc {
	return g.inArcs[g.firstIn[idx]:g.firstIn[idx+1]]
}

// NeighborsByID outgoing (node id, weight) pairs of the node with the stable id.
func (g *Graph) NeighborsByID(id int64) ([]Neighbor, error) {
	idx, ok := g.idIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}

	arcs := g.Neighbors(idx)
	neighbors := make([]Neighbor, 0, len(arcs))
	for _, arc := range arcs {
		neighbors = append(neighbors, Neighbor{NodeID: g.nodes[arc.Head].ID, Weight: arc.Weight})
	}
	return neighbors, nil
}

// HeuristicSafe true when no arc is shorter than HeuristicSlack times the great-circle distance
// of its endpoints, the scaled haversine heuristic then never overestimates.
func (g *Graph) HeuristicSafe() bool {
	return g.heuristicSafe
}

func (g *Graph) Components() *Components {
	return g.components
}

// RtreeEntries one spatial index record per node.
func (g *Graph) RtreeEntries() []RtreeEntry {
	entries := make([]RtreeEntry, len(g.nodes))
	for i, n := range g.nodes {
		entries[i] = NewRtreeEntry(n.ID, n.Lat, n.Lon)
	}
	return entries
}
