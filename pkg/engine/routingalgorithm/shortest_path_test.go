package routingalgorithm

import (
	"context"
	"math"
	"testing"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// p, v, q, w, r, f around lake washington.
func bellevueGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 47.58677, -122.18003),
		datastructure.NewNode(1, 47.5788, -122.2332),
		datastructure.NewNode(2, 47.64029, -122.17226),
		datastructure.NewNode(3, 47.62734, -122.14634),
		datastructure.NewNode(4, 47.60350, -122.18170),
		datastructure.NewNode(5, 47.57074, -122.16883),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 1, 10, false),
		datastructure.NewEdge(1, 4, 3, false),
		datastructure.NewEdge(1, 2, 6, false),
		datastructure.NewEdge(2, 3, 5, false),
		datastructure.NewEdge(3, 4, 5, false),
		datastructure.NewEdge(3, 5, 15, false),
	}
	g, err := datastructure.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestShortestPathDijkstra(t *testing.T) {
	g := bellevueGraph(t)
	require.False(t, g.HeuristicSafe())

	rt := NewRouteAlgorithm(g, 0)
	res, err := rt.ShortestPath(context.Background(), 0, 5)
	require.NoError(t, err)

	assert.Equal(t, []int32{0, 1, 4, 3, 5}, res.Nodes)
	assert.Equal(t, []int32{0, 1, 4, 5}, res.Edges)
	assert.InDelta(t, 33.0, res.Distance, 1e-9)

	back, err := rt.ShortestPath(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 3, 4, 1, 0}, back.Nodes)
	assert.InDelta(t, 33.0, back.Distance, 1e-9)
}

func TestShortestPathSameNode(t *testing.T) {
	rt := NewRouteAlgorithm(bellevueGraph(t), 0)
	res, err := rt.ShortestPath(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, res.Nodes)
	assert.Empty(t, res.Edges)
	assert.Equal(t, 0.0, res.Distance)
}

func TestShortestPathDetourCheaper(t *testing.T) {
	// a-b 1, b-c 1, a-c 5: a to c goes through b.
	nodes := []datastructure.Node{
		datastructure.NewNode(1, 0, 0),
		datastructure.NewNode(2, 0, 1),
		datastructure.NewNode(3, 0, 2),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 1, 1, false),
		datastructure.NewEdge(1, 2, 1, false),
		datastructure.NewEdge(0, 2, 5, false),
	}
	g, err := datastructure.NewGraph(nodes, edges)
	require.NoError(t, err)

	res, err := NewRouteAlgorithm(g, 0).ShortestPath(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, res.Nodes)
	assert.Equal(t, []int32{0, 1}, res.Edges)
	assert.Equal(t, 2.0, res.Distance)
}

func TestShortestPathNoPath(t *testing.T) {
	nodes := []datastructure.Node{
		datastructure.NewNode(1, 17.3850, 78.4867),
		datastructure.NewNode(2, 17.3860, 78.4877),
		datastructure.NewNode(3, 17.4401, 78.3489),
		datastructure.NewNode(4, 17.4411, 78.3499),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 1, 200, false),
		datastructure.NewEdge(2, 3, 200, true),
	}
	g, err := datastructure.NewGraph(nodes, edges)
	require.NoError(t, err)
	rt := NewRouteAlgorithm(g, 0)

	_, err = rt.ShortestPath(context.Background(), 0, 3)
	assert.ErrorIs(t, err, ErrNoPathFound)

	// against the oneway direction
	_, err = rt.ShortestPath(context.Background(), 3, 2)
	assert.ErrorIs(t, err, ErrNoPathFound)

	res, err := rt.ShortestPath(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.Distance)
}

func TestShortestPathCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouteAlgorithm(bellevueGraph(t), 0).ShortestPath(ctx, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShortestPathSettledLimit(t *testing.T) {
	rt := NewRouteAlgorithm(bellevueGraph(t), 2)
	_, err := rt.ShortestPath(context.Background(), 0, 5)
	assert.ErrorIs(t, err, ErrNoPathFound)
}

// randomGraph grid-ish random graph whose edge lengths are never shorter than the great-circle
// distance, so a* is used.
func randomGraph(t *testing.T, rd *rand.Rand, n, m int) *datastructure.Graph {
	t.Helper()
	nodes := make([]datastructure.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = datastructure.NewNode(int64(i+1), 17.30+rd.Float64()*0.2, 78.35+rd.Float64()*0.2)
	}
	edges := make([]datastructure.Edge, 0, m)
	for i := 0; i < m; i++ {
		from, to := int32(rd.Intn(n)), int32(rd.Intn(n))
		a, b := nodes[from], nodes[to]
		length := geo.HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon) * (1 + rd.Float64())
		edges = append(edges, datastructure.NewEdge(from, to, length, rd.Intn(3) == 0))
	}
	g, err := datastructure.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func bellmanFord(g *datastructure.Graph, from int32) []float64 {
	dist := make([]float64, g.NumNodes())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[from] = 0
	for iter := 0; iter < g.NumNodes(); iter++ {
		changed := false
		for u := int32(0); u < int32(g.NumNodes()); u++ {
			if math.IsInf(dist[u], 1) {
				continue
			}
			for _, arc := range g.Neighbors(u) {
				if dist[u]+arc.Weight < dist[arc.Head] {
					dist[arc.Head] = dist[u] + arc.Weight
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return dist
}

func TestShortestPathMatchesBellmanFord(t *testing.T) {
	rd := rand.New(rand.NewSource(17))

	for round := 0; round < 5; round++ {
		g := randomGraph(t, rd, 80, 240)
		require.True(t, g.HeuristicSafe())
		rt := NewRouteAlgorithm(g, 0)

		for q := 0; q < 20; q++ {
			from, to := int32(rd.Intn(g.NumNodes())), int32(rd.Intn(g.NumNodes()))
			want := bellmanFord(g, from)[to]

			for name, search := range map[string]func(context.Context, int32, int32) (PathResult, error){
				"astar":    rt.ShortestPathAStar,
				"dijkstra": rt.ShortestPathDijkstra,
			} {
				res, err := search(context.Background(), from, to)
				if math.IsInf(want, 1) {
					assert.ErrorIs(t, err, ErrNoPathFound, name)
					continue
				}
				require.NoError(t, err, name)
				assert.InDelta(t, want, res.Distance, 1e-6, name)

				// the reported edges add up to the reported distance
				sum := 0.0
				for _, e := range res.Edges {
					sum += g.GetEdge(e).Length
				}
				assert.InDelta(t, res.Distance, sum, 1e-6, name)
				assert.Equal(t, from, res.Nodes[0], name)
				assert.Equal(t, to, res.Nodes[len(res.Nodes)-1], name)
			}
		}
	}
}
