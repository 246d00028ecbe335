package datastructure

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNodes() []Node {
	return []Node{
		NewNode(1, 17.3850, 78.4867),
		NewNode(2, 17.3860, 78.4877),
		NewNode(3, 17.3870, 78.4887),
		NewNode(4, 17.4000, 78.5000),
	}
}

func TestNewGraph(t *testing.T) {
	edges := []Edge{
		NewEdge(0, 1, 200, false),
		NewEdge(1, 2, 200, true),
	}
	g, err := NewGraph(sampleNodes(), edges)
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, 3, g.NumArcs())

	assert.Equal(t, []Arc{{Head: 1, Weight: 200, EdgeID: 0}}, g.Neighbors(0))
	assert.ElementsMatch(t, []Arc{{Head: 0, Weight: 200, EdgeID: 0}, {Head: 2, Weight: 200, EdgeID: 1}}, g.Neighbors(1))
	assert.Empty(t, g.Neighbors(2))
	assert.Empty(t, g.Neighbors(3))
	assert.Equal(t, []Arc{{Head: 1, Weight: 200, EdgeID: 1}}, g.InNeighbors(2))

	idx, ok := g.NodeIndex(3)
	assert.True(t, ok)
	assert.Equal(t, int32(2), idx)
	_, ok = g.NodeIndex(99)
	assert.False(t, ok)

	neighbors, err := g.NeighborsByID(2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Neighbor{{NodeID: 1, Weight: 200}, {NodeID: 3, Weight: 200}}, neighbors)

	_, err = g.NeighborsByID(99)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	idx, ok = g.NodeIndex(4)
	require.True(t, ok)
	assert.Equal(t, 17.4, g.Nodes()[idx].Lat)

	assert.True(t, g.HeuristicSafe())
	assert.Len(t, g.RtreeEntries(), 4)
}

func TestHeuristicSafe(t *testing.T) {
	nodes := sampleNodes()
	exact := geo.HaversineMeters(nodes[0].Lat, nodes[0].Lon, nodes[1].Lat, nodes[1].Lon)

	g, err := NewGraph(nodes, []Edge{NewEdge(0, 1, exact, false)})
	require.NoError(t, err)
	assert.True(t, g.HeuristicSafe())

	g, err = NewGraph(nodes, []Edge{NewEdge(0, 1, 1, false)})
	require.NoError(t, err)
	assert.False(t, g.HeuristicSafe())
}

func TestNewGraphMalformed(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
	}{
		{
			name:  "latitude out of range",
			nodes: []Node{NewNode(1, 91, 78.4867)},
		},
		{
			name:  "longitude out of range",
			nodes: []Node{NewNode(1, 17.3850, 181)},
		},
		{
			name:  "duplicate node id",
			nodes: []Node{NewNode(1, 17.3850, 78.4867), NewNode(1, 17.3860, 78.4877)},
		},
		{
			name:  "edge endpoint without node",
			nodes: sampleNodes(),
			edges: []Edge{NewEdge(0, 10, 5, false)},
		},
		{
			name:  "negative length",
			nodes: sampleNodes(),
			edges: []Edge{NewEdge(0, 1, -5, false)},
		},
		{
			name:  "nan length",
			nodes: sampleNodes(),
			edges: []Edge{NewEdge(0, 1, math.NaN(), false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes, tt.edges)
			assert.ErrorIs(t, err, ErrMalformedGraph)
		})
	}
}

func TestComponents(t *testing.T) {
	nodes := make([]Node, 5)
	for i := 0; i < 5; i++ {
		nodes[i] = NewNode(int64(i), 17.38+float64(i)*0.001, 78.48)
	}
	edges := []Edge{
		NewEdge(0, 1, 1, true),
		NewEdge(1, 2, 1, true),
		NewEdge(1, 4, 1, true),
		NewEdge(2, 3, 1, true),
		NewEdge(3, 2, 1, true),
		NewEdge(4, 0, 1, true),
	}
	g, err := NewGraph(nodes, edges)
	require.NoError(t, err)

	scc := g.Components()
	assert.Equal(t, 2, scc.Count())
	assert.Equal(t, scc.ComponentOf(0), scc.ComponentOf(1))
	assert.Equal(t, scc.ComponentOf(0), scc.ComponentOf(4))
	assert.Equal(t, scc.ComponentOf(2), scc.ComponentOf(3))
	assert.NotEqual(t, scc.ComponentOf(0), scc.ComponentOf(2))

	assert.True(t, scc.Reachable(0, 3))
	assert.True(t, scc.Reachable(4, 1))
	assert.False(t, scc.Reachable(2, 0))
}

const sampleGraphML = `<?xml version='1.0' encoding='utf-8'?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="d4" for="node" attr.name="y" attr.type="string" />
  <key id="d5" for="node" attr.name="x" attr.type="string" />
  <key id="d9" for="edge" attr.name="length" attr.type="string" />
  <key id="d10" for="edge" attr.name="name" attr.type="string" />
  <key id="d11" for="edge" attr.name="highway" attr.type="string" />
  <key id="d12" for="edge" attr.name="osmid" attr.type="string" />
  <graph edgedefault="directed">
    <node id="101"><data key="d4">17.3850</data><data key="d5">78.4867</data></node>
    <node id="102"><data key="d4">17.3860</data><data key="d5">78.4877</data></node>
    <node id="103"><data key="d4">17.3870</data><data key="d5">78.4887</data></node>
    <edge source="101" target="102" id="0"><data key="d9">153.2</data><data key="d10">Tank Bund Road</data><data key="d11">primary</data><data key="d12">5001</data></edge>
    <edge source="102" target="101" id="0"><data key="d9">153.2</data><data key="d10">Tank Bund Road</data><data key="d11">primary</data><data key="d12">5001</data></edge>
    <edge source="102" target="103" id="0"><data key="d10">['Road No. 1', 'Road No. 2']</data><data key="d11">['residential', 'tertiary']</data><data key="d12">[7001, 7002]</data></edge>
  </graph>
</graphml>`

func TestReadGraphML(t *testing.T) {
	raw, err := ReadGraphML(strings.NewReader(sampleGraphML))
	require.NoError(t, err)

	require.Len(t, raw.Nodes, 3)
	require.Len(t, raw.Edges, 3)
	assert.Equal(t, NewNode(101, 17.3850, 78.4867), raw.Nodes[0])

	assert.Equal(t, NewEdge(0, 1, 153.2, true), raw.Edges[0])
	assert.Equal(t, EdgeMetadata{StreetName: "Tank Bund Road", RoadClass: "primary", OsmWayID: 5001}, raw.Metadata[0])

	computed := geo.HaversineMeters(17.3860, 78.4877, 17.3870, 78.4887)
	assert.InDelta(t, computed, raw.Edges[2].Length, 1e-9)
	assert.Equal(t, EdgeMetadata{StreetName: "Road No. 1; Road No. 2", RoadClass: "residential", OsmWayID: 7001}, raw.Metadata[2])

	g, meta, err := raw.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumArcs())
	assert.Equal(t, 3, meta.Len())

	t.Run("undirected graph expands edges", func(t *testing.T) {
		raw, err := ReadGraphML(strings.NewReader(strings.Replace(sampleGraphML, `edgedefault="directed"`, `edgedefault="undirected"`, 1)))
		require.NoError(t, err)
		g, _, err := raw.Build()
		require.NoError(t, err)
		assert.Equal(t, 6, g.NumArcs())
	})

	t.Run("edge endpoint without node", func(t *testing.T) {
		broken := strings.Replace(sampleGraphML, `target="103"`, `target="999"`, 1)
		_, err := ReadGraphML(strings.NewReader(broken))
		assert.ErrorIs(t, err, ErrMalformedGraph)
	})
}

func TestReadNodeLinkJSON(t *testing.T) {
	doc := `{
		"directed": false,
		"nodes": [
			{"id": 1, "y": 17.3850, "x": 78.4867},
			{"id": "2", "y": 17.3860, "x": 78.4877}
		],
		"links": [
			{"source": 1, "target": "2", "length": 10.5, "name": ["Abids Road", "MG Road"], "highway": "primary", "oneway": true, "osmid": 42},
			{"source": 2, "target": 1, "oneway": false}
		]
	}`

	raw, err := ReadNodeLinkJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, raw.Nodes, 2)
	require.Len(t, raw.Edges, 2)

	assert.Equal(t, NewEdge(0, 1, 10.5, true), raw.Edges[0])
	assert.Equal(t, EdgeMetadata{StreetName: "Abids Road; MG Road", RoadClass: "primary", OsmWayID: 42}, raw.Metadata[0])
	assert.False(t, raw.Edges[1].Oneway)
	assert.InDelta(t, geo.HaversineMeters(17.3860, 78.4877, 17.3850, 78.4867), raw.Edges[1].Length, 1e-9)

	t.Run("nested graph object", func(t *testing.T) {
		nested := `{"metadata": {"title": "hyd"}, "graph": {"directed": true, "nodes": [{"id": 7, "lat": 17.1, "lon": 78.1}, {"id": 8, "lat": 17.2, "lon": 78.2}], "links": [{"source": 7, "target": 8, "length": 3}]}}`
		raw, err := ReadNodeLinkJSON(strings.NewReader(nested))
		require.NoError(t, err)
		require.Len(t, raw.Edges, 1)
		assert.True(t, raw.Edges[0].Oneway)
	})

	t.Run("missing coordinate", func(t *testing.T) {
		_, err := ReadNodeLinkJSON(strings.NewReader(`{"nodes": [{"id": 1}], "links": []}`))
		assert.ErrorIs(t, err, ErrMalformedGraph)
	})
}

func TestNativeGraphFile(t *testing.T) {
	raw := NewRawGraph()
	for _, n := range sampleNodes() {
		require.NoError(t, raw.AddNode(n.ID, n.Lat, n.Lon))
	}
	require.NoError(t, raw.AddEdge(1, 2, 200, false, EdgeMetadata{StreetName: "Tank Bund Road"}))
	require.NoError(t, raw.AddEdge(2, 3, 150, true, EdgeMetadata{}))
	assert.ErrorIs(t, raw.AddEdge(2, 99, 150, true, EdgeMetadata{}), ErrMalformedGraph)

	path := filepath.Join(t.TempDir(), "hyderabad.graph")
	require.NoError(t, WriteGraphFile(path, raw))

	g, meta, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, raw.Nodes, g.Nodes())
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, NewEdge(1, 2, 150, true), g.GetEdge(1))
	assert.Equal(t, 0, meta.Len())

	t.Run("unsupported extension", func(t *testing.T) {
		other := filepath.Join(t.TempDir(), "graph.csv")
		require.NoError(t, os.WriteFile(other, []byte("a,b"), 0o644))
		_, _, err := LoadGraph(other)
		assert.ErrorIs(t, err, ErrUnsupportedGraphFormat)
	})

	t.Run("corrupt file", func(t *testing.T) {
		corrupt := filepath.Join(t.TempDir(), "corrupt.graph")
		require.NoError(t, os.WriteFile(corrupt, []byte("not a graph"), 0o644))
		_, _, err := LoadGraph(corrupt)
		assert.ErrorIs(t, err, ErrMalformedGraph)
	})
}

func TestPolyline(t *testing.T) {
	path := []Coordinate{NewCoordinate(17.385, 78.4867), NewCoordinate(17.4401, 78.3489)}
	encoded := CreatePolyline(path)
	decoded, err := DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.InDelta(t, 17.385, decoded[0].Lat, 1e-5)
	assert.InDelta(t, 78.3489, decoded[1].Lon, 1e-5)
}
