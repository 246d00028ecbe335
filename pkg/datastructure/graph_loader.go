package datastructure

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/offlinenav/pkg/geo"
)

const (
	nativeGraphVersion = 1
)

var ErrUnsupportedGraphFormat = errors.New("unsupported graph file format")

// EdgeMetadata descriptive attributes of an edge, kept out of the csr arrays.
type EdgeMetadata struct {
	StreetName string
	RoadClass  string
	OsmWayID   int64
}

// GraphMetadata edge attributes indexed by edge id. empty when the source carries none.
type GraphMetadata struct {
	Edges []EdgeMetadata
}

func (m *GraphMetadata) Edge(edgeID int32) (EdgeMetadata, bool) {
	if m == nil || edgeID < 0 || int(edgeID) >= len(m.Edges) {
		return EdgeMetadata{}, false
	}
	return m.Edges[edgeID], true
}

func (m *GraphMetadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Edges)
}

// RawGraph nodes & edges collected from a source file, keyed by stable node id until Build.
type RawGraph struct {
	Nodes    []Node
	Edges    []Edge
	Metadata []EdgeMetadata

	idIndex map[int64]int32
}

func NewRawGraph() *RawGraph {
	return &RawGraph{
		Nodes:    make([]Node, 0),
		Edges:    make([]Edge, 0),
		Metadata: make([]EdgeMetadata, 0),
		idIndex:  make(map[int64]int32),
	}
}

func (r *RawGraph) AddNode(id int64, lat, lon float64) error {
	if _, ok := r.idIndex[id]; ok {
		return fmt.Errorf("%w: duplicate node id %d", ErrMalformedGraph, id)
	}
	r.idIndex[id] = int32(len(r.Nodes))
	r.Nodes = append(r.Nodes, NewNode(id, lat, lon))
	return nil
}

func (r *RawGraph) HasNode(id int64) bool {
	_, ok := r.idIndex[id]
	return ok
}

// AddEdge appends an edge between two already added nodes.
func (r *RawGraph) AddEdge(fromID, toID int64, length float64, oneway bool, meta EdgeMetadata) error {
	from, ok := r.idIndex[fromID]
	if !ok {
		return fmt.Errorf("%w: edge endpoint %d has no node", ErrMalformedGraph, fromID)
	}
	to, ok := r.idIndex[toID]
	if !ok {
		return fmt.Errorf("%w: edge endpoint %d has no node", ErrMalformedGraph, toID)
	}

	r.Edges = append(r.Edges, NewEdge(from, to, length, oneway))
	r.Metadata = append(r.Metadata, meta)
	return nil
}

// EdgeLength great-circle length (meter) between two added nodes, for sources without edge lengths.
func (r *RawGraph) EdgeLength(fromID, toID int64) (float64, error) {
	from, ok := r.idIndex[fromID]
	if !ok {
		return 0, fmt.Errorf("%w: edge endpoint %d has no node", ErrMalformedGraph, fromID)
	}
	to, ok := r.idIndex[toID]
	if !ok {
		return 0, fmt.Errorf("%w: edge endpoint %d has no node", ErrMalformedGraph, toID)
	}
	a, b := r.Nodes[from], r.Nodes[to]
	return geo.HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon), nil
}

func (r *RawGraph) Build() (*Graph, *GraphMetadata, error) {
	g, err := NewGraph(r.Nodes, r.Edges)
	if err != nil {
		return nil, nil, err
	}
	return g, &GraphMetadata{Edges: r.Metadata}, nil
}

// LoadGraph reads a road graph file. the format is picked from the extension:
// .graph (native, written by WriteGraphFile), .graphml (osmnx export) or .json (node-link json).
func LoadGraph(path string) (*Graph, *GraphMetadata, error) {
	raw, err := ReadRawGraph(path)
	if err != nil {
		return nil, nil, err
	}
	return raw.Build()
}

func ReadRawGraph(path string) (*RawGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".graph":
		return ReadNativeGraph(f)
	case ".graphml":
		return ReadGraphML(f)
	case ".json":
		return ReadNodeLinkJSON(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGraphFormat, path)
	}
}

type nativeGraph struct {
	Version int
	Nodes   []Node
	Edges   []Edge
}

// WriteGraphFile writes nodes & edges as zstd compressed gob. edge metadata is not part of the file,
// it goes to the kv side table.
func WriteGraphFile(path string, raw *RawGraph) error {
	buf := new(bytes.Buffer)
	enc := gob.NewEncoder(buf)
	err := enc.Encode(nativeGraph{
		Version: nativeGraphVersion,
		Nodes:   raw.Nodes,
		Edges:   raw.Edges,
	})
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := CompressTo(f, buf.Bytes()); err != nil {
		return fmt.Errorf("compress graph: %w", err)
	}
	return f.Sync()
}

func ReadNativeGraph(r io.Reader) (*RawGraph, error) {
	decompressed, err := DecompressFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrMalformedGraph, err)
	}

	var ng nativeGraph
	if err := gob.NewDecoder(bytes.NewReader(decompressed)).Decode(&ng); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedGraph, err)
	}
	if ng.Version != nativeGraphVersion {
		return nil, fmt.Errorf("%w: graph file version %d, expected %d", ErrMalformedGraph, ng.Version, nativeGraphVersion)
	}

	raw := NewRawGraph()
	for _, n := range ng.Nodes {
		if err := raw.AddNode(n.ID, n.Lat, n.Lon); err != nil {
			return nil, err
		}
	}
	raw.Edges = ng.Edges
	raw.Metadata = []EdgeMetadata{}
	return raw, nil
}
