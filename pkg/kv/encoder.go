package kv

import (
	"github.com/kelindar/binary"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
)

type kvEdgeMetadata struct {
	StreetName string
	RoadClass  string
	OsmWayID   int64
}

func newKVEdgeMetadata(m datastructure.EdgeMetadata) kvEdgeMetadata {
	return kvEdgeMetadata{
		StreetName: m.StreetName,
		RoadClass:  m.RoadClass,
		OsmWayID:   m.OsmWayID,
	}
}

func (m kvEdgeMetadata) toEdgeMetadata() datastructure.EdgeMetadata {
	return datastructure.EdgeMetadata{
		StreetName: m.StreetName,
		RoadClass:  m.RoadClass,
		OsmWayID:   m.OsmWayID,
	}
}

func encodeEdgeMetadata(m datastructure.EdgeMetadata) ([]byte, error) {
	bb, err := binary.Marshal(newKVEdgeMetadata(m))
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func decodeEdgeMetadata(bbCompressed []byte) (datastructure.EdgeMetadata, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return datastructure.EdgeMetadata{}, err
	}

	var m kvEdgeMetadata
	if err := binary.Unmarshal(bb, &m); err != nil {
		return datastructure.EdgeMetadata{}, err
	}
	return m.toEdgeMetadata(), nil
}
