package snap

import (
	"sort"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
)

type Rtree interface {
	NearestEntry(lat, lon float64) (datastructure.RtreeEntry, error)
	NearestK(lat, lon float64, k int) []datastructure.RtreeEntry
	NearestWithinRadius(lat, lon, radius float64) []datastructure.RtreeEntry
}

// Candidate snapped node with its great-circle distance (meter) to the query point.
type Candidate struct {
	NodeID   int64
	Lat      float64
	Lon      float64
	Distance float64
}

type NodeSnapper struct {
	rtree Rtree
}

func NewNodeSnapper(rtree Rtree) *NodeSnapper {
	return &NodeSnapper{rtree: rtree}
}

func newCandidate(e datastructure.RtreeEntry, lat, lon float64) Candidate {
	return Candidate{
		NodeID:   e.NodeID,
		Lat:      e.Lat,
		Lon:      e.Lon,
		Distance: geo.HaversineMeters(lat, lon, e.Lat, e.Lon),
	}
}

func (ns *NodeSnapper) SnapToNode(lat, lon float64) (Candidate, error) {
	e, err := ns.rtree.NearestEntry(lat, lon)
	if err != nil {
		return Candidate{}, err
	}
	return newCandidate(e, lat, lon), nil
}

// SnapToNodes k nearest nodes, closest first.
func (ns *NodeSnapper) SnapToNodes(lat, lon float64, k int) []Candidate {
	entries := ns.rtree.NearestK(lat, lon, k)
	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, newCandidate(e, lat, lon))
	}
	return candidates
}

// the index ranks by equirectangular distance, candidates are kept by great-circle distance.
const radiusSlack = 1.01

// SnapToNodesWithinRadius every node at most radius meter away, closest first.
func (ns *NodeSnapper) SnapToNodesWithinRadius(lat, lon, radius float64) []Candidate {
	candidates := make([]Candidate, 0)
	for _, e := range ns.rtree.NearestWithinRadius(lat, lon, radius*radiusSlack) {
		c := newCandidate(e, lat, lon)
		if c.Distance <= radius {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance == candidates[j].Distance {
			return candidates[i].NodeID < candidates[j].NodeID
		}
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}
