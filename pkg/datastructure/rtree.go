package datastructure

import (
	"errors"
	"math"
	"sort"

	"github.com/lintang-b-s/offlinenav/pkg/geo"
)

var ErrEmptyIndex = errors.New("spatial index is empty")

type RtreeBoundingBox struct {
	// number of dimensions
	Dim int
	// Edges[i][0] = low value, Edges[i][1] = high value
	// i = 0,...,Dim
	Edges [][2]float64
}

func NewRtreeBoundingBox(dim int, minVal []float64, maxVal []float64) RtreeBoundingBox {
	b := RtreeBoundingBox{Dim: dim, Edges: make([][2]float64, dim)}
	for axis := 0; axis < dim; axis++ {
		b.Edges[axis] = [2]float64{minVal[axis], maxVal[axis]}
	}

	return b
}

// BoundingBox smallest box containing both b and bb.
func BoundingBox(b RtreeBoundingBox, bb RtreeBoundingBox) RtreeBoundingBox {
	newBound := NewRtreeBoundingBox(b.Dim, make([]float64, b.Dim), make([]float64, b.Dim))

	for axis := 0; axis < b.Dim; axis++ {
		newBound.Edges[axis][0] = math.Min(b.Edges[axis][0], bb.Edges[axis][0])
		newBound.Edges[axis][1] = math.Max(b.Edges[axis][1], bb.Edges[axis][1])
	}

	return newBound
}

func (b RtreeBoundingBox) center(axis int) float64 {
	return (b.Edges[axis][0] + b.Edges[axis][1]) / 2
}

type BoundedItem interface {
	GetBound() RtreeBoundingBox
	isLeafNode() bool
	IsData() bool
}

// RtreeEntry spatial index record. leaves carry the stable node id, never an array position.
type RtreeEntry struct {
	NodeID int64
	Lat    float64
	Lon    float64
}

func NewRtreeEntry(nodeID int64, lat, lon float64) RtreeEntry {
	return RtreeEntry{NodeID: nodeID, Lat: lat, Lon: lon}
}

func (e *RtreeEntry) GetBound() RtreeBoundingBox {
	return NewRtreeBoundingBox(2, []float64{e.Lat, e.Lon}, []float64{e.Lat, e.Lon})
}

func (e *RtreeEntry) isLeafNode() bool {
	return false
}

func (e *RtreeEntry) IsData() bool {
	return true
}

// rtree node. can be either a leaf node or a internal node or leafData.
type RtreeNode struct {
	// entries. can be either a leaf node or a  internal node.
	// leafNode has items in the form of a list of RtreeLeaf (*RtreeNode with 0 Items & a Leaf)
	Items  []*RtreeNode
	Parent *RtreeNode

	Bound RtreeBoundingBox
	// isLeaf. true if  this node is a leafNode.
	IsLeaf bool

	Leaf RtreeEntry // if this node is a leafData
}

func (node *RtreeNode) isLeafNode() bool {
	return node.IsLeaf
}

func (node *RtreeNode) GetBound() RtreeBoundingBox {
	return node.Bound
}

func (node *RtreeNode) ComputeBB() RtreeBoundingBox {
	bb := node.Items[0].GetBound()
	for i := 1; i < len(node.Items); i++ {
		bb = BoundingBox(bb, node.Items[i].GetBound())
	}
	return bb
}

func (node *RtreeNode) IsData() bool {
	return false
}

type Rtree struct {
	Root          *RtreeNode
	Size          int
	MinChildItems int
	MaxChildItems int
	Dimensions    int
	Height        int
}

func NewRtree(minChildItems, maxChildItems int) *Rtree {
	if maxChildItems < 2 {
		maxChildItems = 2
	}
	if minChildItems < 1 || minChildItems > maxChildItems/2 {
		minChildItems = maxChildItems / 2
	}

	return &Rtree{
		Root: &RtreeNode{
			IsLeaf: true,
			Items:  make([]*RtreeNode, 0),
		},
		Size:          0,
		Height:        1,
		MinChildItems: minChildItems,
		MaxChildItems: maxChildItems,
		Dimensions:    2,
	}
}

// NewRtreeBulk builds the tree bottom-up with sort-tile-recursive packing.
// the index is rebuilt wholesale whenever the graph changes, there is no insert/delete.
func NewRtreeBulk(entries []RtreeEntry, minChildItems, maxChildItems int) *Rtree {
	rt := NewRtree(minChildItems, maxChildItems)
	if len(entries) == 0 {
		return rt
	}

	level := make([]*RtreeNode, len(entries))
	for i := range entries {
		leaf := &RtreeNode{Leaf: entries[i]}
		leaf.Bound = leaf.Leaf.GetBound()
		level[i] = leaf
	}

	level = rt.packLevel(level, true)
	height := 1
	for len(level) > 1 {
		level = rt.packLevel(level, false)
		height++
	}

	rt.Root = level[0]
	rt.Size = len(entries)
	rt.Height = height
	return rt
}

// packLevel groups items into parent nodes of at most MaxChildItems children.
// items are sorted by latitude, cut into vertical slices, then each slice sorted by longitude and
// cut into runs of MaxChildItems.
func (rt *Rtree) packLevel(items []*RtreeNode, isLeaf bool) []*RtreeNode {
	n := len(items)
	nodeCount := int(math.Ceil(float64(n) / float64(rt.MaxChildItems)))
	sliceCount := int(math.Ceil(math.Sqrt(float64(nodeCount))))

	sort.SliceStable(items, func(i, j int) bool {
		return lessByAxis(items[i], items[j], 0)
	})

	parents := make([]*RtreeNode, 0, nodeCount)
	for s := 0; s < sliceCount; s++ {
		lo := s * n / sliceCount
		hi := (s + 1) * n / sliceCount
		slice := items[lo:hi]
		if len(slice) == 0 {
			continue
		}

		sort.SliceStable(slice, func(i, j int) bool {
			return lessByAxis(slice[i], slice[j], 1)
		})

		for _, group := range rt.chunk(slice) {
			parent := &RtreeNode{
				Items:  group,
				IsLeaf: isLeaf,
			}
			for _, child := range group {
				child.Parent = parent
			}
			parent.Bound = parent.ComputeBB()
			parents = append(parents, parent)
		}
	}

	return parents
}

// chunk cuts items into runs of MaxChildItems. an undersized last run is balanced with the one before it.
func (rt *Rtree) chunk(items []*RtreeNode) [][]*RtreeNode {
	groups := make([][]*RtreeNode, 0, len(items)/rt.MaxChildItems+1)
	for i := 0; i < len(items); i += rt.MaxChildItems {
		end := i + rt.MaxChildItems
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, items[i:end:end])
	}

	last := len(groups) - 1
	if last > 0 && len(groups[last]) < rt.MinChildItems {
		merged := make([]*RtreeNode, 0, len(groups[last-1])+len(groups[last]))
		merged = append(merged, groups[last-1]...)
		merged = append(merged, groups[last]...)
		half := len(merged) / 2
		groups[last-1] = merged[:half:half]
		groups[last] = merged[half:]
	}
	return groups
}

func lessByAxis(a, b *RtreeNode, axis int) bool {
	ca, cb := a.Bound.center(axis), b.Bound.center(axis)
	if ca != cb {
		return ca < cb
	}
	other := 1 - axis
	ca, cb = a.Bound.center(other), b.Bound.center(other)
	if ca != cb {
		return ca < cb
	}
	return a.Leaf.NodeID < b.Leaf.NodeID
}

type Point struct {
	Lat float64
	Lon float64
}

func NewPoint(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon}
}

// MinDist computes the distance (meter) from a point to a rectangle. If the point is contained in the rectangle then the distance is zero.
func (p Point) MinDist(r RtreeBoundingBox) float64 {

	// Edges[0] = {minLat, maxLat}
	// Edges[1] = {minLon, maxLon}
	rLat, rLon := 0.0, 0.0
	if p.Lat < r.Edges[0][0] {
		rLat = r.Edges[0][0]
	} else if p.Lat > r.Edges[0][1] {
		rLat = r.Edges[0][1]
	} else {
		rLat = p.Lat
	}

	// outside the lon range the nearer edge may lie across the antimeridian.
	if p.Lon < r.Edges[1][0] || p.Lon > r.Edges[1][1] {
		if lonGap(p.Lon, r.Edges[1][0]) <= lonGap(p.Lon, r.Edges[1][1]) {
			rLon = r.Edges[1][0]
		} else {
			rLon = r.Edges[1][1]
		}
	} else {
		rLon = p.Lon
	}

	return geo.EquirectangularMeters(p.Lat, p.Lon, rLat, rLon)
}

func lonGap(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Nearest node id closest to (lat, lon).
func (rt *Rtree) Nearest(lat, lon float64) (int64, error) {
	nearest, err := rt.NearestEntry(lat, lon)
	if err != nil {
		return 0, err
	}
	return nearest.NodeID, nil
}

func (rt *Rtree) NearestEntry(lat, lon float64) (RtreeEntry, error) {
	if rt.Size == 0 {
		return RtreeEntry{}, ErrEmptyIndex
	}

	nearest := RtreeEntry{}
	rt.incrementalNearestNeighbor(NewPoint(lat, lon), func(e RtreeEntry, _ float64) bool {
		nearest = e
		return false
	})

	return nearest, nil
}

// NearestK the k closest entries, closest first.
func (rt *Rtree) NearestK(lat, lon float64, k int) []RtreeEntry {
	if k <= 0 || rt.Size == 0 {
		return []RtreeEntry{}
	}
	if k > rt.Size {
		k = rt.Size
	}
	nearestLists := make([]RtreeEntry, 0, k)

	rt.incrementalNearestNeighbor(NewPoint(lat, lon), func(e RtreeEntry, _ float64) bool {
		nearestLists = append(nearestLists, e)
		return len(nearestLists) < k
	})

	return nearestLists
}

// NearestWithinRadius entries at most radius meter away, closest first.
func (rt *Rtree) NearestWithinRadius(lat, lon, radius float64) []RtreeEntry {
	results := []RtreeEntry{}
	if rt.Size == 0 {
		return results
	}

	rt.incrementalNearestNeighbor(NewPoint(lat, lon), func(e RtreeEntry, dist float64) bool {
		if dist > radius {
			return false
		}
		results = append(results, e)
		return true
	})

	return results
}

// https://dl.acm.org/doi/pdf/10.1145/320248.320255 (Fig. 4.  incremental nearest neighbor algorithm)
// entries are point objects, so the MBR distance of a leaf record already is its exact distance.
func (rt *Rtree) incrementalNearestNeighbor(p Point, callback func(RtreeEntry, float64) bool) {
	pq := NewMinHeapRtree()
	pq.Insert(NewPriorityQueueNodeRtree2(0, rt.Root))

	for pq.Size() > 0 {

		element, ok := pq.ExtractMin()
		if !ok {
			return
		}
		if element.Item.IsData() {
			if !callback(*element.Item.(*RtreeEntry), element.Rank) {
				return
			}
		} else if element.Item.isLeafNode() {

			for _, item := range element.Item.(*RtreeNode).Items {
				pq.Insert(NewPriorityQueueNodeRtree2(p.MinDist(item.GetBound()),
					&item.Leaf))
			}
		} else {
			for _, item := range element.Item.(*RtreeNode).Items {
				pq.Insert(NewPriorityQueueNodeRtree2(p.MinDist(item.GetBound()), item))
			}
		}
	}
}
