package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("no road network node found")
	ErrNoPathFound       = routingalgorithm.ErrNoPathFound
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

type Snapper interface {
	SnapToNode(lat, lon float64) (snap.Candidate, error)
	SnapToNodes(lat, lon float64, k int) []snap.Candidate
	SnapToNodesWithinRadius(lat, lon, radius float64) []snap.Candidate
}

// Route node path from the snapped origin to the snapped destination, both inclusive.
type Route struct {
	NodeIDs     []int64
	Coordinates []datastructure.Coordinate
	EdgeIDs     []int32
	Distance    float64
}

// Engine composes the spatial index & the road graph. safe for concurrent use, nothing is mutated
// after NewEngine.
type Engine struct {
	log     *zap.Logger
	graph   *datastructure.Graph
	snapper Snapper
	router  *routingalgorithm.RouteAlgorithm
}

func NewEngine(log *zap.Logger, graph *datastructure.Graph, snapper Snapper, maxSettledNodes int) *Engine {
	return &Engine{
		log:     log,
		graph:   graph,
		snapper: snapper,
		router:  routingalgorithm.NewRouteAlgorithm(graph, maxSettledNodes),
	}
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.graph
}

// ResolveNearest id of the graph node closest to (lat, lon).
func (e *Engine) ResolveNearest(lat, lon float64) (int64, error) {
	c, err := e.resolve(lat, lon)
	if err != nil {
		return 0, err
	}
	return c.NodeID, nil
}

func (e *Engine) resolve(lat, lon float64) (snap.Candidate, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return snap.Candidate{}, fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinate, lat, lon)
	}
	c, err := e.snapper.SnapToNode(lat, lon)
	if errors.Is(err, datastructure.ErrEmptyIndex) {
		return snap.Candidate{}, fmt.Errorf("%w: spatial index is empty", ErrNotFound)
	}
	if err != nil {
		return snap.Candidate{}, err
	}
	return c, nil
}

// NearestNodes k closest graph nodes, closest first.
func (e *Engine) NearestNodes(lat, lon float64, k int) ([]snap.Candidate, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinate, lat, lon)
	}
	candidates := e.snapper.SnapToNodes(lat, lon, k)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: spatial index is empty", ErrNotFound)
	}
	return candidates, nil
}

// NodesWithinRadius graph nodes within radius meter, closest first. empty when there is none.
func (e *Engine) NodesWithinRadius(lat, lon, radius float64) ([]snap.Candidate, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinate, lat, lon)
	}
	return e.snapper.SnapToNodesWithinRadius(lat, lon, radius), nil
}

// Route shortest path between the graph nodes nearest to the start & end coordinates.
// ErrNoPathFound when they lie in disconnected parts of the graph.
func (e *Engine) Route(ctx context.Context, startLat, startLon, endLat, endLon float64) (*Route, error) {
	start, err := e.resolve(startLat, startLon)
	if err != nil {
		return nil, err
	}
	end, err := e.resolve(endLat, endLon)
	if err != nil {
		return nil, err
	}

	return e.RouteNodes(ctx, start.NodeID, end.NodeID)
}

// RouteNodes shortest path between two node ids.
func (e *Engine) RouteNodes(ctx context.Context, fromID, toID int64) (*Route, error) {
	from, ok := e.graph.NodeIndex(fromID)
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, fromID)
	}
	to, ok := e.graph.NodeIndex(toID)
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, toID)
	}

	if !e.graph.Components().Reachable(from, to) {
		e.log.Debug("destination not reachable from origin", zap.Int64("from", fromID), zap.Int64("to", toID))
		return nil, fmt.Errorf("%w: node %d is not reachable from node %d", ErrNoPathFound, toID, fromID)
	}

	res, err := e.router.ShortestPath(ctx, from, to)
	if err != nil {
		return nil, err
	}

	route := &Route{
		NodeIDs:     make([]int64, 0, len(res.Nodes)),
		Coordinates: make([]datastructure.Coordinate, 0, len(res.Nodes)),
		EdgeIDs:     res.Edges,
		Distance:    res.Distance,
	}
	for _, idx := range res.Nodes {
		n := e.graph.GetNode(idx)
		route.NodeIDs = append(route.NodeIDs, n.ID)
		route.Coordinates = append(route.Coordinates, datastructure.NewCoordinate(n.Lat, n.Lon))
	}
	return route, nil
}
