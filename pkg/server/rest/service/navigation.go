package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/offlinenav/pkg/concurrent"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/engine/routing"
	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"go.uber.org/zap"
)

type NavigationService struct {
	log      *zap.Logger
	engine   RoutingEngine
	kv       KVDB
	geocoder Geocoder
	workers  int
}

func NewNavigationService(log *zap.Logger, engine RoutingEngine, kv KVDB, geocoder Geocoder, workers int) *NavigationService {
	if workers < 1 {
		workers = 1
	}
	return &NavigationService{log: log, engine: engine, kv: kv, geocoder: geocoder, workers: workers}
}

// RouteResult route plus the encoded polyline & the street names along it.
type RouteResult struct {
	Route    *routing.Route
	Polyline string
	Streets  []string
}

func (uc *NavigationService) ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (*RouteResult, error) {
	route, err := uc.engine.Route(ctx, srcLat, srcLon, dstLat, dstLon)
	if err != nil {
		return nil, routeError(err)
	}

	return &RouteResult{
		Route:    route,
		Polyline: datastructure.CreatePolyline(route.Coordinates),
		Streets:  uc.streetNames(route.EdgeIDs),
	}, nil
}

// ShortestPathByAddress geocodes both addresses first.
func (uc *NavigationService) ShortestPathByAddress(ctx context.Context, from, to string) (*RouteResult, store.Address,
	store.Address, error) {
	src, err := uc.geocoder.Forward(ctx, from)
	if err != nil {
		return nil, store.Address{}, store.Address{}, addressError(err, from)
	}
	dst, err := uc.geocoder.Forward(ctx, to)
	if err != nil {
		return nil, store.Address{}, store.Address{}, addressError(err, to)
	}

	res, err := uc.ShortestPath(ctx, src.Lat, src.Lon, dst.Lat, dst.Lon)
	if err != nil {
		return nil, store.Address{}, store.Address{}, err
	}
	return res, src, dst, nil
}

// streetNames distinct consecutive street names of the route edges. the metadata side table is
// optional, a failed lookup only drops the names.
func (uc *NavigationService) streetNames(edgeIDs []int32) []string {
	streets := []string{}
	if uc.kv == nil || len(edgeIDs) == 0 {
		return streets
	}

	metas, err := uc.kv.GetEdgesMetadata(edgeIDs)
	if err != nil {
		uc.log.Warn("edge metadata lookup failed", zap.Error(err))
		return streets
	}
	for _, m := range metas {
		if m.StreetName == "" {
			continue
		}
		if len(streets) > 0 && streets[len(streets)-1] == m.StreetName {
			continue
		}
		streets = append(streets, m.StreetName)
	}
	return streets
}

type RouteQuery struct {
	SrcLat float64
	SrcLon float64
	DstLat float64
	DstLon float64
}

type RouteQueryResult struct {
	Index  int
	Result *RouteResult
	Err    error
}

// ShortestPaths answers every query on a worker pool, results are in query order.
func (uc *NavigationService) ShortestPaths(ctx context.Context, queries []RouteQuery) []RouteQueryResult {
	workers := concurrent.NewWorkerPool[concurrent.RouteQueryParam, RouteQueryResult](uc.workers, len(queries))
	for i, q := range queries {
		workers.AddJob(concurrent.NewRouteQueryParam(ctx, i, q.SrcLat, q.SrcLon, q.DstLat, q.DstLon))
	}
	workers.Close()
	workers.Start(uc.shortestPathJob)
	workers.Wait()

	results := make([]RouteQueryResult, len(queries))
	for res := range workers.CollectResults() {
		results[res.Index] = res
	}
	return results
}

func (uc *NavigationService) shortestPathJob(job concurrent.RouteQueryParam) RouteQueryResult {
	res, err := uc.ShortestPath(job.Ctx, job.SrcLat, job.SrcLon, job.DstLat, job.DstLon)
	return RouteQueryResult{Index: job.Index, Result: res, Err: err}
}

func (uc *NavigationService) NearestNodes(ctx context.Context, lat, lon float64, k int) ([]snap.Candidate, error) {
	candidates, err := uc.engine.NearestNodes(lat, lon, k)
	if err != nil {
		return nil, routeError(err)
	}
	return candidates, nil
}

// NodesWithinRadius at most limit nodes within radius meter, closest first.
func (uc *NavigationService) NodesWithinRadius(ctx context.Context, lat, lon, radius float64, limit int) ([]snap.Candidate, error) {
	candidates, err := uc.engine.NodesWithinRadius(lat, lon, radius)
	if err != nil {
		return nil, routeError(err)
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func routeError(err error) error {
	switch {
	case errors.Is(err, routing.ErrInvalidCoordinate):
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid coordinate")
	case errors.Is(err, routing.ErrNotFound):
		return server.WrapErrorf(err, server.ErrNotFound, "the location you entered is not covered by the road network")
	case errors.Is(err, routing.ErrNoPathFound):
		return server.WrapErrorf(err, server.ErrNoRoute, "no route between the two locations")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return server.WrapErrorf(err, server.ErrTimeout, "route search timed out")
	default:
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
}

func addressError(err error, text string) error {
	switch {
	case errors.Is(err, store.ErrAddressNotFound):
		return server.WrapErrorf(err, server.ErrNotFound, "address %q not found", text)
	case errors.Is(err, store.ErrStoreUnavailable):
		return server.WrapErrorf(err, server.ErrUnavailable, "address store unavailable")
	default:
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
}
