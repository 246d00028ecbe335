package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/server/rest/service"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	maxBatchQueries = 100
	maxNearestK     = 50
)

type NavigationService interface {
	ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (*service.RouteResult, error)
	ShortestPathByAddress(ctx context.Context, from, to string) (*service.RouteResult, store.Address, store.Address, error)
	ShortestPaths(ctx context.Context, queries []service.RouteQuery) []service.RouteQueryResult
	NearestNodes(ctx context.Context, lat, lon float64, k int) ([]snap.Candidate, error)
	NodesWithinRadius(ctx context.Context, lat, lon, radius float64, limit int) ([]snap.Candidate, error)
}

type NavigationHandler struct {
	svc       NavigationService
	metrics   *Metrics
	validator *requestValidator
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *Metrics) {
	handler := &NavigationHandler{svc: svc, metrics: m, validator: newRequestValidator()}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigations", func(r chi.Router) {
			r.Get("/route", handler.ShortestPathQuery)
			r.Post("/route", handler.ShortestPath)
			r.Post("/routes", handler.ShortestPaths)
			r.Get("/nearest", handler.NearestNodes)
		})
	})
}

// ShortestPathRequest model info
//
//	@Description	request body shortest path query. either both coordinates or both addresses
type ShortestPathRequest struct {
	SrcLat      *float64 `json:"src_lat" validate:"omitempty,gte=-90,lte=90"`
	SrcLon      *float64 `json:"src_lon" validate:"omitempty,gte=-180,lte=180"`
	DstLat      *float64 `json:"dst_lat" validate:"omitempty,gte=-90,lte=90"`
	DstLon      *float64 `json:"dst_lon" validate:"omitempty,gte=-180,lte=180"`
	FromAddress string   `json:"from_address" validate:"omitempty,max=256"`
	ToAddress   string   `json:"to_address" validate:"omitempty,max=256"`
	// douglas-peucker tolerance in meter for path & geometry, 0 keeps every node.
	Simplify float64 `json:"simplify" validate:"gte=0,lte=1000"`
}

func (s *ShortestPathRequest) byAddress() bool {
	return s.FromAddress != "" && s.ToAddress != ""
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	if s.byAddress() {
		return nil
	}
	if s.SrcLat == nil || s.SrcLon == nil || s.DstLat == nil || s.DstLon == nil {
		return errors.New("src_lat, src_lon, dst_lat & dst_lon or from_address & to_address are required")
	}
	return nil
}

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ShortestPathResponse model info
//
//	@Description	response body shortest path query
type ShortestPathResponse struct {
	Path        string           `json:"path"`
	Distance    float64          `json:"distance"`
	NodeIDs     []int64          `json:"node_ids"`
	Coordinates []Coord          `json:"coordinates"`
	Streets     []string         `json:"streets"`
	Geometry    *geojson.Feature `json:"geometry" swaggertype:"object"`
	From        *store.Address   `json:"from,omitempty"`
	To          *store.Address   `json:"to,omitempty"`
}

func routeGeometry(coords []datastructure.Coordinate, distance float64) *geojson.Feature {
	var feature *geojson.Feature
	if len(coords) == 1 {
		feature = geojson.NewFeature(orb.Point{coords[0].Lon, coords[0].Lat})
	} else {
		ls := make(orb.LineString, 0, len(coords))
		for _, c := range coords {
			ls = append(ls, orb.Point{c.Lon, c.Lat})
		}
		feature = geojson.NewFeature(ls)
	}
	feature.Properties["distance"] = distance
	return feature
}

// RenderShortestPathResponse coordinates always follow node_ids. path & geometry are simplified when
// simplify > 0.
func RenderShortestPathResponse(res *service.RouteResult, simplify float64) *ShortestPathResponse {
	coords := make([]Coord, 0, len(res.Route.Coordinates))
	for _, c := range res.Route.Coordinates {
		coords = append(coords, Coord{Lat: c.Lat, Lon: c.Lon})
	}

	line, path := res.Route.Coordinates, res.Polyline
	if simplify > 0 {
		line = datastructure.FromGeoCoordinates(geo.RamerDouglasPeucker(datastructure.ToGeoCoordinates(line), simplify))
		path = datastructure.CreatePolyline(line)
	}
	return &ShortestPathResponse{
		Path:        path,
		Distance:    res.Route.Distance,
		NodeIDs:     res.Route.NodeIDs,
		Coordinates: coords,
		Streets:     res.Streets,
		Geometry:    routeGeometry(line, res.Route.Distance),
	}
}

func (h *NavigationHandler) observeRoute(err error) {
	if h.metrics == nil {
		return
	}
	outcome := "found"
	var serverErr *server.Error
	if err != nil {
		outcome = "error"
		if errors.As(err, &serverErr) {
			outcome = serverErr.Code().String()
		}
	}
	h.metrics.ObserveRoute(outcome)
}

// ShortestPath
//
//	@Summary		shortest path between two coordinates or two addresses
//	@Description	shortest path (dijkstra / a*) between the road network nodes nearest to the origin & destination. addresses are geocoded with the address table first
//	@Tags			navigations
//	@Param			body	body	ShortestPathRequest	true	"request body shortest path query"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/route [post]
//	@Success		200	{object}	ShortestPathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *NavigationHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	h.shortestPath(w, r, data)
}

// ShortestPathQuery
//
//	@Summary		shortest path between two coordinates
//	@Description	shortest path between the road network nodes nearest to the origin & destination. lat1, lon1, lat2 & lon2 are accepted in place of src_lat, src_lon, dst_lat & dst_lon
//	@Tags			navigations
//	@Param			src_lat	query	number	false	"origin latitude"
//	@Param			src_lon	query	number	false	"origin longitude"
//	@Param			dst_lat	query	number	false	"destination latitude"
//	@Param			dst_lon	query	number	false	"destination longitude"
//	@Param			lat1	query	number	false	"alias of src_lat"
//	@Param			lon1	query	number	false	"alias of src_lon"
//	@Param			lat2	query	number	false	"alias of dst_lat"
//	@Param			lon2	query	number	false	"alias of dst_lon"
//	@Param			simplify	query	number	false	"douglas-peucker tolerance (meter) for path & geometry"
//	@Produce		application/json
//	@Router			/navigations/route [get]
//	@Success		200	{object}	ShortestPathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) ShortestPathQuery(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	params := []struct {
		name  string
		alias string
		dst   **float64
	}{
		{"src_lat", "lat1", &data.SrcLat}, {"src_lon", "lon1", &data.SrcLon},
		{"dst_lat", "lat2", &data.DstLat}, {"dst_lon", "lon2", &data.DstLon},
	}
	for _, p := range params {
		name := p.name
		if r.URL.Query().Get(name) == "" && r.URL.Query().Get(p.alias) != "" {
			name = p.alias
		}
		v, err := queryFloat(r, name)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		*p.dst = &v
	}
	if r.URL.Query().Get("simplify") != "" {
		tolerance, err := queryFloat(r, "simplify")
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		data.Simplify = tolerance
	}
	h.shortestPath(w, r, data)
}

func (h *NavigationHandler) shortestPath(w http.ResponseWriter, r *http.Request, data *ShortestPathRequest) {
	if errResp := h.validator.Struct(*data); errResp != nil {
		render.Render(w, r, errResp)
		return
	}

	var (
		res      *service.RouteResult
		src, dst store.Address
		err      error
	)
	if data.byAddress() {
		res, src, dst, err = h.svc.ShortestPathByAddress(r.Context(), data.FromAddress, data.ToAddress)
	} else {
		res, err = h.svc.ShortestPath(r.Context(), *data.SrcLat, *data.SrcLon, *data.DstLat, *data.DstLon)
	}
	h.observeRoute(err)
	if err != nil {
		render.Render(w, r, ErrorRenderer(err))
		return
	}

	resp := RenderShortestPathResponse(res, data.Simplify)
	if data.byAddress() {
		resp.From, resp.To = &src, &dst
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// ShortestPathsRequest model info
//
//	@Description	request body batch shortest path query
type ShortestPathsRequest struct {
	Queries []RouteQueryRequest `json:"queries" validate:"required,min=1,max=100,dive"`
}

// RouteQueryRequest model info
//
//	@Description	one origin destination pair
type RouteQueryRequest struct {
	SrcLat float64 `json:"src_lat" validate:"gte=-90,lte=90"`
	SrcLon float64 `json:"src_lon" validate:"gte=-180,lte=180"`
	DstLat float64 `json:"dst_lat" validate:"gte=-90,lte=90"`
	DstLon float64 `json:"dst_lon" validate:"gte=-180,lte=180"`
}

func (s *ShortestPathsRequest) Bind(r *http.Request) error {
	if len(s.Queries) == 0 {
		return errors.New("queries is required")
	}
	if len(s.Queries) > maxBatchQueries {
		return fmt.Errorf("at most %d queries per request", maxBatchQueries)
	}
	return nil
}

// ShortestPathsResponse model info
//
//	@Description	response body batch shortest path query, one entry per query in request order
type ShortestPathsResponse struct {
	Routes []RouteQueryResponse `json:"routes"`
}

type RouteQueryResponse struct {
	Found bool                  `json:"found"`
	Route *ShortestPathResponse `json:"route,omitempty"`
	Error *ErrResponse          `json:"error,omitempty"`
}

// ShortestPaths
//
//	@Summary		batch shortest path queries
//	@Description	answers up to 100 origin destination pairs concurrently
//	@Tags			navigations
//	@Param			body	body	ShortestPathsRequest	true	"request body batch shortest path query"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/navigations/routes [post]
//	@Success		200	{object}	ShortestPathsResponse
//	@Failure		400	{object}	ErrResponse
func (h *NavigationHandler) ShortestPaths(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errResp := h.validator.Struct(*data); errResp != nil {
		render.Render(w, r, errResp)
		return
	}

	queries := make([]service.RouteQuery, 0, len(data.Queries))
	for _, q := range data.Queries {
		queries = append(queries, service.RouteQuery{SrcLat: q.SrcLat, SrcLon: q.SrcLon, DstLat: q.DstLat, DstLon: q.DstLon})
	}

	results := h.svc.ShortestPaths(r.Context(), queries)
	resp := &ShortestPathsResponse{Routes: make([]RouteQueryResponse, 0, len(results))}
	for _, res := range results {
		h.observeRoute(res.Err)
		if res.Err != nil {
			resp.Routes = append(resp.Routes, RouteQueryResponse{Found: false, Error: ErrorRenderer(res.Err).(*ErrResponse)})
			continue
		}
		resp.Routes = append(resp.Routes, RouteQueryResponse{Found: true, Route: RenderShortestPathResponse(res.Result, 0)})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// NearestNodeResponse model info
//
//	@Description	road network node near the query point, distance in meter
type NearestNodeResponse struct {
	NodeID   int64   `json:"node_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

// NearestNodes
//
//	@Summary		nearest road network nodes
//	@Description	k nearest road network nodes of a coordinate, closest first. with radius, the nodes within radius meter (at most k, default 50)
//	@Tags			navigations
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			k		query	int		false	"number of nodes (default 1, max 50)"
//	@Param			radius	query	number	false	"search radius in meter"
//	@Produce		application/json
//	@Router			/navigations/nearest [get]
//	@Success		200	{array}		NearestNodeResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) NearestNodes(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	radius := 0.0
	if r.URL.Query().Get("radius") != "" {
		radius, err = queryFloat(r, "radius")
		if err != nil || radius <= 0 {
			render.Render(w, r, ErrInvalidRequest(errors.New("radius must be a positive number")))
			return
		}
	}
	defaultK := 1
	if radius > 0 {
		defaultK = maxNearestK
	}
	k, err := queryInt(r, "k", defaultK)
	if err != nil || k < 1 || k > maxNearestK {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("k must be between 1 and %d", maxNearestK)))
		return
	}

	var candidates []snap.Candidate
	if radius > 0 {
		candidates, err = h.svc.NodesWithinRadius(r.Context(), lat, lon, radius, k)
	} else {
		candidates, err = h.svc.NearestNodes(r.Context(), lat, lon, k)
	}
	if err != nil {
		render.Render(w, r, ErrorRenderer(err))
		return
	}

	resp := make([]NearestNodeResponse, 0, len(candidates))
	for _, c := range candidates {
		resp = append(resp, NearestNodeResponse{NodeID: c.NodeID, Lat: c.Lat, Lon: c.Lon, Distance: c.Distance})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
