package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/engine/routing"
	"github.com/lintang-b-s/offlinenav/pkg/geocoder"
	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/server/rest/service"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNavigation struct {
	route   *service.RouteResult
	err     error
	queries []service.RouteQuery
	coords  [4]float64
	k       int
	radius  float64
	// wait for the request deadline instead of answering
	block bool
}

func (f *fakeNavigation) ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (*service.RouteResult, error) {
	f.coords = [4]float64{srcLat, srcLon, dstLat, dstLon}
	if f.block {
		<-ctx.Done()
		return nil, server.WrapErrorf(ctx.Err(), server.ErrTimeout, "route search timed out")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.route, nil
}

func (f *fakeNavigation) ShortestPathByAddress(ctx context.Context, from, to string) (*service.RouteResult, store.Address,
	store.Address, error) {
	if f.err != nil {
		return nil, store.Address{}, store.Address{}, f.err
	}
	return f.route, store.NewAddress(from, "Springfield", 17.3850, 78.4867), store.NewAddress(to, "Springfield", 17.3900, 78.4900), nil
}

func (f *fakeNavigation) ShortestPaths(ctx context.Context, queries []service.RouteQuery) []service.RouteQueryResult {
	f.queries = queries
	results := make([]service.RouteQueryResult, len(queries))
	for i, q := range queries {
		if q.SrcLat == q.DstLat && q.SrcLon == q.DstLon {
			results[i] = service.RouteQueryResult{Index: i, Err: server.NewErrorf(server.ErrNoRoute, "no route")}
			continue
		}
		results[i] = service.RouteQueryResult{Index: i, Result: f.route}
	}
	return results
}

func (f *fakeNavigation) NearestNodes(ctx context.Context, lat, lon float64, k int) ([]snap.Candidate, error) {
	f.k = k
	if f.err != nil {
		return nil, f.err
	}
	return []snap.Candidate{{NodeID: 10, Lat: lat, Lon: lon, Distance: 0}}, nil
}

func (f *fakeNavigation) NodesWithinRadius(ctx context.Context, lat, lon, radius float64, limit int) ([]snap.Candidate, error) {
	f.k, f.radius = limit, radius
	return []snap.Candidate{}, nil
}

func testRoute() *service.RouteResult {
	coords := []datastructure.Coordinate{
		datastructure.NewCoordinate(17.3850, 78.4867),
		datastructure.NewCoordinate(17.3870, 78.4880),
		datastructure.NewCoordinate(17.3900, 78.4900),
	}
	return &service.RouteResult{
		Route: &routing.Route{
			NodeIDs:     []int64{10, 20, 30},
			Coordinates: coords,
			EdgeIDs:     []int32{0, 2},
			Distance:    700,
		},
		Polyline: datastructure.CreatePolyline(coords),
		Streets:  []string{"Main Street", "Elm Street"},
	}
}

func newTestRouter(nav NavigationService, gc GeocodingService, tiles TileService) (*chi.Mux, *Metrics) {
	r := chi.NewRouter()
	m := NewMetrics(prometheus.NewRegistry())
	r.Use(PromeHttpMiddleware(m))
	NavigatorRouter(r, nav, m)
	GeocodingRouter(r, gc)
	TileRouter(r, tiles)
	return r, m
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestShortestPathHandler(t *testing.T) {
	nav := &fakeNavigation{route: testRoute()}
	r, m := newTestRouter(nav, &fakeGeocoding{}, &fakeTiles{})

	t.Run("query string", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/navigations/route?src_lat=17.3850&src_lon=78.4867&dst_lat=17.3900&dst_lon=78.4900", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Path     string   `json:"path"`
			Distance float64  `json:"distance"`
			NodeIDs  []int64  `json:"node_ids"`
			Streets  []string `json:"streets"`
			Geometry struct {
				Type     string `json:"type"`
				Geometry struct {
					Type string `json:"type"`
				} `json:"geometry"`
			} `json:"geometry"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []int64{10, 20, 30}, resp.NodeIDs)
		assert.Equal(t, 700.0, resp.Distance)
		assert.Equal(t, []string{"Main Street", "Elm Street"}, resp.Streets)
		assert.NotEmpty(t, resp.Path)
		assert.Equal(t, "Feature", resp.Geometry.Type)
		assert.Equal(t, "LineString", resp.Geometry.Geometry.Type)
	})

	t.Run("simplified geometry", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/navigations/route?src_lat=17.3850&src_lon=78.4867&dst_lat=17.3900&dst_lon=78.4900&simplify=500", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ShortestPathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Coordinates, 3)
		path, err := datastructure.DecodePolyline(resp.Path)
		require.NoError(t, err)
		assert.Len(t, path, 2)
	})

	t.Run("lat1 lon1 lat2 lon2 aliases", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/navigations/route?lat1=17.3850&lon1=78.4867&lat2=17.3900&lon2=78.4900", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [4]float64{17.3850, 78.4867, 17.3900, 78.4900}, nav.coords)

		rec = do(t, r, http.MethodGet, "/api/navigations/route?src_lat=17.3850&lon1=78.4867&lat2=17.3900&dst_lon=78.4900", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [4]float64{17.3850, 78.4867, 17.3900, 78.4900}, nav.coords)

		rec = do(t, r, http.MethodGet, "/api/navigations/route?lat1=17.3850&lon1=78.4867&lat2=17.3900", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing query param", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/navigations/route?src_lat=17.3850&src_lon=78.4867&dst_lat=17.3900", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("json body", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/navigations/route", map[string]float64{
			"src_lat": 17.3850, "src_lon": 78.4867, "dst_lat": 17.3900, "dst_lon": 78.4900,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("by address", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/navigations/route", map[string]string{
			"from_address": "Main Street", "to_address": "Elm Street",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ShortestPathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.From)
		require.NotNil(t, resp.To)
		assert.Equal(t, "Main Street", resp.From.Street)
		assert.Equal(t, "Elm Street", resp.To.Street)
	})

	t.Run("neither coordinates nor addresses", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/navigations/route", map[string]float64{"src_lat": 17.3850})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/navigations/route", map[string]float64{
			"src_lat": 117.3850, "src_lon": 78.4867, "dst_lat": 17.3900, "dst_lon": 78.4900,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ErrValidation)
	})

	assert.Equal(t, 6.0, testutil.ToFloat64(m.routes.WithLabelValues("found")))
}

func TestShortestPathHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{name: "no route", err: server.NewErrorf(server.ErrNoRoute, "no route"), wantStatus: http.StatusNotFound, wantText: "No route."},
		{name: "not covered", err: server.NewErrorf(server.ErrNotFound, "not covered"), wantStatus: http.StatusNotFound, wantText: "Not found."},
		{name: "timeout", err: server.NewErrorf(server.ErrTimeout, "timed out"), wantStatus: http.StatusGatewayTimeout, wantText: "Timeout."},
		{name: "store unavailable", err: server.NewErrorf(server.ErrUnavailable, "unavailable"), wantStatus: http.StatusServiceUnavailable, wantText: "Store unavailable."},
		{name: "unknown error", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantText: "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := newTestRouter(&fakeNavigation{err: tt.err}, &fakeGeocoding{}, &fakeTiles{})
			rec := do(t, r, http.MethodGet, "/api/navigations/route?src_lat=17.3850&src_lon=78.4867&dst_lat=17.3900&dst_lon=78.4900", nil)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantText, resp.StatusText)
			assert.NotContains(t, resp.ErrorText, "boom")
			assert.Equal(t, 0.0, testutil.ToFloat64(m.routes.WithLabelValues("found")))
		})
	}
}

type headerCountingRecorder struct {
	*httptest.ResponseRecorder
	writeHeaders int
}

func (rec *headerCountingRecorder) WriteHeader(code int) {
	rec.writeHeaders++
	rec.ResponseRecorder.WriteHeader(code)
}

func TestRequestTimeout(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestTimeout(20 * time.Millisecond))
	NavigatorRouter(r, &fakeNavigation{block: true}, nil)

	rec := &headerCountingRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/api/navigations/route?src_lat=17.3850&src_lon=78.4867&dst_lat=17.3900&dst_lon=78.4900", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, 1, rec.writeHeaders)

	var resp ErrResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Timeout.", resp.StatusText)

	t.Run("fast handlers are untouched", func(t *testing.T) {
		r := chi.NewRouter()
		r.Use(RequestTimeout(time.Second))
		r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
			_, ok := r.Context().Deadline()
			assert.True(t, ok)
			w.WriteHeader(http.StatusNoContent)
		})

		rec := &headerCountingRecorder{ResponseRecorder: httptest.NewRecorder()}
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 1, rec.writeHeaders)
	})
}

func TestShortestPathsHandler(t *testing.T) {
	nav := &fakeNavigation{route: testRoute()}
	r, _ := newTestRouter(nav, &fakeGeocoding{}, &fakeTiles{})

	body := map[string]interface{}{
		"queries": []map[string]float64{
			{"src_lat": 17.3850, "src_lon": 78.4867, "dst_lat": 17.3900, "dst_lon": 78.4900},
			{"src_lat": 17.3850, "src_lon": 78.4867, "dst_lat": 17.3850, "dst_lon": 78.4867},
		},
	}
	rec := do(t, r, http.MethodPost, "/api/navigations/routes", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Routes []struct {
			Found bool `json:"found"`
			Route *struct {
				Distance float64 `json:"distance"`
			} `json:"route"`
			Error *struct {
				Status string `json:"status"`
			} `json:"error"`
		} `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Routes, 2)
	assert.True(t, resp.Routes[0].Found)
	assert.Equal(t, 700.0, resp.Routes[0].Route.Distance)
	assert.False(t, resp.Routes[1].Found)
	assert.Equal(t, "No route.", resp.Routes[1].Error.Status)
	assert.Len(t, nav.queries, 2)

	t.Run("too many queries", func(t *testing.T) {
		queries := make([]map[string]float64, maxBatchQueries+1)
		for i := range queries {
			queries[i] = map[string]float64{"src_lat": 1, "src_lon": 1, "dst_lat": 2, "dst_lon": 2}
		}
		rec := do(t, r, http.MethodPost, "/api/navigations/routes", map[string]interface{}{"queries": queries})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty batch", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/navigations/routes", map[string]interface{}{"queries": []interface{}{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNearestNodesHandler(t *testing.T) {
	nav := &fakeNavigation{}
	r, _ := newTestRouter(nav, &fakeGeocoding{}, &fakeTiles{})

	rec := do(t, r, http.MethodGet, "/api/navigations/nearest?lat=17.3850&lon=78.4867&k=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, nav.k)

	var resp []NearestNodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(10), resp[0].NodeID)

	rec = do(t, r, http.MethodGet, "/api/navigations/nearest?lat=17.3850&lon=78.4867&radius=250", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, 250.0, nav.radius)
	assert.Equal(t, maxNearestK, nav.k)

	rec = do(t, r, http.MethodGet, "/api/navigations/nearest?lat=17.3850&lon=78.4867&radius=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/navigations/nearest?lat=17.3850&lon=78.4867&k=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/navigations/nearest?lat=abc&lon=78.4867", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeGeocoding struct {
	limit int
}

func (f *fakeGeocoding) SearchAddresses(ctx context.Context, q string, limit int) []store.Address {
	f.limit = limit
	if q == "" {
		return []store.Address{}
	}
	return []store.Address{store.NewAddress("Elm Street", "Springfield", 17.3870, 78.4880)}
}

func (f *fakeGeocoding) Suggest(ctx context.Context, q string, limit int) []string {
	return []string{"Elm Street, Springfield"}
}

func (f *fakeGeocoding) Geocode(ctx context.Context, text string) (store.Address, error) {
	if text != "Elm Street" {
		return store.Address{}, server.NewErrorf(server.ErrNotFound, "address %q not found", text)
	}
	return store.NewAddress("Elm Street", "Springfield", 17.3870, 78.4880), nil
}

func (f *fakeGeocoding) ReverseGeocode(ctx context.Context, lat, lon float64) (geocoder.ReverseResult, error) {
	return geocoder.ReverseResult{Address: store.NewAddress("Elm Street", "Springfield", 17.3870, 78.4880), Distance: 12.5}, nil
}

func TestGeocodingHandlers(t *testing.T) {
	gc := &fakeGeocoding{}
	r, _ := newTestRouter(&fakeNavigation{}, gc, &fakeTiles{})

	t.Run("search", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/addresses?q=elm", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, defaultSearchLimit, gc.limit)

		var resp []store.Address
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Elm Street", resp[0].Street)
	})

	t.Run("empty search is an empty list", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/addresses", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("limit out of range", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/addresses?q=elm&limit=1000", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("suggest", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/addresses/suggest?q=elm", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["Elm Street, Springfield"]`, rec.Body.String())
	})

	t.Run("geocode", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/geocode?q=Elm+Street", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"city":"Springfield"`)

		rec = do(t, r, http.MethodGet, "/api/geocode?q=Nowhere", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, r, http.MethodGet, "/api/geocode", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reverse", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/geocode/reverse?lat=17.3871&lon=78.4881", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp geocoder.ReverseResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Elm Street", resp.Address.Street)
		assert.Equal(t, 12.5, resp.Distance)

		rec = do(t, r, http.MethodGet, "/api/geocode/reverse?lat=17.3871", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

type fakeTiles struct {
	tms  bool
	tile service.Tile
	err  error
}

func (f *fakeTiles) GetTile(ctx context.Context, zoom, x, y int, tms bool) (service.Tile, error) {
	f.tms = tms
	if f.err != nil {
		return service.Tile{}, f.err
	}
	return f.tile, nil
}

func TestTileHandler(t *testing.T) {
	payload := []byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02}
	tiles := &fakeTiles{tile: service.Tile{Data: payload, Compression: store.CompressionGzip, ContentType: "application/x-protobuf"}}
	r, _ := newTestRouter(&fakeNavigation{}, &fakeGeocoding{}, tiles)

	rec := do(t, r, http.MethodGet, "/api/tiles/3/2/1.pbf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))
	assert.False(t, tiles.tms)

	rec = do(t, r, http.MethodGet, "/api/tiles/3/2/1?scheme=tms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, tiles.tms)

	rec = do(t, r, http.MethodGet, "/api/tiles/3/2/1?scheme=wms", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tiles/a/2/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tiles.err = server.NewErrorf(server.ErrNotFound, "tile not found")
	rec = do(t, r, http.MethodGet, "/api/tiles/3/2/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
