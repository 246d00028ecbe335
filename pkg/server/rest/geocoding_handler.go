package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/lintang-b-s/offlinenav/pkg/geocoder"
	"github.com/lintang-b-s/offlinenav/pkg/store"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type GeocodingService interface {
	SearchAddresses(ctx context.Context, q string, limit int) []store.Address
	Suggest(ctx context.Context, q string, limit int) []string
	Geocode(ctx context.Context, text string) (store.Address, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (geocoder.ReverseResult, error)
}

type GeocodingHandler struct {
	svc GeocodingService
}

func GeocodingRouter(r *chi.Mux, svc GeocodingService) {
	handler := &GeocodingHandler{svc: svc}

	r.Group(func(r chi.Router) {
		r.Get("/api/addresses", handler.SearchAddresses)
		r.Get("/api/addresses/suggest", handler.Suggest)
		r.Get("/api/geocode", handler.Geocode)
		r.Get("/api/geocode/reverse", handler.ReverseGeocode)
	})
}

// SearchAddresses
//
//	@Summary		address autocomplete
//	@Description	addresses whose street or city contains q (case-insensitive), in insertion order. an empty q lists every address
//	@Tags			addresses
//	@Param			q		query	string	false	"search text"
//	@Param			limit	query	int		false	"max results (default 10, max 100)"
//	@Produce		application/json
//	@Router			/addresses [get]
//	@Success		200	{array}		store.Address
//	@Failure		400	{object}	ErrResponse
func (h *GeocodingHandler) SearchAddresses(w http.ResponseWriter, r *http.Request) {
	limit, err := searchLimit(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	addresses := h.svc.SearchAddresses(r.Context(), r.URL.Query().Get("q"), limit)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, addresses)
}

// Suggest
//
//	@Summary		address labels for autocomplete
//	@Description	"street, city" labels of the addresses matching q
//	@Tags			addresses
//	@Param			q		query	string	false	"search text"
//	@Param			limit	query	int		false	"max results (default 10, max 100)"
//	@Produce		application/json
//	@Router			/addresses/suggest [get]
//	@Success		200	{array}		string
//	@Failure		400	{object}	ErrResponse
func (h *GeocodingHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := searchLimit(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	labels := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, labels)
}

// Geocode
//
//	@Summary		forward geocoding
//	@Description	coordinate of a free-text address ("street, city" or a street name)
//	@Tags			geocode
//	@Param			q	query	string	true	"address"
//	@Produce		application/json
//	@Router			/geocode [get]
//	@Success		200	{object}	store.Address
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *GeocodingHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("q is required")))
		return
	}

	address, err := h.svc.Geocode(r.Context(), q)
	if err != nil {
		render.Render(w, r, ErrorRenderer(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, address)
}

// ReverseGeocode
//
//	@Summary		reverse geocoding
//	@Description	address nearest to a coordinate, distance in meter
//	@Tags			geocode
//	@Param			lat	query	number	true	"latitude"
//	@Param			lon	query	number	true	"longitude"
//	@Produce		application/json
//	@Router			/geocode/reverse [get]
//	@Success		200	{object}	geocoder.ReverseResult
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *GeocodingHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.svc.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		render.Render(w, r, ErrorRenderer(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}

func searchLimit(r *http.Request) (int, error) {
	limit, err := queryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > maxSearchLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxSearchLimit)
	}
	return limit, nil
}
