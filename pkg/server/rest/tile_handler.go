package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/lintang-b-s/offlinenav/pkg/server/rest/service"
	"github.com/lintang-b-s/offlinenav/pkg/store"
)

type TileService interface {
	GetTile(ctx context.Context, zoom, x, y int, tms bool) (service.Tile, error)
}

type TileHandler struct {
	svc TileService
}

func TileRouter(r *chi.Mux, svc TileService) {
	handler := &TileHandler{svc: svc}

	r.Group(func(r chi.Router) {
		r.Get("/api/tiles/{z}/{x}/{y}", handler.GetTile)
	})
}

// GetTile
//
//	@Summary		map tile
//	@Description	raw tile payload from the mbtiles table. y is an xyz row unless scheme=tms. gzip payloads are sent with Content-Encoding gzip
//	@Tags			tiles
//	@Param			z		path	int		true	"zoom"
//	@Param			x		path	int		true	"column"
//	@Param			y		path	int		true	"row (an optional extension such as .pbf is ignored)"
//	@Param			scheme	query	string	false	"xyz (default) or tms"
//	@Produce		application/x-protobuf
//	@Router			/tiles/{z}/{x}/{y} [get]
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *TileHandler) GetTile(w http.ResponseWriter, r *http.Request) {
	z, err := pathInt(r, "z")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	x, err := pathInt(r, "x")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	y, err := pathInt(r, "y")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	var tms bool
	switch strings.ToLower(r.URL.Query().Get("scheme")) {
	case "", "xyz":
	case "tms":
		tms = true
	default:
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("scheme must be xyz or tms")))
		return
	}

	tile, err := h.svc.GetTile(r.Context(), z, x, y, tms)
	if err != nil {
		render.Render(w, r, ErrorRenderer(err))
		return
	}

	w.Header().Set("Content-Type", tile.ContentType)
	if tile.Compression == store.CompressionGzip {
		w.Header().Set("Content-Encoding", "gzip")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(tile.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(tile.Data)
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
