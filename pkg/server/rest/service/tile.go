package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/store"
)

const maxZoom = 22

type TileService struct {
	tiles TileStore
}

func NewTileService(tiles TileStore) *TileService {
	return &TileService{tiles: tiles}
}

// Tile raw tile payload. ContentType describes the payload after removing Compression.
type Tile struct {
	Data        []byte
	Compression store.Compression
	ContentType string
}

// GetTile tile at xyz coordinates, tms rows when tms is set. the payload is not decoded.
func (uc *TileService) GetTile(ctx context.Context, zoom, x, y int, tms bool) (Tile, error) {
	if zoom < 0 || zoom > maxZoom {
		return Tile{}, server.NewErrorf(server.ErrBadParamInput, "zoom must be between 0 and %d", maxZoom)
	}
	n := 1 << uint(zoom)
	if x < 0 || x >= n || y < 0 || y >= n {
		return Tile{}, server.NewErrorf(server.ErrBadParamInput, "tile %d/%d/%d out of range", zoom, x, y)
	}

	row := y
	if !tms {
		row = store.TMSRow(zoom, y)
	}

	data, err := uc.tiles.Get(ctx, zoom, x, row)
	switch {
	case errors.Is(err, store.ErrTileNotFound):
		return Tile{}, server.WrapErrorf(err, server.ErrNotFound, "tile %d/%d/%d not found", zoom, x, y)
	case errors.Is(err, store.ErrStoreUnavailable):
		return Tile{}, server.WrapErrorf(err, server.ErrUnavailable, "tile store unavailable")
	case err != nil:
		return Tile{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	compression := store.DetectCompression(data)
	contentType := "application/x-protobuf"
	if compression == store.CompressionNone {
		contentType = http.DetectContentType(data)
	}
	return Tile{Data: data, Compression: compression, ContentType: contentType}, nil
}
