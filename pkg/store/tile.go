package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	default:
		return "none"
	}
}

var gzipMagic = []byte{0x1f, 0x8b}

// DetectCompression gzip when the payload starts with the gzip magic bytes (vector mbtiles).
func DetectCompression(data []byte) Compression {
	if bytes.HasPrefix(data, gzipMagic) {
		return CompressionGzip
	}
	return CompressionNone
}

// TMSRow mbtiles rows count from the bottom (tms), xyz tile urls count from the top.
// the conversion is its own inverse.
func TMSRow(zoom, row int) int {
	return (1 << uint(zoom)) - 1 - row
}

type TileKey struct {
	Zoom   int
	Column int
	Row    int
}

type TileStore struct {
	db    *sql.DB
	log   *zap.Logger
	cache *lru.Cache[TileKey, []byte]
}

// NewTileStore cacheSize tiles are kept in a read-through lru cache, 0 disables it.
func NewTileStore(db *DB, log *zap.Logger, cacheSize int) (*TileStore, error) {
	ts := &TileStore{db: db.db, log: log}
	if cacheSize > 0 {
		cache, err := lru.New[TileKey, []byte](cacheSize)
		if err != nil {
			return nil, err
		}
		ts.cache = cache
	}
	return ts, nil
}

// Get raw tile bytes, ErrTileNotFound when the key is absent. the payload is returned as stored,
// every call gets its own copy so callers may modify it.
func (ts *TileStore) Get(ctx context.Context, zoom, column, row int) ([]byte, error) {
	key := TileKey{Zoom: zoom, Column: column, Row: row}
	if ts.cache != nil {
		if data, ok := ts.cache.Get(key); ok {
			return bytes.Clone(data), nil
		}
	}

	var data []byte
	err := ts.db.QueryRowContext(ctx, `SELECT tile_data FROM tiles
		WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`, zoom, column, row).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d/%d/%d", ErrTileNotFound, zoom, column, row)
	}
	if err != nil {
		ts.log.Error("tile lookup failed", zap.Int("zoom", zoom), zap.Int("column", column),
			zap.Int("row", row), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if data == nil {
		data = []byte{}
	}

	if ts.cache != nil {
		ts.cache.Add(key, bytes.Clone(data))
	}
	return data, nil
}

// Put writes a tile when the key is not populated yet, existing tiles are left untouched.
// returns whether the tile was written.
func (ts *TileStore) Put(ctx context.Context, zoom, column, row int, data []byte) (bool, error) {
	res, err := ts.db.ExecContext(ctx, `INSERT OR IGNORE INTO tiles (zoom_level, tile_column, tile_row, tile_data)
		VALUES (?, ?, ?, ?)`, zoom, column, row, data)
	if err != nil {
		return false, fmt.Errorf("%w: put tile %d/%d/%d: %v", ErrStoreUnavailable, zoom, column, row, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (ts *TileStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := ts.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// ImportTileDir writes every {z}/{x}/{y}.{ext} file under dir, an xyz tile directory as written by
// tile downloaders. rows are flipped to tms. returns the number of tiles written.
func (ts *TileStore) ImportTileDir(ctx context.Context, dir string) (int, error) {
	written := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		zoom, column, row, ok := parseTilePath(rel)
		if !ok {
			ts.log.Debug("skipping non tile file", zap.String("path", path))
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ok, err = ts.Put(ctx, zoom, column, TMSRow(zoom, row), data)
		if err != nil {
			return err
		}
		if ok {
			written++
		}
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("import tiles from %s: %w", dir, err)
	}
	return written, nil
}

func parseTilePath(rel string) (zoom, column, row int, ok bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	name := parts[2]
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	var err error
	if zoom, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if column, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if row, err = strconv.Atoi(name); err != nil {
		return 0, 0, 0, false
	}
	n := 1 << uint(zoom)
	if zoom < 0 || zoom > 30 || column < 0 || column >= n || row < 0 || row >= n {
		return 0, 0, 0, false
	}
	return zoom, column, row, true
}
