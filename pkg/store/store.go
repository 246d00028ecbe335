package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"modernc.org/sqlite"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrAddressNotFound  = errors.New("address not found")
	ErrTileNotFound     = errors.New("tile not found")
)

func init() {
	// sqlite LIKE and NOCASE only fold ascii, fold lowercases any unicode text.
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	case nil:
		return nil, nil
	default:
		return v, nil
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		UNIQUE(street, city)
	)`,
	`CREATE TABLE IF NOT EXISTS tiles (
		zoom_level INTEGER NOT NULL,
		tile_column INTEGER NOT NULL,
		tile_row INTEGER NOT NULL,
		tile_data BLOB,
		PRIMARY KEY (zoom_level, tile_column, tile_row)
	)`,
}

// DB sqlite file holding the addresses & tiles tables (mbtiles compatible tiles schema).
type DB struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Open opens (and creates when missing) the sqlite file and applies the schema.
// every failure is reported as ErrStoreUnavailable.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrStoreUnavailable, path, err)
	}

	db.SetMaxOpenConns(4)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s on %s: %v", ErrStoreUnavailable, pragma, path, err)
		}
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: migrate %s: %v", ErrStoreUnavailable, path, err)
		}
	}

	log.Info("sqlite store opened", zap.String("path", path))
	return &DB{db: db, path: path, log: log}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
