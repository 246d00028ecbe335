package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lintang-b-s/offlinenav/pkg/util"
	"go.uber.org/zap"
)

type Address struct {
	ID     int64   `json:"id"`
	Street string  `json:"street"`
	City   string  `json:"city"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

func NewAddress(street, city string, lat, lon float64) Address {
	return Address{Street: street, City: city, Lat: lat, Lon: lon}
}

// Label "street, city", the form autocomplete shows and Resolve accepts back.
func (a Address) Label() string {
	return a.Street + ", " + a.City
}

type AddressStore struct {
	db          *sql.DB
	log         *zap.Logger
	defaultCity string
}

func NewAddressStore(db *DB, log *zap.Logger, defaultCity string) *AddressStore {
	return &AddressStore{db: db.db, log: log, defaultCity: defaultCity}
}

const upsertAddressQuery = `INSERT INTO addresses (street, city, lat, lon) VALUES (?, ?, ?, ?)
	ON CONFLICT(street, city) DO UPDATE SET lat = excluded.lat, lon = excluded.lon`

func (s *AddressStore) normalize(street, city string) (string, string) {
	street = util.NormalizeSpace(street)
	city = util.NormalizeSpace(city)
	if city == "" {
		city = s.defaultCity
	}
	return street, city
}

// Upsert inserts the address or replaces the coordinate of the existing (street, city) row.
func (s *AddressStore) Upsert(ctx context.Context, street, city string, lat, lon float64) error {
	street, city = s.normalize(street, city)
	if street == "" {
		return errors.New("street is empty")
	}

	if _, err := s.db.ExecContext(ctx, upsertAddressQuery, street, city, lat, lon); err != nil {
		return fmt.Errorf("%w: upsert address %q: %v", ErrStoreUnavailable, street, err)
	}
	return nil
}

// BulkUpsert upserts every address with a street in one transaction, returns the number written.
func (s *AddressStore) BulkUpsert(ctx context.Context, addresses []Address) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertAddressQuery)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare: %v", ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	written := 0
	for _, a := range addresses {
		street, city := s.normalize(a.Street, a.City)
		if street == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, street, city, a.Lat, a.Lon); err != nil {
			return 0, fmt.Errorf("%w: upsert address %q: %v", ErrStoreUnavailable, street, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrStoreUnavailable, err)
	}
	return written, nil
}

// Search unicode case-insensitive substring match on street or city ordered by row id. "" returns every
// address. limit <= 0 means no limit. errors are logged and give an empty result.
func (s *AddressStore) Search(ctx context.Context, q string, limit int) []Address {
	addresses, err := s.search(ctx, q, limit)
	if err != nil {
		s.log.Error("address search failed", zap.String("query", q), zap.Error(err))
		return []Address{}
	}
	return addresses
}

func (s *AddressStore) search(ctx context.Context, q string, limit int) ([]Address, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + util.EscapeLike(strings.ToLower(util.NormalizeSpace(q))) + "%"

	rows, err := s.db.QueryContext(ctx, `SELECT id, street, city, lat, lon FROM addresses
		WHERE fold(street) LIKE ? ESCAPE '\' OR fold(city) LIKE ? ESCAPE '\'
		ORDER BY id LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return scanAddresses(rows)
}

func scanAddresses(rows *sql.Rows) ([]Address, error) {
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.Lat, &a.Lon); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

// Resolve geocodes free text. tried in order: "street, city" exact match, exact street match,
// substring search on the street part. the first hit by row id wins.
func (s *AddressStore) Resolve(ctx context.Context, text string) (Address, error) {
	text = util.NormalizeSpace(text)
	if text == "" {
		return Address{}, fmt.Errorf("%w: empty query", ErrAddressNotFound)
	}

	needle := text
	if i := strings.LastIndex(text, ","); i > 0 {
		street, city := util.NormalizeSpace(text[:i]), util.NormalizeSpace(text[i+1:])
		needle = street
		a, err := s.queryOne(ctx, `SELECT id, street, city, lat, lon FROM addresses
			WHERE fold(street) = ? AND fold(city) = ? ORDER BY id LIMIT 1`, strings.ToLower(street), strings.ToLower(city))
		if err == nil || !errors.Is(err, ErrAddressNotFound) {
			return a, err
		}
	}

	a, err := s.queryOne(ctx, `SELECT id, street, city, lat, lon FROM addresses
		WHERE fold(street) = ? ORDER BY id LIMIT 1`, strings.ToLower(text))
	if err == nil || !errors.Is(err, ErrAddressNotFound) {
		return a, err
	}

	matches, err := s.search(ctx, needle, 1)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(matches) == 0 {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressNotFound, text)
	}
	return matches[0], nil
}

func (s *AddressStore) queryOne(ctx context.Context, query string, args ...any) (Address, error) {
	var a Address
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.Street, &a.City, &a.Lat, &a.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrAddressNotFound
	}
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *AddressStore) All(ctx context.Context) ([]Address, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, street, city, lat, lon FROM addresses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return scanAddresses(rows)
}

func (s *AddressStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}
