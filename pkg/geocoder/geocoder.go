package geocoder

import (
	"context"
	"errors"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"go.uber.org/zap"
)

var (
	ErrNoAddress = errors.New("no address indexed")
)

const (
	// rtreego ranks by euclidean distance on degrees, the k best are re-ranked by great-circle distance.
	reverseCandidates = 8
	pointTolerance    = 1e-7
)

type AddressStore interface {
	All(ctx context.Context) ([]store.Address, error)
	Resolve(ctx context.Context, text string) (store.Address, error)
	Search(ctx context.Context, q string, limit int) []store.Address
}

type addressItem struct {
	address store.Address
	bound   rtreego.Rect
}

func (a *addressItem) Bounds() rtreego.Rect {
	return a.bound
}

// ReverseResult address closest to the query point with its distance in meter.
type ReverseResult struct {
	Address  store.Address `json:"address"`
	Distance float64       `json:"distance"`
}

// Geocoder forward geocoding goes to the address table, reverse geocoding to an in-memory r-tree
// built from it.
type Geocoder struct {
	log       *zap.Logger
	addresses AddressStore
	tree      *rtreego.Rtree
	size      int
}

func NewGeocoder(ctx context.Context, log *zap.Logger, addresses AddressStore) (*Geocoder, error) {
	all, err := addresses.All(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]rtreego.Spatial, 0, len(all))
	for _, a := range all {
		items = append(items, &addressItem{
			address: a,
			bound:   rtreego.Point{a.Lat, a.Lon}.ToRect(pointTolerance),
		})
	}

	log.Info("reverse geocoder index built", zap.Int("addresses", len(items)))
	return &Geocoder{
		log:       log,
		addresses: addresses,
		tree:      rtreego.NewTree(2, 25, 50, items...),
		size:      len(items),
	}, nil
}

// Forward coordinate of a free-text address.
func (g *Geocoder) Forward(ctx context.Context, text string) (store.Address, error) {
	return g.addresses.Resolve(ctx, text)
}

// Suggest "street, city" labels of the addresses matching q, for autocomplete.
func (g *Geocoder) Suggest(ctx context.Context, q string, limit int) []string {
	addresses := g.addresses.Search(ctx, q, limit)
	labels := make([]string, 0, len(addresses))
	for _, a := range addresses {
		labels = append(labels, a.Label())
	}
	return labels
}

// Reverse address closest to (lat, lon).
func (g *Geocoder) Reverse(lat, lon float64) (ReverseResult, error) {
	if g.size == 0 {
		return ReverseResult{}, ErrNoAddress
	}

	nearest := g.tree.NearestNeighbors(reverseCandidates, rtreego.Point{lat, lon})
	results := make([]ReverseResult, 0, len(nearest))
	for _, s := range nearest {
		item, ok := s.(*addressItem)
		if !ok {
			continue
		}
		results = append(results, ReverseResult{
			Address:  item.address,
			Distance: geo.HaversineMeters(lat, lon, item.address.Lat, item.address.Lon),
		})
	}
	if len(results) == 0 {
		return ReverseResult{}, ErrNoAddress
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Address.ID < results[j].Address.ID
		}
		return results[i].Distance < results[j].Distance
	})
	return results[0], nil
}

func (g *Geocoder) Size() int {
	return g.size
}
