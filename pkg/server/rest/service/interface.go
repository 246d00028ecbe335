package service

import (
	"context"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/engine/routing"
	"github.com/lintang-b-s/offlinenav/pkg/geocoder"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"github.com/lintang-b-s/offlinenav/pkg/store"
)

type RoutingEngine interface {
	Route(ctx context.Context, startLat, startLon, endLat, endLon float64) (*routing.Route, error)
	NearestNodes(lat, lon float64, k int) ([]snap.Candidate, error)
	NodesWithinRadius(lat, lon, radius float64) ([]snap.Candidate, error)
}

type KVDB interface {
	GetEdgesMetadata(edgeIDs []int32) ([]datastructure.EdgeMetadata, error)
}

type Geocoder interface {
	Forward(ctx context.Context, text string) (store.Address, error)
	Reverse(lat, lon float64) (geocoder.ReverseResult, error)
	Suggest(ctx context.Context, q string, limit int) []string
}

type AddressSearcher interface {
	Search(ctx context.Context, q string, limit int) []store.Address
}

type TileStore interface {
	Get(ctx context.Context, zoom, column, row int) ([]byte, error)
}
