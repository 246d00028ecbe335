package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/geocoder"
	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/store"
)

type GeocodingService struct {
	geocoder  Geocoder
	addresses AddressSearcher
}

func NewGeocodingService(geocoder Geocoder, addresses AddressSearcher) *GeocodingService {
	return &GeocodingService{geocoder: geocoder, addresses: addresses}
}

// SearchAddresses autocomplete. store failures give an empty list.
func (uc *GeocodingService) SearchAddresses(ctx context.Context, q string, limit int) []store.Address {
	return uc.addresses.Search(ctx, q, limit)
}

func (uc *GeocodingService) Suggest(ctx context.Context, q string, limit int) []string {
	return uc.geocoder.Suggest(ctx, q, limit)
}

func (uc *GeocodingService) Geocode(ctx context.Context, text string) (store.Address, error) {
	a, err := uc.geocoder.Forward(ctx, text)
	if err != nil {
		return store.Address{}, addressError(err, text)
	}
	return a, nil
}

func (uc *GeocodingService) ReverseGeocode(ctx context.Context, lat, lon float64) (geocoder.ReverseResult, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return geocoder.ReverseResult{}, server.NewErrorf(server.ErrBadParamInput, "invalid coordinate (%f, %f)", lat, lon)
	}
	res, err := uc.geocoder.Reverse(lat, lon)
	if errors.Is(err, geocoder.ErrNoAddress) {
		return geocoder.ReverseResult{}, server.WrapErrorf(err, server.ErrNotFound, "no address near (%f, %f)", lat, lon)
	}
	if err != nil {
		return geocoder.ReverseResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return res, nil
}
