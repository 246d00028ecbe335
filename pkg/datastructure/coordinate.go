package datastructure

import "github.com/lintang-b-s/offlinenav/pkg/geo"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func ToGeoCoordinates(coords []Coordinate) []geo.Coordinate {
	geoCoords := make([]geo.Coordinate, len(coords))
	for i, c := range coords {
		geoCoords[i] = geo.NewCoordinate(c.Lat, c.Lon)
	}
	return geoCoords
}

func FromGeoCoordinates(geoCoords []geo.Coordinate) []Coordinate {
	coords := make([]Coordinate, len(geoCoords))
	for i, c := range geoCoords {
		coords[i] = NewCoordinate(c.Lat, c.Lon)
	}
	return coords
}
