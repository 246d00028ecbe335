package geo

import "github.com/golang/geo/s2"

type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

// IsValidCoordinate lat in [-90,90], lon in [-180,180].
func IsValidCoordinate(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// GreatCircleMeters s2 angular distance on a sphere of earthRadiusM.
func GreatCircleMeters(latOne, lonOne, latTwo, lonTwo float64) float64 {
	angle := s2.LatLngFromDegrees(latOne, lonOne).Distance(s2.LatLngFromDegrees(latTwo, lonTwo))
	return angle.Radians() * earthRadiusM
}

// PointLinePerpendicularDistance distance in meter between p and the great-circle segment (a,b).
func PointLinePerpendicularDistance(a, b, p Coordinate) float64 {
	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	if aS2 == bS2 {
		return aS2.Distance(pS2).Radians() * earthRadiusM
	}
	return s2.DistanceFromSegment(pS2, aS2, bS2).Radians() * earthRadiusM
}
