package geo

import "math"

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance great-circle distance in km.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// HaversineMeters great-circle distance in meter. edge length & a* heuristic use this.
func HaversineMeters(latOne, longOne, latTwo, longTwo float64) float64 {
	return CalculateHaversineDistance(latOne, longOne, latTwo, longTwo) * 1000
}

// EquirectangularMeters equirectangular approximation of the great-circle distance (in meter),
// projected around the first point. error is negligible for points a few km apart.
// the x scale only depends on latOne, so for a fixed query point the nearest point of a
// lat/lon rectangle is its clamped corner/edge point.
func EquirectangularMeters(latOne, longOne, latTwo, longTwo float64) float64 {
	latOneRad := degreeToRadians(latOne)
	latTwoRad := degreeToRadians(latTwo)
	dLon := degreeToRadians(longTwo - longOne)
	if dLon > math.Pi {
		dLon -= 2 * math.Pi
	} else if dLon < -math.Pi {
		dLon += 2 * math.Pi
	}
	x := dLon * math.Cos(latOneRad)
	y := latTwoRad - latOneRad
	return math.Sqrt(x*x+y*y) * earthRadiusM
}
