package geo

import "container/list"

const (
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0 // 7 meter
)

// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/

// RamerDouglasPeucker simplify a route line. threshold in meter, <= 0 means DOUGLAS_PEUCKER_THRESHOLDS.
// first & last point always kept.
func RamerDouglasPeucker(coords []Coordinate, threshold float64) []Coordinate {
	size := len(coords)
	if size < 3 {
		return coords
	}
	if threshold <= 0 {
		threshold = DOUGLAS_PEUCKER_THRESHOLDS
	}

	kepts := make([]bool, size)
	kepts[0] = true
	kepts[size-1] = true

	stack := list.New()
	stack.PushBack([2]int{0, size - 1})

	for stack.Len() > 0 {
		pair := stack.Remove(stack.Back()).([2]int)
		left, right := pair[0], pair[1]
		var maxDist float64
		farthestIndex := left

		// sweep over range to find the farthest point from the segment (left,right)
		for i := left + 1; i < right; i++ {
			dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i])
			if dist > maxDist {
				maxDist = dist
				farthestIndex = i
			}
		}

		if maxDist > threshold {
			kepts[farthestIndex] = true
			if left < farthestIndex {
				stack.PushBack([2]int{left, farthestIndex})
			}
			if farthestIndex < right {
				stack.PushBack([2]int{farthestIndex, right})
			}
		}
	}

	simplified := make([]Coordinate, 0, size)
	for i, necessary := range kepts {
		if necessary {
			simplified = append(simplified, coords[i])
		}
	}
	return simplified
}
