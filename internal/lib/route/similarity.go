package route

import (
	"math"

	"github.com/walksafe/server/internal/lib/geo"
)

// Alternative routes that barely differ from one another are noise in a
// ranking. Candidates count as distinct when their lengths differ by more
// than 20%, or when at least 3 of 5 evenly sampled interior points sit more
// than 100 meters apart.
const (
	lengthDifferenceRatio   = 0.2
	similaritySampleCount   = 5
	sampleDistanceThreshold = 100.0 // meters
	distinctSampleMinimum   = 3
)

// SignificantlyDifferent reports whether two routes are meaningfully
// distinct alternatives.
func SignificantlyDifferent(a, b Route) bool {
	index := NewProximityIndex()
	geoUtils := geo.NewGeoUtils()

	lengthA := index.RouteLength(a)
	lengthB := index.RouteLength(b)

	shorter := math.Min(lengthA, lengthB)
	if shorter > 0 && math.Abs(lengthA-lengthB) > shorter*lengthDifferenceRatio {
		return true
	}

	if len(a.Points) < 2 || len(b.Points) < 2 {
		return false
	}

	differingSamples := 0
	for i := 1; i <= similaritySampleCount; i++ {
		fraction := float64(i) / float64(similaritySampleCount+1)
		pa := PointAtFraction(a, fraction)
		pb := PointAtFraction(b, fraction)

		if geoUtils.PointToPoint(pa, pb) > sampleDistanceThreshold {
			differingSamples++
		}
	}

	return differingSamples >= distinctSampleMinimum
}

// FilterDistinct keeps the first route and every subsequent route that is
// significantly different from all previously kept routes, preserving order.
func FilterDistinct(routes []Route) []Route {
	var kept []Route

	for _, candidate := range routes {
		distinct := true
		for _, existing := range kept {
			if !SignificantlyDifferent(existing, candidate) {
				distinct = false
				break
			}
		}
		if distinct {
			kept = append(kept, candidate)
		}
	}

	return kept
}

// PointAtFraction walks the polyline to the point at the given fraction of
// its total arc length. The route must have at least one point.
func PointAtFraction(r Route, fraction float64) geo.Point {
	geoUtils := geo.NewGeoUtils()
	totalLength := NewProximityIndex().RouteLength(r)
	if totalLength <= 0 {
		return r.Points[0]
	}

	target := totalLength * fraction
	traveled := 0.0

	for i := 0; i < len(r.Points)-1; i++ {
		segmentLength := geoUtils.PointToPoint(r.Points[i], r.Points[i+1])
		if traveled+segmentLength >= target {
			if segmentLength == 0 {
				return r.Points[i]
			}
			t := (target - traveled) / segmentLength
			return geoUtils.Interpolate(r.Points[i], r.Points[i+1], t)
		}
		traveled += segmentLength
	}

	return r.Points[len(r.Points)-1]
}
