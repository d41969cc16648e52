package route

import (
	"errors"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

// ErrRouteTooShort is returned when an operation needs at least one segment
var ErrRouteTooShort = errors.New("route must have at least 2 points")

// proximityIndex implements the ProximityIndex interface
type proximityIndex struct {
	geoUtils geo.GeoUtils
}

// NewProximityIndex creates a new ProximityIndex implementation
func NewProximityIndex() ProximityIndex {
	return &proximityIndex{geoUtils: geo.NewGeoUtils()}
}

// RouteLength sums the haversine distance over consecutive point pairs.
// Routes with fewer than 2 points are degenerate but valid, length 0.
func (p *proximityIndex) RouteLength(route Route) float64 {
	length := 0.0
	for i := 0; i < len(route.Points)-1; i++ {
		length += p.geoUtils.PointToPoint(route.Points[i], route.Points[i+1])
	}
	return length
}

// NearestSegment scans every segment and keeps the minimum distance. Exact
// ties go to the lowest segment index. Routes are short enough (tens to low
// hundreds of points) that a linear scan is fine.
func (p *proximityIndex) NearestSegment(route Route, point geo.Point) (int, float64, error) {
	if len(route.Points) < 2 {
		return -1, 0, ErrRouteTooShort
	}

	nearestIndex := -1
	minDistance := 0.0

	for i := 0; i < len(route.Points)-1; i++ {
		distance := p.geoUtils.PointToSegment(point, route.Points[i], route.Points[i+1])
		if nearestIndex < 0 || distance < minDistance {
			nearestIndex = i
			minDistance = distance
		}
	}

	return nearestIndex, minDistance, nil
}

// Locate computes the proximity of a single feature to the route
func (p *proximityIndex) Locate(route Route, f feature.PointFeature) (ProximityResult, error) {
	segmentIndex, distance, err := p.NearestSegment(route, f.Location)
	if err != nil {
		return ProximityResult{}, err
	}

	return ProximityResult{
		FeatureID:      f.ID,
		SegmentIndex:   segmentIndex,
		DistanceMeters: distance,
	}, nil
}

// PointsWithinBuffer returns proximity results for the features within
// bufferMeters of the route. The boundary is inclusive and input order is
// preserved. A route with no segments matches nothing.
func (p *proximityIndex) PointsWithinBuffer(route Route, features []feature.PointFeature, bufferMeters float64) []ProximityResult {
	var results []ProximityResult

	for _, f := range features {
		result, err := p.Locate(route, f)
		if err != nil {
			return nil
		}
		if result.DistanceMeters <= bufferMeters {
			results = append(results, result)
		}
	}

	return results
}
