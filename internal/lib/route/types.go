package route

import (
	"github.com/walksafe/server/internal/lib/geo"

	"github.com/walksafe/server/internal/lib/feature"
)

// Route is an ordered walking path from start to end. The core never
// mutates a route; segment i is the implicit pair (Points[i], Points[i+1]).
type Route struct {
	ID     string      `json:"id"`
	Points []geo.Point `json:"points"`
}

// ProximityResult records how close a point feature sits to a route and
// which segment it is nearest to. Results are recomputed per analysis call.
type ProximityResult struct {
	FeatureID      string  `json:"feature_id"`
	SegmentIndex   int     `json:"segment_index"`
	DistanceMeters float64 `json:"distance_meters"`
}

// ProximityIndex answers nearest-segment and within-buffer queries for a
// route against sets of point features.
type ProximityIndex interface {
	// Total route length in meters; 0 for routes with fewer than 2 points
	RouteLength(route Route) float64

	// Nearest segment index and distance for a point; ErrRouteTooShort if
	// the route has no segments
	NearestSegment(route Route, point geo.Point) (segmentIndex int, distanceMeters float64, err error)

	// Proximity of a single feature to the route
	Locate(route Route, f feature.PointFeature) (ProximityResult, error)

	// Features within bufferMeters of the route, preserving input order
	PointsWithinBuffer(route Route, features []feature.PointFeature, bufferMeters float64) []ProximityResult
}
