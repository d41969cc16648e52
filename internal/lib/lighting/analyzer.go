package lighting

import (
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
)

const (
	// DefaultLampBuffer is the distance within which a lamp counts as
	// lighting the route
	DefaultLampBuffer = 25.0 // meters

	// WellLitDensity is the lamp density considered well-lit
	WellLitDensity = 1.5 // lamps per 100 meters

	// moderateDensityRatio scales WellLitDensity down for the Medium band
	moderateDensityRatio = 0.6
)

// SafetyLevel is a qualitative lighting rating for a route
type SafetyLevel string

const (
	LevelHigh   SafetyLevel = "high"
	LevelMedium SafetyLevel = "medium"
	LevelLow    SafetyLevel = "low"
)

// Report summarizes streetlight coverage along a route
type Report struct {
	LampCount         int         `json:"lamp_count"`
	DensityPer100m    float64     `json:"density_per_100m"`
	CoveragePercent   float64     `json:"coverage_percent"`
	RouteLengthMeters float64     `json:"route_length_meters"`
	SafetyLevel       SafetyLevel `json:"safety_level"`
}

// Analyzer computes lighting coverage reports. The zero buffer is replaced
// with DefaultLampBuffer.
type Analyzer struct {
	// BufferMeters is the lamp proximity threshold
	BufferMeters float64

	// FullSegmentCoverage switches the per-segment coverage test from the
	// endpoint-proximity check to an exact segment-distance check. The
	// endpoint test undercounts long segments lit only near their middle,
	// but matches the established behavior and is the default.
	FullSegmentCoverage bool

	index    route.ProximityIndex
	geoUtils geo.GeoUtils
}

// NewAnalyzer creates a lighting analyzer with default settings
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		BufferMeters: DefaultLampBuffer,
		index:        route.NewProximityIndex(),
		geoUtils:     geo.NewGeoUtils(),
	}
}

// Analyze computes the lighting report for a route against a set of street
// lamp features. A route with fewer than 2 points yields a zeroed report at
// the low safety level.
func (a *Analyzer) Analyze(r route.Route, lamps []feature.PointFeature) Report {
	buffer := a.BufferMeters
	if buffer <= 0 {
		buffer = DefaultLampBuffer
	}

	if len(r.Points) < 2 {
		return Report{SafetyLevel: LevelLow}
	}

	routeLength := a.index.RouteLength(r)
	lampCount := len(a.index.PointsWithinBuffer(r, lamps, buffer))

	density := 0.0
	if routeLength > 0 {
		density = float64(lampCount) / routeLength * 100
	}

	coveredSegments := 0
	segmentCount := len(r.Points) - 1
	for i := 0; i < segmentCount; i++ {
		if a.segmentCovered(r.Points[i], r.Points[i+1], lamps, buffer) {
			coveredSegments++
		}
	}
	coverage := float64(coveredSegments) / float64(segmentCount) * 100

	return Report{
		LampCount:         lampCount,
		DensityPer100m:    density,
		CoveragePercent:   coverage,
		RouteLengthMeters: routeLength,
		SafetyLevel:       classify(density, coverage),
	}
}

// segmentCovered reports whether any lamp lights the segment. The default
// test checks lamp distance to the segment endpoints only.
func (a *Analyzer) segmentCovered(start, end geo.Point, lamps []feature.PointFeature, buffer float64) bool {
	for _, lamp := range lamps {
		if a.FullSegmentCoverage {
			if a.geoUtils.PointToSegment(lamp.Location, start, end) <= buffer {
				return true
			}
			continue
		}

		if a.geoUtils.PointToPoint(lamp.Location, start) <= buffer ||
			a.geoUtils.PointToPoint(lamp.Location, end) <= buffer {
			return true
		}
	}
	return false
}

func classify(density, coverage float64) SafetyLevel {
	switch {
	case density >= WellLitDensity && coverage >= 80:
		return LevelHigh
	case density >= WellLitDensity*moderateDensityRatio && coverage >= 60:
		return LevelMedium
	default:
		return LevelLow
	}
}
