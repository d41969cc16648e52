package scoring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/walksafe/server/internal/lib/crime"
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/lighting"
	"github.com/walksafe/server/internal/lib/route"
)

// Component weights. Crime incidence is the dominant safety signal.
const (
	lightingWeight = 0.35
	crimeWeight    = 0.55
	policeWeight   = 0.10
)

// Neutral defaults substituted when a sub-analysis fails internally
const (
	degradedLightingComponent = 50
	degradedCrimeComponent    = 100
)

// policeSampleCount is how many evenly spaced route points are checked
// against the station set
const policeSampleCount = 5

// Rating is the qualitative band for an overall score
type Rating string

const (
	RatingUnknown   Rating = "Unknown"
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingModerate  Rating = "Moderate"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "VeryPoor"
)

// Details echoes the raw metrics that produced a score
type Details struct {
	Lighting            lighting.Report `json:"lighting"`
	Crime               crime.Report    `json:"crime"`
	RouteLengthMeters   float64         `json:"route_length_meters"`
	IncidentsPerKm      float64         `json:"incidents_per_km"`
	AvgPoliceDistanceKm float64         `json:"avg_police_distance_km,omitempty"`
}

// Score is the composite safety assessment for a single route. It is a
// value, recomputed per call, never mutated in place.
type Score struct {
	Overall                  int      `json:"overall"`
	Rating                   Rating   `json:"rating"`
	LightingComponent        int      `json:"lighting_component"`
	CrimeRiskComponent       int      `json:"crime_risk_component"`
	PoliceProximityComponent int      `json:"police_proximity_component"`
	Details                  Details  `json:"details"`
	Warnings                 []string `json:"warnings,omitempty"`
}

// Scorer combines lighting, crime, and police proximity into a 0-100 score
type Scorer struct {
	Lighting *lighting.Analyzer
	Crime    *crime.Aggregator

	index    route.ProximityIndex
	geoUtils geo.GeoUtils
}

// NewScorer creates a scorer with default analyzers
func NewScorer() *Scorer {
	return &Scorer{
		Lighting: lighting.NewAnalyzer(),
		Crime:    crime.NewAggregator(),
		index:    route.NewProximityIndex(),
		geoUtils: geo.NewGeoUtils(),
	}
}

// Score evaluates a route against the supplied feature sets. The lighting
// and crime analyses are independent and run concurrently; a failure in
// either degrades that component to its neutral default instead of failing
// the whole score. policeStations may be nil.
func (s *Scorer) Score(r route.Route, lamps, incidents, policeStations []feature.PointFeature, now time.Time) Score {
	var (
		lightingReport lighting.Report
		crimeReport    crime.Report
		warnings       []string
		warningsMu     sync.Mutex
		wg             sync.WaitGroup
	)

	lightingFailed := false
	crimeFailed := false

	addWarning := func(msg string) {
		warningsMu.Lock()
		warnings = append(warnings, msg)
		warningsMu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				lightingFailed = true
				addWarning(fmt.Sprintf("lighting analysis failed: %v", r))
			}
		}()
		lightingReport = s.Lighting.Analyze(r, lamps)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crimeFailed = true
				addWarning(fmt.Sprintf("crime analysis failed: %v", r))
			}
		}()
		crimeReport = s.Crime.Analyze(r, incidents, now)
	}()
	wg.Wait()

	routeLength := s.index.RouteLength(r)

	lightingComponent := degradedLightingComponent
	if !lightingFailed {
		lightingComponent = lightingScore(lightingReport)
	}

	crimeComponent := degradedCrimeComponent
	incidentsPerKm := 0.0
	if !crimeFailed {
		if routeLength > 0 {
			incidentsPerKm = float64(crimeReport.Count) / (routeLength / 1000)
		}
		crimeComponent = crimeRiskScore(incidentsPerKm)
	}

	policeComponent := 0
	avgPoliceKm := 0.0
	if len(policeStations) > 0 && len(r.Points) > 0 {
		avgPoliceKm = s.averageStationDistanceKm(r, policeStations)
		policeComponent = policeBonus(avgPoliceKm)
	}

	overall := float64(lightingComponent)*lightingWeight +
		float64(crimeComponent)*crimeWeight +
		float64(policeComponent)*10*policeWeight
	overallInt := int(math.Round(math.Max(0, math.Min(100, overall))))

	return Score{
		Overall:                  overallInt,
		Rating:                   ratingFor(overallInt),
		LightingComponent:        lightingComponent,
		CrimeRiskComponent:       crimeComponent,
		PoliceProximityComponent: policeComponent,
		Details: Details{
			Lighting:            lightingReport,
			Crime:               crimeReport,
			RouteLengthMeters:   routeLength,
			IncidentsPerKm:      incidentsPerKm,
			AvgPoliceDistanceKm: avgPoliceKm,
		},
		Warnings: warnings,
	}
}

// lightingScore maps lamp density against the well-lit constant, capped at
// 100. When the route has no measurable length the density is meaningless,
// so coverage stands in directly.
func lightingScore(report lighting.Report) int {
	if report.RouteLengthMeters <= 0 {
		return int(math.Round(report.CoveragePercent))
	}
	ratio := report.DensityPer100m / lighting.WellLitDensity * 100
	return int(math.Round(math.Min(100, ratio)))
}

// crimeRiskScore maps incidents per km to a 0-100 risk component (100 = no
// risk) through a piecewise-linear decreasing curve. Early incidents cost
// more score than incidents in an already-dangerous area; perceived risk
// saturates. The curve is continuous across its breakpoints.
func crimeRiskScore(incidentsPerKm float64) int {
	var score float64
	switch {
	case incidentsPerKm <= 0:
		score = 100
	case incidentsPerKm <= 0.5:
		score = 100 - incidentsPerKm*40
	case incidentsPerKm <= 2:
		score = 80 - (incidentsPerKm-0.5)*20
	case incidentsPerKm <= 5:
		score = 50 - (incidentsPerKm-2)*10
	default:
		score = math.Max(0, 20-(incidentsPerKm-5)*2)
	}
	return int(math.Round(score))
}

// averageStationDistanceKm samples evenly spaced points along the route and
// averages the distance from each to its nearest station.
func (s *Scorer) averageStationDistanceKm(r route.Route, stations []feature.PointFeature) float64 {
	samples := policeSampleCount
	if len(r.Points) < 2 {
		samples = 1
	}

	total := 0.0
	for i := 0; i < samples; i++ {
		fraction := 0.0
		if samples > 1 {
			fraction = float64(i) / float64(samples-1)
		}
		samplePoint := route.PointAtFraction(r, fraction)

		nearest := math.Inf(1)
		for _, station := range stations {
			if d := s.geoUtils.PointToPoint(samplePoint, station.Location); d < nearest {
				nearest = d
			}
		}
		total += nearest
	}

	return total / float64(samples) / 1000
}

// policeBonus maps average station distance to a 0-10 bonus
func policeBonus(avgKm float64) int {
	switch {
	case avgKm < 1:
		return 10
	case avgKm < 3:
		return 7
	case avgKm < 5:
		return 4
	default:
		return int(math.Round(math.Max(0, math.Min(2, 10-avgKm))))
	}
}

// ratingFor maps an overall score to its qualitative band
func ratingFor(overall int) Rating {
	switch {
	case overall >= 80:
		return RatingExcellent
	case overall >= 60:
		return RatingGood
	case overall >= 40:
		return RatingModerate
	case overall >= 20:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}
