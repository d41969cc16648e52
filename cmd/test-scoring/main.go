package main

import (
	"fmt"
	"os"
	"time"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/kmlout"
	"github.com/walksafe/server/internal/lib/route"
	"github.com/walksafe/server/internal/lib/scoring"
)

// Manual verification tool for the scoring pipeline: scores a synthetic
// route and prints the breakdown, or emits it as KML with --kml.
func main() {
	r := route.Route{
		ID: "sample",
		Points: []geo.Point{
			{Latitude: -33.8731, Longitude: 151.2065},
			{Latitude: -33.8770, Longitude: 151.2100},
			{Latitude: -33.8830, Longitude: 151.2167},
		},
	}

	lamps := []feature.PointFeature{
		{ID: "node/1", Location: geo.Point{Latitude: -33.8740, Longitude: 151.2072}},
		{ID: "node/2", Location: geo.Point{Latitude: -33.8760, Longitude: 151.2090}},
		{ID: "node/3", Location: geo.Point{Latitude: -33.8800, Longitude: 151.2130}},
	}
	incidents := []feature.PointFeature{
		{ID: "c1", Location: geo.Point{Latitude: -33.8765, Longitude: 151.2095},
			Attributes: map[string]string{"category": "Robbery", "time": "23:15", "date": "2024-05-20"}},
		{ID: "c2", Location: geo.Point{Latitude: -33.8790, Longitude: 151.2120},
			Attributes: map[string]string{"category": "Theft", "time": "14:00"}},
	}
	stations := []feature.PointFeature{
		{ID: "node/9", Location: geo.Point{Latitude: -33.8747, Longitude: 151.2086},
			Attributes: map[string]string{"amenity": "police", "name": "Sydney City"}},
	}

	score := scoring.NewScorer().Score(r, lamps, incidents, stations, time.Now())

	if len(os.Args) > 1 && os.Args[1] == "--kml" {
		if err := kmlout.Write(os.Stdout, scoring.RankedRoute{Route: r, Score: score}); err != nil {
			fmt.Fprintf(os.Stderr, "KML output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Route %s: %.0f meters\n\n", r.ID, score.Details.RouteLengthMeters)
	fmt.Printf("Overall:          %d/100 (%s)\n", score.Overall, score.Rating)
	fmt.Printf("Lighting:         %d  (%.2f lamps/100m, %.0f%% coverage)\n",
		score.LightingComponent, score.Details.Lighting.DensityPer100m, score.Details.Lighting.CoveragePercent)
	fmt.Printf("Crime risk:       %d  (%d incidents, %.2f/km, most common %s at %s)\n",
		score.CrimeRiskComponent, score.Details.Crime.Count, score.Details.IncidentsPerKm,
		score.Details.Crime.MostCommonType, score.Details.Crime.MostCommonTimeCategory)
	fmt.Printf("Police proximity: %d  (avg %.2f km to nearest station)\n",
		score.PoliceProximityComponent, score.Details.AvgPoliceDistanceKm)

	for _, warning := range score.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}
}
