package kmlout

import (
	"fmt"
	"image/color"
	"io"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/walksafe/server/internal/lib/crime"
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/scoring"
)

// ratingColors maps score ratings to route line colors
var ratingColors = map[scoring.Rating]color.RGBA{
	scoring.RatingExcellent: {R: 0x2e, G: 0xcc, B: 0x40, A: 0xff},
	scoring.RatingGood:      {R: 0x9a, G: 0xcd, B: 0x32, A: 0xff},
	scoring.RatingModerate:  {R: 0xff, G: 0xb3, B: 0x00, A: 0xff},
	scoring.RatingPoor:      {R: 0xff, G: 0x6d, B: 0x00, A: 0xff},
	scoring.RatingVeryPoor:  {R: 0xd0, G: 0x02, B: 0x1b, A: 0xff},
}

const routeStyleID = "route-line"

// Write renders a scored route as an indented KML document
func Write(w io.Writer, entry scoring.RankedRoute) error {
	return Render(entry).WriteIndent(w, "", "  ")
}

// Render builds a KML document for a scored route: the route line colored
// by its rating, plus a placemark for each nearby incident.
func Render(entry scoring.RankedRoute) *kml.CompoundElement {
	lineColor, ok := ratingColors[entry.Score.Rating]
	if !ok {
		lineColor = ratingColors[scoring.RatingModerate]
	}

	children := []kml.Element{
		kml.Name(fmt.Sprintf("Route %s", entry.Route.ID)),
		kml.SharedStyle(routeStyleID,
			kml.LineStyle(
				kml.Color(lineColor),
				kml.Width(4),
			),
		),
		routePlacemark(entry),
	}

	for _, incident := range entry.Score.Details.Crime.Incidents {
		children = append(children, kml.Placemark(
			kml.Name(incident.Type),
			kml.Description(incidentDescription(incident)),
			kml.Point(
				kml.Coordinates(kml.Coordinate{
					Lon: incident.Location.Longitude,
					Lat: incident.Location.Latitude,
				}),
			),
		))
	}

	return kml.KML(kml.Document(children...))
}

func routePlacemark(entry scoring.RankedRoute) kml.Element {
	coordinates := make([]kml.Coordinate, 0, len(entry.Route.Points))
	for _, p := range entry.Route.Points {
		coordinates = append(coordinates, kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude})
	}

	description := fmt.Sprintf(
		"Safety score %d/100 (%s). Lighting %d, crime risk %d, police proximity %d. %d incidents within range.",
		entry.Score.Overall, entry.Score.Rating,
		entry.Score.LightingComponent, entry.Score.CrimeRiskComponent, entry.Score.PoliceProximityComponent,
		entry.Score.Details.Crime.Count)

	return kml.Placemark(
		kml.Name(fmt.Sprintf("Route %s (%s)", entry.Route.ID, entry.Score.Rating)),
		kml.Description(description),
		kml.StyleURL("#"+routeStyleID),
		kml.LineString(
			kml.Tessellate(true),
			kml.Coordinates(coordinates...),
		),
	)
}

func incidentDescription(incident crime.IncidentDetail) string {
	description := fmt.Sprintf("%s, %.0fm from the route", incident.Type, incident.DistanceMeters)
	if incident.TimeCategory != feature.TimeUnknown {
		description += fmt.Sprintf(", %s", incident.TimeCategory)
	}
	if incident.IsRecent {
		description += " (recent)"
	}
	return description
}
