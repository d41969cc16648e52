package kmlout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walksafe/server/internal/lib/crime"
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
	"github.com/walksafe/server/internal/lib/scoring"
)

func scoredRoute() scoring.RankedRoute {
	return scoring.RankedRoute{
		Route: route.Route{
			ID: "osrm-0",
			Points: []geo.Point{
				{Latitude: -33.8731, Longitude: 151.2065},
				{Latitude: -33.8755, Longitude: 151.2040},
			},
		},
		Score: scoring.Score{
			Overall:            72,
			Rating:             scoring.RatingGood,
			LightingComponent:  80,
			CrimeRiskComponent: 70,
			Details: scoring.Details{
				Crime: crime.Report{
					Count: 1,
					Incidents: []crime.IncidentDetail{
						{
							Type:           "Robbery",
							Location:       geo.Point{Latitude: -33.874, Longitude: 151.205},
							TimeCategory:   feature.TimeNight,
							DistanceMeters: 42,
							IsRecent:       true,
						},
					},
				},
			},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, scoredRoute()))

	out := buf.String()
	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "Route osrm-0 (Good)")
	assert.Contains(t, out, "Safety score 72/100")
	assert.Contains(t, out, "#route-line")

	// Incident placemark with its description
	assert.Contains(t, out, "<name>Robbery</name>")
	assert.Contains(t, out, "Robbery, 42m from the route, Night (recent)")
}

func TestRenderUnknownRatingFallsBack(t *testing.T) {
	entry := scoredRoute()
	entry.Score.Rating = scoring.RatingUnknown

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entry))
	assert.Contains(t, buf.String(), "<LineStyle>")
}

func TestIncidentDescriptionUnknownTime(t *testing.T) {
	description := incidentDescription(crime.IncidentDetail{
		Type:           "Theft",
		TimeCategory:   feature.TimeUnknown,
		DistanceMeters: 10.4,
	})

	assert.Equal(t, "Theft, 10m from the route", description)
}
