package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walksafe/server/internal/cache"
	"github.com/walksafe/server/internal/config"
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
	"github.com/walksafe/server/internal/services"
)

type stubFetcher struct{}

func (stubFetcher) StreetLamps(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	return nil, nil
}

func (stubFetcher) PoliceStations(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	return nil, nil
}

type stubPlanner struct{}

func (stubPlanner) WalkingRoutes(ctx context.Context, start, end geo.Point) ([]route.Route, error) {
	return []route.Route{{ID: "osrm-0", Points: []geo.Point{start, end}}}, nil
}

type stubIncidents struct{}

func (stubIncidents) Load() ([]feature.PointFeature, int, error) {
	return nil, 0, nil
}

func testHandlers() *handlers {
	service := services.NewSafetyService(stubFetcher{}, stubPlanner{}, stubIncidents{},
		cache.NewFeatureStore(cache.New()), config.DefaultConfig())
	return newHandlers(service)
}

func TestScoreRouteHandler(t *testing.T) {
	body := `{"route":{"id":"r1","points":[{"lat":-33.8731,"lng":151.2065},{"lat":-33.8830,"lng":151.2167}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety/score", strings.NewReader(body))
	rec := httptest.NewRecorder()

	testHandlers().scoreRoute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Route route.Route `json:"route"`
		Score struct {
			Overall int    `json:"overall"`
			Rating  string `json:"rating"`
		} `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "r1", resp.Route.ID)
	assert.Equal(t, 55, resp.Score.Overall)
	assert.Equal(t, "Moderate", resp.Score.Rating)
}

func TestScoreRouteHandlerKML(t *testing.T) {
	body := `{"route":{"points":[{"lat":-33.8731,"lng":151.2065},{"lat":-33.8830,"lng":151.2167}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety/score?format=kml", strings.NewReader(body))
	rec := httptest.NewRecorder()

	testHandlers().scoreRoute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<LineString>")
}

func TestScoreRouteHandlerRejectsBadCoordinates(t *testing.T) {
	body := `{"route":{"points":[{"lat":91,"lng":0},{"lat":0,"lng":0}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety/score", strings.NewReader(body))
	rec := httptest.NewRecorder()

	testHandlers().scoreRoute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "point 0")
}

func TestScoreRouteHandlerRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/safety/score", nil)
	rec := httptest.NewRecorder()

	testHandlers().scoreRoute(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRankRoutesHandler(t *testing.T) {
	body := `{"start":{"lat":-33.8731,"lng":151.2065},"end":{"lat":-33.8830,"lng":151.2167}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety/rank", strings.NewReader(body))
	rec := httptest.NewRecorder()

	testHandlers().rankRoutes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Routes []json.RawMessage `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Routes, 1)
}

func TestListAreasHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/areas", nil)
	rec := httptest.NewRecorder()

	testHandlers().listAreas(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Areas []config.MonitoredArea `json:"areas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Areas)
	assert.Equal(t, "sydney-cbd", resp.Areas[0].ID)
}
