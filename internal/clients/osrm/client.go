package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
)

// DefaultBaseURL is the public OSRM demo router
const DefaultBaseURL = "https://router.project-osrm.org"

// HTTPClient abstracts http.Client for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches pedestrian routes from an OSRM routing server
type Client struct {
	BaseURL    string
	HTTPClient HTTPClient

	geoUtils geo.GeoUtils
}

// NewClient creates an OSRM client. Pass an empty base URL to use the
// public demo router.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		geoUtils: geo.NewGeoUtils(),
	}
}

// osrmResponse is the subset of the OSRM route response we consume
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry string  `json:"geometry"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// WalkingRoutes requests walking routes between two points, including
// alternatives, and returns the meaningfully distinct candidates. Near
// duplicate alternatives are dropped before IDs are assigned.
func (c *Client) WalkingRoutes(ctx context.Context, start, end geo.Point) ([]route.Route, error) {
	params := url.Values{}
	params.Set("alternatives", "true")
	params.Set("overview", "full")
	params.Set("geometries", "polyline")

	// OSRM coordinate order is lon,lat
	requestURL := fmt.Sprintf("%s/route/v1/foot/%.6f,%.6f;%.6f,%.6f?%s",
		c.BaseURL,
		start.Longitude, start.Latitude,
		end.Longitude, end.Latitude,
		params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("routing API error %d: %s", resp.StatusCode, string(body))
	}

	var response osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Code != "Ok" {
		return nil, fmt.Errorf("routing failed: %s (%s)", response.Code, response.Message)
	}
	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no route found between the given points")
	}

	var candidates []route.Route
	for _, raw := range response.Routes {
		points, err := c.geoUtils.DecodePolyline(raw.Geometry)
		if err != nil {
			return nil, fmt.Errorf("failed to decode route geometry: %w", err)
		}
		candidates = append(candidates, route.Route{Points: points})
	}

	distinct := route.FilterDistinct(candidates)
	for i := range distinct {
		distinct[i].ID = fmt.Sprintf("osrm-%d", i)
	}

	return distinct, nil
}
