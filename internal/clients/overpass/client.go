package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	overpassapi "github.com/serjvanilla/go-overpass"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

// DefaultEndpoint is the public Overpass API interpreter
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// queryTimeoutSeconds is the server-side timeout embedded in each query
const queryTimeoutSeconds = 25

// Client fetches OpenStreetMap point features through the Overpass API
type Client struct {
	api overpassapi.Client
}

// NewClient creates an Overpass client against the given interpreter
// endpoint. Pass an empty endpoint to use the public default.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := &http.Client{
		Timeout: timeout,
	}
	return &Client{
		api: overpassapi.NewWithSettings(endpoint, 2, httpClient),
	}
}

// StreetLamps returns all street lamp nodes inside the bounding box
func (c *Client) StreetLamps(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	return c.fetchNodes(ctx, `node["highway"="street_lamp"]`, bbox)
}

// PoliceStations returns all police amenity nodes inside the bounding box
func (c *Client) PoliceStations(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	return c.fetchNodes(ctx, `node["amenity"="police"]`, bbox)
}

// fetchNodes runs a node selector against the bounding box and converts the
// resulting nodes to point features. Cancellation is enforced by the HTTP
// client timeout; ctx is checked before issuing the request.
func (c *Client) fetchNodes(ctx context.Context, selector string, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			%s(%s);
		);
		out body;
	`, queryTimeoutSeconds, selector, formatBBox(bbox))

	result, err := c.api.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	return convertNodes(result), nil
}

// formatBBox renders the box in Overpass order: south, west, north, east
func formatBBox(bbox geo.BoundingBox) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.South, bbox.West, bbox.North, bbox.East)
}

// convertNodes maps Overpass result nodes to point features, sorted by node
// ID so repeated fetches of the same area produce identical slices.
func convertNodes(result overpassapi.Result) []feature.PointFeature {
	ids := make([]int64, 0, len(result.Nodes))
	for id := range result.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	features := make([]feature.PointFeature, 0, len(ids))
	for _, id := range ids {
		node := result.Nodes[id]
		if node == nil {
			continue
		}

		attributes := make(map[string]string, len(node.Tags))
		for k, v := range node.Tags {
			attributes[k] = v
		}

		features = append(features, feature.PointFeature{
			ID:         fmt.Sprintf("node/%d", id),
			Location:   geo.Point{Latitude: node.Lat, Longitude: node.Lon},
			Attributes: attributes,
		})
	}

	return features
}
