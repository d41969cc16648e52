package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

// straightRoute runs north along a meridian; 0.001 degrees of latitude is
// roughly 111 meters.
func straightRoute() Route {
	return Route{
		ID: "test",
		Points: []geo.Point{
			{Latitude: 0.000, Longitude: 0},
			{Latitude: 0.005, Longitude: 0},
			{Latitude: 0.010, Longitude: 0},
		},
	}
}

func lampAt(id string, lat, lng float64) feature.PointFeature {
	return feature.PointFeature{ID: id, Location: geo.Point{Latitude: lat, Longitude: lng}}
}

func TestRouteLength(t *testing.T) {
	index := NewProximityIndex()

	t.Run("straight route", func(t *testing.T) {
		length := index.RouteLength(straightRoute())
		// 0.01 degrees of latitude is ~1112m
		assert.InDelta(t, 1112, length, 5)
	})

	t.Run("single point is degenerate but valid", func(t *testing.T) {
		r := Route{Points: []geo.Point{{Latitude: 1, Longitude: 1}}}
		assert.Equal(t, 0.0, index.RouteLength(r))
	})

	t.Run("empty route", func(t *testing.T) {
		assert.Equal(t, 0.0, index.RouteLength(Route{}))
	})
}

func TestNearestSegment(t *testing.T) {
	index := NewProximityIndex()
	r := straightRoute()

	t.Run("point beside the second segment", func(t *testing.T) {
		segment, distance, err := index.NearestSegment(r, geo.Point{Latitude: 0.0075, Longitude: 0.001})
		require.NoError(t, err)
		assert.Equal(t, 1, segment)
		assert.InDelta(t, 111, distance, 2)
	})

	t.Run("point beside the first segment", func(t *testing.T) {
		segment, _, err := index.NearestSegment(r, geo.Point{Latitude: 0.002, Longitude: 0.001})
		require.NoError(t, err)
		assert.Equal(t, 0, segment)
	})

	t.Run("tie goes to the lowest segment index", func(t *testing.T) {
		// The shared vertex of segments 0 and 1 is equidistant from both
		segment, distance, err := index.NearestSegment(r, geo.Point{Latitude: 0.005, Longitude: 0})
		require.NoError(t, err)
		assert.Equal(t, 0, segment)
		assert.InDelta(t, 0, distance, 0.5)
	})

	t.Run("route without segments", func(t *testing.T) {
		short := Route{Points: []geo.Point{{Latitude: 1, Longitude: 1}}}
		segment, _, err := index.NearestSegment(short, geo.Point{Latitude: 0, Longitude: 0})
		assert.ErrorIs(t, err, ErrRouteTooShort)
		assert.Equal(t, -1, segment)
	})
}

func TestLocate(t *testing.T) {
	index := NewProximityIndex()

	result, err := index.Locate(straightRoute(), lampAt("lamp-1", 0.002, 0.0005))
	require.NoError(t, err)
	assert.Equal(t, "lamp-1", result.FeatureID)
	assert.Equal(t, 0, result.SegmentIndex)
	assert.InDelta(t, 55, result.DistanceMeters, 2)
}

func TestPointsWithinBuffer(t *testing.T) {
	index := NewProximityIndex()
	r := straightRoute()

	near := lampAt("near", 0.002, 0.0001)   // ~11m off the route
	medium := lampAt("medium", 0.007, 0.0005) // ~55m off the route
	far := lampAt("far", 0.002, 0.01)       // ~1.1km off the route
	lamps := []feature.PointFeature{far, near, medium}

	t.Run("filters by distance and preserves input order", func(t *testing.T) {
		results := index.PointsWithinBuffer(r, lamps, 60)
		require.Len(t, results, 2)
		assert.Equal(t, "near", results[0].FeatureID)
		assert.Equal(t, "medium", results[1].FeatureID)
	})

	t.Run("boundary distance is included", func(t *testing.T) {
		located, err := index.Locate(r, medium)
		require.NoError(t, err)

		results := index.PointsWithinBuffer(r, lamps, located.DistanceMeters)
		require.Len(t, results, 2)
		assert.Equal(t, "medium", results[1].FeatureID)
	})

	t.Run("larger buffer never shrinks the result set", func(t *testing.T) {
		previous := 0
		for _, buffer := range []float64{5, 20, 60, 200, 2000} {
			count := len(index.PointsWithinBuffer(r, lamps, buffer))
			assert.GreaterOrEqual(t, count, previous, "buffer %.0f", buffer)
			previous = count
		}
	})

	t.Run("route without segments matches nothing", func(t *testing.T) {
		short := Route{Points: []geo.Point{{Latitude: 0, Longitude: 0}}}
		assert.Empty(t, index.PointsWithinBuffer(short, lamps, 1000))
	})
}
