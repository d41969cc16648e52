package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

func TestSetAndGet(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("key", map[string]int{"answer": 42}, time.Minute, "test"))

	var value map[string]int
	found, err := c.Get("key", &value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, value["answer"])
}

func TestGetMissingKey(t *testing.T) {
	c := New()

	var value string
	found, err := c.Get("missing", &value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStaleEntryNotServed(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("key", "value", -time.Second, "test"))

	assert.True(t, c.IsStale("key"))

	var value string
	found, err := c.Get("key", &value)
	require.NoError(t, err)
	assert.False(t, found)

	// Stale is still reachable through the metadata path
	entry, exists, err := c.GetWithMetadata("key", &value)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "value", value)
	assert.True(t, time.Now().After(entry.ExpiresAt))
}

func TestVeryStale(t *testing.T) {
	c := New()

	require.NoError(t, c.Set("fresh", "value", time.Minute, "test"))
	assert.False(t, c.IsVeryStale("fresh"))

	// Expired but within 2x the refresh interval
	c.mutex.Lock()
	c.entries["aging"] = &Entry{
		Key:             "aging",
		Data:            []byte(`"value"`),
		CreatedAt:       time.Now().Add(-90 * time.Second),
		ExpiresAt:       time.Now().Add(-30 * time.Second),
		RefreshInterval: time.Minute,
	}
	c.mutex.Unlock()

	assert.True(t, c.IsStale("aging"))
	assert.False(t, c.IsVeryStale("aging"))

	assert.True(t, c.IsVeryStale("missing"))
}

func TestCleanupStale(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("stale", "value", -time.Second, "test"))
	require.NoError(t, c.Set("fresh", "value", time.Minute, "test"))

	removed := c.CleanupStale()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Stats().TotalEntries)
	assert.False(t, c.IsStale("fresh"))
}

func TestStats(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("stale", "value", -time.Second, "test"))
	require.NoError(t, c.Set("fresh", "value", time.Minute, "test"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.FreshEntries)
	assert.Equal(t, 1, stats.StaleEntries)
}

func testBBox() geo.BoundingBox {
	return geo.BoundingBox{South: -33.88, West: 151.2, North: -33.86, East: 151.22}
}

func TestFeatureStoreRoundTrip(t *testing.T) {
	store := NewFeatureStore(New())
	features := []feature.PointFeature{
		{ID: "node/1", Location: geo.Point{Latitude: -33.87, Longitude: 151.21},
			Attributes: map[string]string{"highway": "street_lamp"}},
	}

	require.NoError(t, store.Set(KindStreetLamps, testBBox(), features, time.Minute))

	cached, found, err := store.Get(KindStreetLamps, testBBox())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, cached, 1)
	assert.Equal(t, "node/1", cached[0].ID)
	assert.Equal(t, "street_lamp", cached[0].Attributes["highway"])

	assert.True(t, store.IsFresh(KindStreetLamps, testBBox()))
}

func TestFeatureStoreKeysByKindAndArea(t *testing.T) {
	store := NewFeatureStore(New())
	require.NoError(t, store.Set(KindStreetLamps, testBBox(), nil, time.Minute))

	// Same area, different kind
	_, found, err := store.Get(KindPoliceStations, testBBox())
	require.NoError(t, err)
	assert.False(t, found)

	// Same kind, different area
	other := geo.BoundingBox{South: -34, West: 151, North: -33.9, East: 151.1}
	_, found, err = store.Get(KindStreetLamps, other)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFeatureStoreAllowStale(t *testing.T) {
	c := New()
	store := NewFeatureStore(c)

	require.NoError(t, store.Set(KindCrimeIncidents, testBBox(), []feature.PointFeature{{ID: "1"}}, -time.Second))

	// Expired entries are invisible to the fresh path
	_, found, err := store.Get(KindCrimeIncidents, testBBox())
	require.NoError(t, err)
	assert.False(t, found)

	// A negative TTL is very stale immediately, so the fallback refuses too
	_, found, err = store.GetAllowStale(KindCrimeIncidents, testBBox())
	require.NoError(t, err)
	assert.False(t, found)

	// Expired but within 2x the refresh interval: the fallback serves it
	key := featureKey(KindCrimeIncidents, testBBox())
	c.mutex.Lock()
	c.entries[key] = &Entry{
		Key:             key,
		Data:            []byte(`[{"id":"1"}]`),
		CreatedAt:       time.Now().Add(-90 * time.Second),
		ExpiresAt:       time.Now().Add(-30 * time.Second),
		RefreshInterval: time.Minute,
	}
	c.mutex.Unlock()

	stale, found, err := store.GetAllowStale(KindCrimeIncidents, testBBox())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stale, 1)
	assert.Equal(t, "1", stale[0].ID)
}
