package cache

import (
	"fmt"
	"time"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

// FeatureKind names a class of cached map features
type FeatureKind string

const (
	KindStreetLamps    FeatureKind = "street_lamps"
	KindPoliceStations FeatureKind = "police_stations"
	KindCrimeIncidents FeatureKind = "crime_incidents"
)

// FeatureStore caches point feature sets keyed by kind and bounding box,
// so repeated scoring requests over the same area skip the upstream fetch.
type FeatureStore struct {
	cache *Cache
}

// NewFeatureStore creates a feature store backed by the given cache
func NewFeatureStore(c *Cache) *FeatureStore {
	return &FeatureStore{cache: c}
}

// Set caches a feature set for the kind and area
func (s *FeatureStore) Set(kind FeatureKind, bbox geo.BoundingBox, features []feature.PointFeature, ttl time.Duration) error {
	return s.cache.Set(featureKey(kind, bbox), features, ttl, string(kind))
}

// Get returns the cached feature set when present and fresh
func (s *FeatureStore) Get(kind FeatureKind, bbox geo.BoundingBox) ([]feature.PointFeature, bool, error) {
	var features []feature.PointFeature
	found, err := s.cache.Get(featureKey(kind, bbox), &features)
	if err != nil || !found {
		return nil, false, err
	}
	return features, true, nil
}

// GetAllowStale returns the cached feature set even past its expiration,
// as long as it is not very stale. Used when a refresh fails and old data
// beats no data.
func (s *FeatureStore) GetAllowStale(kind FeatureKind, bbox geo.BoundingBox) ([]feature.PointFeature, bool, error) {
	key := featureKey(kind, bbox)
	if s.cache.IsVeryStale(key) {
		return nil, false, nil
	}

	var features []feature.PointFeature
	_, found, err := s.cache.GetWithMetadata(key, &features)
	if err != nil || !found {
		return nil, false, err
	}
	return features, true, nil
}

// IsFresh reports whether the cached set for the kind and area is usable
// without a refresh.
func (s *FeatureStore) IsFresh(kind FeatureKind, bbox geo.BoundingBox) bool {
	return !s.cache.IsStale(featureKey(kind, bbox))
}

// Expire invalidates the cached set for the kind and area. The entry stays
// available to GetAllowStale until it turns very stale.
func (s *FeatureStore) Expire(kind FeatureKind, bbox geo.BoundingBox) {
	s.cache.Expire(featureKey(kind, bbox))
}

// featureKey builds a cache key stable across identical bounding boxes
func featureKey(kind FeatureKind, bbox geo.BoundingBox) string {
	return fmt.Sprintf("features:%s:%.6f,%.6f,%.6f,%.6f", kind, bbox.South, bbox.West, bbox.North, bbox.East)
}
