package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/walksafe/server/internal/cache"
	"github.com/walksafe/server/internal/config"
	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
	"github.com/walksafe/server/internal/lib/scoring"
)

// bboxMarginDegrees pads the feature fetch region around a route so lamps
// and incidents just outside the route's extent still fall inside their
// analysis buffers.
const bboxMarginDegrees = 0.01

// FeatureFetcher supplies OSM point features for a bounding box
type FeatureFetcher interface {
	StreetLamps(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error)
	PoliceStations(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error)
}

// RoutePlanner supplies candidate walking routes between two points
type RoutePlanner interface {
	WalkingRoutes(ctx context.Context, start, end geo.Point) ([]route.Route, error)
}

// IncidentSource supplies the full crime incident set
type IncidentSource interface {
	Load() ([]feature.PointFeature, int, error)
}

// SafetyService orchestrates feature fetching, caching, and route scoring
type SafetyService struct {
	overpass  FeatureFetcher
	routing   RoutePlanner
	incidents IncidentSource
	features  *cache.FeatureStore
	config    *config.Config
	scorer    *scoring.Scorer
	ranker    *scoring.Ranker
	geoUtils  geo.GeoUtils
}

// NewSafetyService creates a safety service
func NewSafetyService(overpass FeatureFetcher, routing RoutePlanner, incidents IncidentSource, features *cache.FeatureStore, cfg *config.Config) *SafetyService {
	scorer := scoring.NewScorer()
	if cfg.Scoring.LampBufferMeters > 0 {
		scorer.Lighting.BufferMeters = cfg.Scoring.LampBufferMeters
	}
	scorer.Lighting.FullSegmentCoverage = cfg.Scoring.FullSegmentCoverage
	if cfg.Scoring.IncidentBufferMeters > 0 {
		scorer.Crime.BufferMeters = cfg.Scoring.IncidentBufferMeters
	}

	return &SafetyService{
		overpass:  overpass,
		routing:   routing,
		incidents: incidents,
		features:  features,
		config:    cfg,
		scorer:    scorer,
		ranker:    scoring.NewRankerWithScorer(scorer),
		geoUtils:  geo.NewGeoUtils(),
	}
}

// ScoredRouteResponse is the result of scoring a single route
type ScoredRouteResponse struct {
	Route       route.Route   `json:"route"`
	Score       scoring.Score `json:"score"`
	LastUpdated time.Time     `json:"last_updated"`
}

// RankedRoutesResponse is the result of ranking candidate routes
type RankedRoutesResponse struct {
	Routes      []scoring.RankedRoute `json:"routes"`
	LastUpdated time.Time             `json:"last_updated"`
}

// ScoreRoute evaluates a caller-supplied route
func (s *SafetyService) ScoreRoute(ctx context.Context, r route.Route, now time.Time) (*ScoredRouteResponse, error) {
	if len(r.Points) < 2 {
		return nil, fmt.Errorf("route must have at least 2 points, got %d", len(r.Points))
	}

	bbox := s.geoUtils.BoundingBoxFor(r.Points, bboxMarginDegrees)
	lamps, incidents, stations, err := s.areaFeatures(ctx, bbox)
	if err != nil {
		return nil, err
	}

	return &ScoredRouteResponse{
		Route:       r,
		Score:       s.scorer.Score(r, lamps, incidents, stations, now),
		LastUpdated: now,
	}, nil
}

// RankRoutes plans walking routes between start and end and returns them
// ordered safest-first.
func (s *SafetyService) RankRoutes(ctx context.Context, start, end geo.Point, now time.Time) (*RankedRoutesResponse, error) {
	routes, err := s.routing.WalkingRoutes(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to plan routes: %w", err)
	}

	var allPoints []geo.Point
	for _, r := range routes {
		allPoints = append(allPoints, r.Points...)
	}

	bbox := s.geoUtils.BoundingBoxFor(allPoints, bboxMarginDegrees)
	lamps, incidents, stations, err := s.areaFeatures(ctx, bbox)
	if err != nil {
		return nil, err
	}

	return &RankedRoutesResponse{
		Routes:      s.ranker.Rank(routes, lamps, incidents, stations, now),
		LastUpdated: now,
	}, nil
}

// Areas lists the configured monitored areas
func (s *SafetyService) Areas() []config.MonitoredArea {
	return s.config.Areas
}

// WarmArea fetches every feature kind for the area into the cache. Used by
// the periodic refresh so interactive requests hit warm entries.
func (s *SafetyService) WarmArea(ctx context.Context, area config.MonitoredArea) error {
	_, _, _, err := s.areaFeatures(ctx, area.BBox())
	return err
}

// areaFeatures collects the three feature sets for a bounding box
func (s *SafetyService) areaFeatures(ctx context.Context, bbox geo.BoundingBox) (lamps, incidents, stations []feature.PointFeature, err error) {
	lamps, err = s.cachedFeatures(ctx, cache.KindStreetLamps, bbox, s.overpass.StreetLamps)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch street lamps: %w", err)
	}

	stations, err = s.cachedFeatures(ctx, cache.KindPoliceStations, bbox, s.overpass.PoliceStations)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch police stations: %w", err)
	}

	incidents, err = s.cachedFeatures(ctx, cache.KindCrimeIncidents, bbox, s.loadIncidentsWithin)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load crime incidents: %w", err)
	}

	return lamps, incidents, stations, nil
}

// cachedFeatures is the cache-first fetch: fresh cache wins, then a live
// fetch, then stale-but-not-very-stale data when the fetch fails.
func (s *SafetyService) cachedFeatures(ctx context.Context, kind cache.FeatureKind, bbox geo.BoundingBox, fetch func(context.Context, geo.BoundingBox) ([]feature.PointFeature, error)) ([]feature.PointFeature, error) {
	cached, found, err := s.features.Get(kind, bbox)
	if err != nil {
		log.Printf("Cache error for %s: %v", kind, err)
	}
	if found {
		return cached, nil
	}

	fetched, err := fetch(ctx, bbox)
	if err != nil {
		if stale, ok, staleErr := s.features.GetAllowStale(kind, bbox); staleErr == nil && ok {
			log.Printf("Fetch of %s failed, serving stale cache: %v", kind, err)
			return stale, nil
		}
		return nil, err
	}

	if err := s.features.Set(kind, bbox, fetched, s.refreshInterval(kind)); err != nil {
		log.Printf("Failed to cache %s: %v", kind, err)
	}

	return fetched, nil
}

// loadIncidentsWithin loads the incident extract and keeps the records
// inside the bounding box.
func (s *SafetyService) loadIncidentsWithin(ctx context.Context, bbox geo.BoundingBox) ([]feature.PointFeature, error) {
	all, skipped, err := s.incidents.Load()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("Crime data load skipped %d records without usable coordinates", skipped)
	}

	var within []feature.PointFeature
	for _, incident := range all {
		if containsPoint(bbox, incident.Location) {
			within = append(within, incident)
		}
	}

	return within, nil
}

func (s *SafetyService) refreshInterval(kind cache.FeatureKind) time.Duration {
	if kind == cache.KindCrimeIncidents {
		return s.config.CrimeData.RefreshInterval
	}
	return s.config.Overpass.RefreshInterval
}

func containsPoint(bbox geo.BoundingBox, p geo.Point) bool {
	return p.Latitude >= bbox.South && p.Latitude <= bbox.North &&
		p.Longitude >= bbox.West && p.Longitude <= bbox.East
}
