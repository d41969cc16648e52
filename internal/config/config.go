package config

import (
	"time"

	"github.com/walksafe/server/internal/lib/geo"
)

// Config represents the complete server configuration
type Config struct {
	Overpass  OverpassConfig  `yaml:"overpass"`
	Routing   RoutingConfig   `yaml:"routing"`
	CrimeData CrimeDataConfig `yaml:"crime_data"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Areas     []MonitoredArea `yaml:"areas"`
}

// OverpassConfig holds OpenStreetMap feature fetch settings
type OverpassConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// RoutingConfig holds OSRM routing settings
type RoutingConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CrimeDataConfig holds the incident CSV settings
type CrimeDataConfig struct {
	Path            string        `yaml:"path"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ScoringConfig holds analysis tunables. Zero values defer to the
// analyzer defaults.
type ScoringConfig struct {
	LampBufferMeters     float64 `yaml:"lamp_buffer_meters"`
	IncidentBufferMeters float64 `yaml:"incident_buffer_meters"`
	FullSegmentCoverage  bool    `yaml:"full_segment_coverage"`
}

// MonitoredArea is a named bounding box kept warm by the periodic refresh
type MonitoredArea struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	South float64 `yaml:"south"`
	West  float64 `yaml:"west"`
	North float64 `yaml:"north"`
	East  float64 `yaml:"east"`
}

// BBox converts a monitored area to a bounding box
func (a MonitoredArea) BBox() geo.BoundingBox {
	return geo.BoundingBox{South: a.South, West: a.West, North: a.North, East: a.East}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Overpass: OverpassConfig{
			Endpoint:        "https://overpass-api.de/api/interpreter",
			Timeout:         30 * time.Second,
			RefreshInterval: 30 * time.Minute, // Lamps and stations change slowly
		},
		Routing: RoutingConfig{
			BaseURL: "https://router.project-osrm.org",
		},
		CrimeData: CrimeDataConfig{
			Path:            "data/CrimeData.csv",
			RefreshInterval: 24 * time.Hour, // Static extract, reloaded daily
		},
		Areas: []MonitoredArea{
			{
				ID:    "sydney-cbd",
				Name:  "Sydney CBD",
				South: -33.8830,
				West:  151.1950,
				North: -33.8550,
				East:  151.2250,
			},
			{
				ID:    "newtown",
				Name:  "Newtown",
				South: -33.9050,
				West:  151.1650,
				North: -33.8900,
				East:  151.1850,
			},
		},
	}
}
