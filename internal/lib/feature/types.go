package feature

import (
	"github.com/walksafe/server/internal/lib/geo"
)

// PointFeature represents a geocoded point of interest: a street lamp, a
// historical crime incident, or a police station. Attributes carry the raw
// source properties (OSM tags, CSV columns); the core only reads them through
// the documented fallback chains in this package.
type PointFeature struct {
	ID         string            `json:"id"`
	Location   geo.Point         `json:"location"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// TimeCategory buckets a time of day for incident aggregation.
// Intervals are half-open: an incident at exactly 12:00 is Afternoon.
type TimeCategory string

const (
	TimeMorning   TimeCategory = "Morning"   // 06:00-12:00
	TimeAfternoon TimeCategory = "Afternoon" // 12:00-18:00
	TimeEvening   TimeCategory = "Evening"   // 18:00-22:00
	TimeNight     TimeCategory = "Night"     // 22:00-06:00
	TimeUnknown   TimeCategory = "Unknown"
)

// UnknownCategory is the fallback value for features whose type attribute
// cannot be resolved.
const UnknownCategory = "Unknown"
