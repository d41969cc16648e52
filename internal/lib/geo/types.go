package geo

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// BoundingBox represents a geographic bounding box in degrees
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) float64

	// Calculate minimum distance from a point to a line segment in meters
	PointToSegment(point, segmentStart, segmentEnd Point) float64

	// Interpolate a point along a segment (t=0 returns start, t=1 returns end)
	Interpolate(start, end Point, t float64) Point

	// Bounding box enclosing all points, expanded by marginDegrees on each side
	BoundingBoxFor(points []Point, marginDegrees float64) BoundingBox

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)
}

// NewGeoUtils is implemented in geo.go
