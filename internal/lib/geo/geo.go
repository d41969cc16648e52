package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"
)

// Earth's radius in meters (spherical model)
const earthRadius = 6371000

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using the
// Haversine formula. Coordinates are assumed valid; callers normalize input
// at the ingestion boundary (see NewPoint).
func (g *geoUtils) PointToPoint(p1, p2 Point) float64 {
	if p1.Latitude == p2.Latitude && p1.Longitude == p2.Longitude {
		return 0
	}

	lat1 := p1.Latitude * math.Pi / 180
	lon1 := p1.Longitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	lon2 := p2.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// PointToSegment calculates the shortest distance from a point to a line
// segment. The projection is computed in radian space treated as a flat
// plane, which holds up well at street-segment scale (tens to hundreds of
// meters) and is not valid for segments spanning large arcs.
func (g *geoUtils) PointToSegment(point, segmentStart, segmentEnd Point) float64 {
	distSE := g.PointToPoint(segmentStart, segmentEnd)

	// Degenerate segment: fall back to point-to-point
	if distSE < 1 {
		return g.PointToPoint(point, segmentStart)
	}

	pLat := point.Latitude * math.Pi / 180
	pLon := point.Longitude * math.Pi / 180
	sLat := segmentStart.Latitude * math.Pi / 180
	sLon := segmentStart.Longitude * math.Pi / 180
	eLat := segmentEnd.Latitude * math.Pi / 180
	eLon := segmentEnd.Longitude * math.Pi / 180

	// Scalar projection of the point onto the chord start->end
	segLenSq := (eLon-sLon)*(eLon-sLon) + (eLat-sLat)*(eLat-sLat)
	r := ((eLon-sLon)*(pLon-sLon) + (eLat-sLat)*(pLat-sLat)) / segLenSq

	if r <= 0 {
		return g.PointToPoint(point, segmentStart)
	}
	if r >= 1 {
		return g.PointToPoint(point, segmentEnd)
	}

	projected := Point{
		Latitude:  (sLat + r*(eLat-sLat)) * 180 / math.Pi,
		Longitude: (sLon + r*(eLon-sLon)) * 180 / math.Pi,
	}
	return g.PointToPoint(point, projected)
}

// Interpolate calculates a point along the segment between start and end.
// Linear interpolation is sufficient at the sub-kilometer segment lengths
// walking routes produce.
func (g *geoUtils) Interpolate(start, end Point, t float64) Point {
	return Point{
		Latitude:  start.Latitude + t*(end.Latitude-start.Latitude),
		Longitude: start.Longitude + t*(end.Longitude-start.Longitude),
	}
}

// BoundingBoxFor returns a bounding box that encompasses all points, expanded
// by marginDegrees on each side. Used to derive feature fetch regions.
func (g *geoUtils) BoundingBoxFor(points []Point, marginDegrees float64) BoundingBox {
	minLat, maxLat := 90.0, -90.0
	minLon, maxLon := 180.0, -180.0

	for _, p := range points {
		minLat = math.Min(minLat, p.Latitude)
		maxLat = math.Max(maxLat, p.Latitude)
		minLon = math.Min(minLon, p.Longitude)
		maxLon = math.Max(maxLon, p.Longitude)
	}

	return BoundingBox{
		South: minLat - marginDegrees,
		West:  minLon - marginDegrees,
		North: maxLat + marginDegrees,
		East:  maxLon + marginDegrees,
	}
}

// DecodePolyline decodes a Google polyline string to a point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !isValidCoordinate(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(point) {
		return Point{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}
	return point, nil
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
