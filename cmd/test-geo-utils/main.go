package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/walksafe/server/internal/lib/geo"
)

// Manual verification tool for the geo package. Not part of the server.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	geoUtils := geo.NewGeoUtils()

	switch command {
	case "point-distance":
		handlePointDistance(geoUtils)
	case "segment-distance":
		handleSegmentDistance(geoUtils)
	case "decode-polyline":
		handleDecodePolyline(geoUtils)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handlePointDistance(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("point-distance", flag.ExitOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")
	fs.Parse(os.Args[2:])

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils point-distance --lat1 -33.8731 --lng1 151.2065 --lat2 -33.8830 --lng2 151.2167")
		fmt.Println("  (Distance from Town Hall to Central Station)")
		os.Exit(1)
	}

	distance := geoUtils.PointToPoint(
		geo.Point{Latitude: *lat1, Longitude: *lng1},
		geo.Point{Latitude: *lat2, Longitude: *lng2})

	fmt.Printf("Distance: %.1f meters (%.2f km)\n", distance, distance/1000)
}

func handleSegmentDistance(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("segment-distance", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude of the point")
	lng := fs.Float64("lng", 0, "Longitude of the point")
	slat := fs.Float64("slat", 0, "Latitude of segment start")
	slng := fs.Float64("slng", 0, "Longitude of segment start")
	elat := fs.Float64("elat", 0, "Latitude of segment end")
	elng := fs.Float64("elng", 0, "Longitude of segment end")
	fs.Parse(os.Args[2:])

	distance := geoUtils.PointToSegment(
		geo.Point{Latitude: *lat, Longitude: *lng},
		geo.Point{Latitude: *slat, Longitude: *slng},
		geo.Point{Latitude: *elat, Longitude: *elng})

	fmt.Printf("Distance to segment: %.1f meters\n", distance)
}

func handleDecodePolyline(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	encoded := fs.String("polyline", "", "Encoded polyline string")
	fs.Parse(os.Args[2:])

	if *encoded == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils decode-polyline --polyline '_p~iF~ps|U_ulLnnqC_mqNvxq`@'")
		os.Exit(1)
	}

	points, err := geoUtils.DecodePolyline(*encoded)
	if err != nil {
		fmt.Printf("Failed to decode polyline: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Decoded %d points:\n", len(points))
	for i, p := range points {
		fmt.Printf("  %d: %.5f, %.5f\n", i, p.Latitude, p.Longitude)
	}

	bbox := geoUtils.BoundingBoxFor(points, 0.01)
	fmt.Printf("Bounding box (+0.01 margin): %.5f,%.5f,%.5f,%.5f\n", bbox.South, bbox.West, bbox.North, bbox.East)
}

func printUsage() {
	fmt.Println("Usage: test-geo-utils <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  point-distance    Great-circle distance between two points")
	fmt.Println("  segment-distance  Distance from a point to a segment")
	fmt.Println("  decode-polyline   Decode an encoded polyline and show its bounding box")
	fmt.Println("  help              Show this message")
}
