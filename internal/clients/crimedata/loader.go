package crimedata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
)

// Column name candidates, checked in order. The NSW crime extract uses
// bcsrgclat/bcsrgclng; other exports use plain latitude/longitude.
var (
	latitudeColumns  = []string{"bcsrgclat", "latitude", "lat", "y"}
	longitudeColumns = []string{"bcsrgclng", "longitude", "lng", "lon", "x"}
	idColumns        = []string{"id", "incident_id", "objectid"}
)

// Loader reads crime incident records from a CSV extract
type Loader struct {
	Path string
}

// NewLoader creates a loader for the given CSV file
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load parses the CSV into point features. Every column becomes an
// attribute keyed by its lowercased header, so downstream classification
// sees the raw record. Rows without usable coordinates are skipped; the
// skip count is returned alongside the features.
func (l *Loader) Load() ([]feature.PointFeature, int, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open crime data: %w", err)
	}
	defer f.Close()

	return l.parse(f)
}

func (l *Loader) parse(r io.Reader) ([]feature.PointFeature, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	latIndex := columnIndex(header, latitudeColumns)
	lngIndex := columnIndex(header, longitudeColumns)
	if latIndex < 0 || lngIndex < 0 {
		return nil, 0, fmt.Errorf("no coordinate columns found in header: %v", header)
	}
	idIndex := columnIndex(header, idColumns)

	var features []feature.PointFeature
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, not a malformed file
			skipped++
			continue
		}

		location, ok := parseCoordinates(record, latIndex, lngIndex)
		if !ok {
			skipped++
			continue
		}

		attributes := make(map[string]string, len(header))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			value = strings.TrimSpace(value)
			if value != "" {
				attributes[header[i]] = value
			}
		}

		id := ""
		if idIndex >= 0 && idIndex < len(record) {
			id = strings.TrimSpace(record[idIndex])
		}
		if id == "" {
			id = uuid.NewString()
		}

		features = append(features, feature.PointFeature{
			ID:         id,
			Location:   location,
			Attributes: attributes,
		})
	}

	return features, skipped, nil
}

// columnIndex returns the index of the first candidate present in the
// header, or -1.
func columnIndex(header []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

func parseCoordinates(record []string, latIndex, lngIndex int) (geo.Point, bool) {
	if latIndex >= len(record) || lngIndex >= len(record) {
		return geo.Point{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIndex]), 64)
	if err != nil {
		return geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(record[lngIndex]), 64)
	if err != nil {
		return geo.Point{}, false
	}

	point, err := geo.NewPoint(lat, lng)
	if err != nil {
		return geo.Point{}, false
	}
	return point, true
}
