package crime

import (
	"sort"
	"time"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/route"
)

const (
	// DefaultIncidentBuffer is the distance within which an incident is
	// considered to affect the route
	DefaultIncidentBuffer = 100.0 // meters

	// RecencyWindow marks incidents as recent
	RecencyWindow = 30 * 24 * time.Hour
)

// IncidentDetail describes one incident near the route, carrying the raw
// attributes through for presentation layers.
type IncidentDetail struct {
	Type           string               `json:"type"`
	Location       geo.Point            `json:"location"`
	Date           *time.Time           `json:"date,omitempty"`
	TimeCategory   feature.TimeCategory `json:"time_category"`
	DistanceMeters float64              `json:"distance_meters"`
	SegmentIndex   int                  `json:"segment_index"`
	IsRecent       bool                 `json:"is_recent"`
	Attributes     map[string]string    `json:"attributes,omitempty"`
}

// Report aggregates crime incidents near a route
type Report struct {
	Count                  int                          `json:"count"`
	TypeHistogram          map[string]int               `json:"type_histogram"`
	TimeCategoryHistogram  map[feature.TimeCategory]int `json:"time_category_histogram"`
	RecentCount            int                          `json:"recent_count"`
	MostCommonType         string                       `json:"most_common_type"`
	MostCommonTimeCategory feature.TimeCategory         `json:"most_common_time_category"`
	HotspotSegmentIndex    int                          `json:"hotspot_segment_index"`
	HotspotCount           int                          `json:"hotspot_count"`
	Incidents              []IncidentDetail             `json:"incidents"`
}

// Aggregator computes crime reports for routes. The zero buffer is replaced
// with DefaultIncidentBuffer.
type Aggregator struct {
	BufferMeters float64

	index route.ProximityIndex
}

// NewAggregator creates a crime aggregator with default settings
func NewAggregator() *Aggregator {
	return &Aggregator{
		BufferMeters: DefaultIncidentBuffer,
		index:        route.NewProximityIndex(),
	}
}

// Analyze aggregates the incidents within the buffer distance of the route.
// Duplicate entries (same content fingerprint) are counted once; recency is
// evaluated against the caller-supplied now so results stay deterministic.
func (a *Aggregator) Analyze(r route.Route, incidents []feature.PointFeature, now time.Time) Report {
	report := emptyReport()

	buffer := a.BufferMeters
	if buffer <= 0 {
		buffer = DefaultIncidentBuffer
	}

	if len(r.Points) < 2 {
		return report
	}

	// Track histogram keys in first-seen order so ties in the max search
	// resolve deterministically.
	var typeOrder []string
	var timeOrder []feature.TimeCategory

	segmentCounts := make(map[int]int)
	seen := make(map[string]bool)

	for _, incident := range incidents {
		located, err := a.index.Locate(r, incident)
		if err != nil {
			continue
		}

		// Upstream feature sets can contain the same incident twice from
		// overlapping fetches; the fingerprint collapses them.
		fingerprint := feature.Fingerprint(incident, located.DistanceMeters)
		if seen[fingerprint] {
			continue
		}
		seen[fingerprint] = true

		if located.DistanceMeters > buffer {
			continue
		}

		report.Count++

		incidentType := feature.Category(incident)
		if report.TypeHistogram[incidentType] == 0 {
			typeOrder = append(typeOrder, incidentType)
		}
		report.TypeHistogram[incidentType]++

		timeCategory := feature.ClassifyTime(incident)
		if report.TimeCategoryHistogram[timeCategory] == 0 {
			timeOrder = append(timeOrder, timeCategory)
		}
		report.TimeCategoryHistogram[timeCategory]++

		detail := IncidentDetail{
			Type:           incidentType,
			Location:       incident.Location,
			TimeCategory:   timeCategory,
			DistanceMeters: located.DistanceMeters,
			SegmentIndex:   located.SegmentIndex,
			Attributes:     incident.Attributes,
		}

		if date, ok := feature.Date(incident); ok {
			detail.Date = &date
			if now.Sub(date) <= RecencyWindow {
				detail.IsRecent = true
				report.RecentCount++
			}
		}

		segmentCounts[located.SegmentIndex]++
		// Only a strictly greater count moves the hotspot, so the
		// first segment to reach the max keeps it.
		if segmentCounts[located.SegmentIndex] > report.HotspotCount {
			report.HotspotCount = segmentCounts[located.SegmentIndex]
			report.HotspotSegmentIndex = located.SegmentIndex
		}

		report.Incidents = append(report.Incidents, detail)
	}

	report.MostCommonType = mostCommonType(report.TypeHistogram, typeOrder)
	report.MostCommonTimeCategory = mostCommonTime(report.TimeCategoryHistogram, timeOrder)

	// Closest incidents first; ties ordered by type name
	sort.SliceStable(report.Incidents, func(i, j int) bool {
		if report.Incidents[i].DistanceMeters != report.Incidents[j].DistanceMeters {
			return report.Incidents[i].DistanceMeters < report.Incidents[j].DistanceMeters
		}
		return report.Incidents[i].Type < report.Incidents[j].Type
	})

	return report
}

func emptyReport() Report {
	return Report{
		TypeHistogram:          make(map[string]int),
		TimeCategoryHistogram:  make(map[feature.TimeCategory]int),
		MostCommonType:         feature.UnknownCategory,
		MostCommonTimeCategory: feature.TimeUnknown,
		HotspotSegmentIndex:    -1,
	}
}

// mostCommonType returns the histogram key with the highest count, ties
// resolved by first-seen order.
func mostCommonType(histogram map[string]int, order []string) string {
	best := feature.UnknownCategory
	bestCount := 0
	for _, key := range order {
		if histogram[key] > bestCount {
			best = key
			bestCount = histogram[key]
		}
	}
	return best
}

// mostCommonTime works like mostCommonType but never elects Unknown
func mostCommonTime(histogram map[feature.TimeCategory]int, order []feature.TimeCategory) feature.TimeCategory {
	best := feature.TimeUnknown
	bestCount := 0
	for _, key := range order {
		if key == feature.TimeUnknown {
			continue
		}
		if histogram[key] > bestCount {
			best = key
			bestCount = histogram[key]
		}
	}
	return best
}
