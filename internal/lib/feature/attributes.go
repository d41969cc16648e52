package feature

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// categoryKeys is the fallback chain for resolving an incident's type from
// its raw attributes. The upstream crime exports are inconsistent about
// naming, so each known variant is checked in order.
var categoryKeys = []string{"category", "crime_type", "type", "bcsrcat", "offence_type"}

// timeKeys is the fallback chain for resolving a time-of-day attribute
var timeKeys = []string{"time", "incsttm", "time_of_day"}

// dateKeys is the fallback chain for resolving an incident date
var dateKeys = []string{"date", "timestamp", "datetime", "month"}

// dateLayouts covers the formats seen across the crime exports
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"Jan 2006",
	"2006-01",
}

// Category resolves the incident type from a feature's attributes,
// returning UnknownCategory when no variant is present.
func Category(f PointFeature) string {
	for _, key := range categoryKeys {
		if v, ok := f.Attributes[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return UnknownCategory
}

// ClassifyHour maps an hour of day to its TimeCategory. Intervals are
// half-open; Night wraps midnight.
func ClassifyHour(hour int) TimeCategory {
	switch {
	case hour < 0 || hour > 23:
		return TimeUnknown
	case hour >= 6 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 18:
		return TimeAfternoon
	case hour >= 18 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

var (
	clockRegexp   = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)?$`)
	meridiemRegexp = regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`)
)

// ClassifyTimeText parses a free-form time-of-day string ("14:30", "2:30pm",
// "10pm", "night") into a TimeCategory. Unparseable input yields TimeUnknown.
func ClassifyTimeText(text string) TimeCategory {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return TimeUnknown
	}

	if m := clockRegexp.FindStringSubmatch(normalized); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			return TimeUnknown
		}
		hour = applyMeridiem(hour, m[3])
		return ClassifyHour(hour)
	}

	if m := meridiemRegexp.FindStringSubmatch(normalized); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 12 {
			return TimeUnknown
		}
		return ClassifyHour(applyMeridiem(hour, m[2]))
	}

	switch {
	case strings.Contains(normalized, "morning"):
		return TimeMorning
	case strings.Contains(normalized, "afternoon"):
		return TimeAfternoon
	case strings.Contains(normalized, "evening"):
		return TimeEvening
	case strings.Contains(normalized, "night"), strings.Contains(normalized, "midnight"):
		return TimeNight
	}

	return TimeUnknown
}

func applyMeridiem(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// ClassifyTime resolves a feature's TimeCategory through the documented
// fallback chain: explicit hour attribute, then textual time-of-day
// attributes, then the hour of a parseable date attribute.
func ClassifyTime(f PointFeature) TimeCategory {
	if v, ok := f.Attributes["hour"]; ok {
		if hour, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return ClassifyHour(hour)
		}
	}

	for _, key := range timeKeys {
		if v, ok := f.Attributes[key]; ok {
			if category := ClassifyTimeText(v); category != TimeUnknown {
				return category
			}
		}
	}

	// An ISO timestamp with a time component carries the hour too
	if date, ok := Date(f); ok && !isMidnight(date) {
		return ClassifyHour(date.Hour())
	}

	return TimeUnknown
}

// Date resolves an incident date from a feature's attributes. The second
// return value reports whether a parseable date was found.
func Date(f PointFeature) (time.Time, bool) {
	for _, key := range dateKeys {
		v, ok := f.Attributes[key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// isMidnight reports whether the time component is exactly 00:00:00, which
// for date-only layouts means no time-of-day information was present.
func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
