package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walksafe/server/internal/lib/geo"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name       string
		attributes map[string]string
		expected   string
	}{
		{"category key", map[string]string{"category": "Robbery"}, "Robbery"},
		{"crime_type fallback", map[string]string{"crime_type": "Assault"}, "Assault"},
		{"bcsrcat fallback", map[string]string{"bcsrcat": "Theft"}, "Theft"},
		{"first match wins", map[string]string{"category": "Robbery", "crime_type": "Assault"}, "Robbery"},
		{"empty value skipped", map[string]string{"category": "  ", "crime_type": "Assault"}, "Assault"},
		{"no match", map[string]string{"foo": "bar"}, "Unknown"},
		{"nil attributes", nil, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := PointFeature{Attributes: tt.attributes}
			assert.Equal(t, tt.expected, Category(f))
		})
	}
}

func TestClassifyHour(t *testing.T) {
	tests := []struct {
		hour     int
		expected TimeCategory
	}{
		{6, TimeMorning},
		{11, TimeMorning},
		{12, TimeAfternoon}, // boundary belongs to the later category
		{17, TimeAfternoon},
		{18, TimeEvening},
		{21, TimeEvening},
		{22, TimeNight},
		{23, TimeNight},
		{0, TimeNight}, // Night wraps midnight
		{5, TimeNight},
		{-1, TimeUnknown},
		{24, TimeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestClassifyTimeText(t *testing.T) {
	tests := []struct {
		text     string
		expected TimeCategory
	}{
		{"14:30", TimeAfternoon},
		{"2:30pm", TimeAfternoon},
		{"10pm", TimeNight},
		{"10 pm", TimeNight},
		{"7am", TimeMorning},
		{"12am", TimeNight},
		{"12pm", TimeAfternoon},
		{"Night", TimeNight},
		{"late evening", TimeEvening},
		{"MORNING", TimeMorning},
		{"", TimeUnknown},
		{"not a time", TimeUnknown},
		{"25:00", TimeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyTimeText(tt.text), "text %q", tt.text)
	}
}

func TestClassifyTime(t *testing.T) {
	t.Run("explicit hour wins", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"hour": "22", "time": "9:00"}}
		assert.Equal(t, TimeNight, ClassifyTime(f))
	})

	t.Run("textual time attribute", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"incsttm": "19:45"}}
		assert.Equal(t, TimeEvening, ClassifyTime(f))
	})

	t.Run("timestamp hour", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"date": "2024-03-05 23:15:00"}}
		assert.Equal(t, TimeNight, ClassifyTime(f))
	})

	t.Run("date without time component stays unknown", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"date": "2024-03-05"}}
		assert.Equal(t, TimeUnknown, ClassifyTime(f))
	})

	t.Run("no time information", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"category": "Theft"}}
		assert.Equal(t, TimeUnknown, ClassifyTime(f))
	})
}

func TestDate(t *testing.T) {
	t.Run("iso date", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"date": "2024-03-05"}}
		parsed, ok := Date(f)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("month only", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"month": "2024-02"}}
		parsed, ok := Date(f)
		require.True(t, ok)
		assert.Equal(t, 2024, parsed.Year())
		assert.Equal(t, time.February, parsed.Month())
	})

	t.Run("unparseable", func(t *testing.T) {
		f := PointFeature{Attributes: map[string]string{"date": "sometime last week"}}
		_, ok := Date(f)
		assert.False(t, ok)
	})
}

func TestFingerprint(t *testing.T) {
	base := PointFeature{
		ID:       "a",
		Location: geo.Point{Latitude: -33.87, Longitude: 151.21},
		Attributes: map[string]string{
			"category":    "Robbery",
			"date":        "2024-03-05",
			"time":        "22:10",
			"description": "Near  the station.",
		},
	}

	t.Run("identical content matches despite differing IDs", func(t *testing.T) {
		duplicate := base
		duplicate.ID = "b"
		assert.Equal(t, Fingerprint(base, 42.4), Fingerprint(duplicate, 42.4))
	})

	t.Run("distance is rounded to the meter", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base, 42.1), Fingerprint(base, 42.9))
		assert.NotEqual(t, Fingerprint(base, 42.0), Fingerprint(base, 43.0))
	})

	t.Run("category changes the fingerprint", func(t *testing.T) {
		other := base
		other.Attributes = map[string]string{
			"category": "Assault",
			"date":     "2024-03-05",
			"time":     "22:10",
		}
		assert.NotEqual(t, Fingerprint(base, 10), Fingerprint(other, 10))
	})
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "near the station", NormalizeText("  Near  THE station. "))
	assert.Equal(t, "", NormalizeText(""))
}
