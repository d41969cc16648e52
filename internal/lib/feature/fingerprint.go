package feature

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// Fingerprinting deduplicates incidents that appear more than once in a
// feature set, which happens when overlapping bounding-box fetches are
// merged upstream. Two entries describing the same physical incident hash
// to the same fingerprint even when their opaque IDs differ.

var spaceRegexp = regexp.MustCompile(`\s+`)
var trailingPunctRegexp = regexp.MustCompile(`[.!?:;,]+$`)

// Fingerprint produces a content hash for an incident feature: category,
// date, time, normalized description/location, and its distance from the
// route (rounded to the meter) all contribute.
func Fingerprint(f PointFeature, distanceMeters float64) string {
	description := f.Attributes["description"]
	if description == "" {
		description = f.Attributes["location"]
	}

	content := fmt.Sprintf("%s|%s|%s|%s|%d",
		Category(f),
		f.Attributes["date"],
		f.Attributes["time"],
		NormalizeText(description),
		int(distanceMeters),
	)

	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// NormalizeText cleans free-form text for consistent hashing: lowercase,
// collapsed whitespace, trailing punctuation stripped.
func NormalizeText(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = spaceRegexp.ReplaceAllString(normalized, " ")
	normalized = trailingPunctRegexp.ReplaceAllString(normalized, "")
	return normalized
}
