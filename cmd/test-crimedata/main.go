package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/walksafe/server/internal/clients/crimedata"
	"github.com/walksafe/server/internal/lib/feature"
)

// Manual verification tool for the crime CSV loader. Not part of the server.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: test-crimedata <path-to-csv>")
		os.Exit(1)
	}

	features, skipped, err := crimedata.NewLoader(os.Args[1]).Load()
	if err != nil {
		fmt.Printf("Load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d records (%d skipped)\n\n", len(features), skipped)

	categories := make(map[string]int)
	times := make(map[feature.TimeCategory]int)
	for _, f := range features {
		categories[feature.Category(f)]++
		times[feature.ClassifyTime(f)]++
	}

	fmt.Println("Top categories:")
	for _, entry := range topEntries(categories, 10) {
		fmt.Printf("  %6d  %s\n", entry.count, entry.key)
	}

	fmt.Println("\nTime of day:")
	for _, category := range []feature.TimeCategory{feature.TimeMorning, feature.TimeAfternoon, feature.TimeEvening, feature.TimeNight, feature.TimeUnknown} {
		fmt.Printf("  %6d  %s\n", times[category], category)
	}
}

type countedKey struct {
	key   string
	count int
}

func topEntries(histogram map[string]int, limit int) []countedKey {
	entries := make([]countedKey, 0, len(histogram))
	for key, count := range histogram {
		entries = append(entries, countedKey{key, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
