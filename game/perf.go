package game

import (
	"sort"
	"time"
)

// sortedPhases returns phase names sorted by average duration (descending).
// Ties are broken by name so the panel does not flicker.
func sortedPhases(avg map[string]time.Duration) []string {
	names := make([]string, 0, len(avg))
	for name := range avg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if avg[names[i]] != avg[names[j]] {
			return avg[names[i]] > avg[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// totalDuration returns the sum of all phase averages.
func totalDuration(avg map[string]time.Duration) time.Duration {
	var total time.Duration
	for _, d := range avg {
		total += d
	}
	return total
}
