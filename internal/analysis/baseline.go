package analysis

import (
	"errors"
	"fmt"

	"github.com/dial112/callscope/internal/models"
)

// ErrEmptyCategory is returned when a baseline is requested for a category
// with zero matching calls. A category with all its days windowed out still
// gets a baseline; a wholly absent category does not.
var ErrEmptyCategory = errors.New("no calls match the requested category")

// CategoryDailyCounts tallies per-day call counts for one category
// (case-insensitive exact match). Returns ErrEmptyCategory when no call
// matches.
func CategoryDailyCounts(calls []models.CallRecord, category string) (map[string]int, error) {
	filtered := filterCategory(calls, category)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCategory, category)
	}

	counts := make(map[string]int)
	for _, c := range filtered {
		counts[c.Date]++
	}
	return counts, nil
}

// festivalAdjacentDays expands festival dates into the set of days within
// windowDays (inclusive, symmetric) of any festival date. Malformed dates
// are skipped; candidates are validated at the classifier boundary.
func festivalAdjacentDays(festivalDates []string, windowDays int) map[string]bool {
	adjacent := make(map[string]bool)
	for _, date := range festivalDates {
		for delta := -windowDays; delta <= windowDays; delta++ {
			shifted, err := models.AddDays(date, delta)
			if err != nil {
				continue
			}
			adjacent[shifted] = true
		}
	}
	return adjacent
}

// Baseline computes the expected daily call count for a category: the mean
// over all days present in the category data that are not festival-adjacent.
// When every observed day is festival-adjacent the baseline degrades
// gracefully to the mean over all days (approximate, but never fails).
// Returns ErrEmptyCategory when the category has zero matching calls.
func Baseline(calls []models.CallRecord, category string, festivalDates []string, windowDays int) (float64, error) {
	daily, err := CategoryDailyCounts(calls, category)
	if err != nil {
		return 0, err
	}
	return baselineFromDaily(daily, festivalDates, windowDays), nil
}

// baselineFromDaily is the core baseline computation over precomputed daily
// counts, shared with the classifier so both see identical numbers.
func baselineFromDaily(daily map[string]int, festivalDates []string, windowDays int) float64 {
	adjacent := festivalAdjacentDays(festivalDates, windowDays)

	sum, n := 0, 0
	for date, count := range daily {
		if adjacent[date] {
			continue
		}
		sum += count
		n++
	}

	if n == 0 {
		// Every day is festival-adjacent: degrade to the all-days mean.
		for _, count := range daily {
			sum += count
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
