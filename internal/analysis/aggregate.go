// Package analysis implements the festival-impact analytics engine: time
// series aggregation over call records, the non-festival baseline, and the
// per-festival impact classifier.
//
// For each candidate festival the classifier compares the mean daily call
// count in a window around the festival date against a baseline computed
// from non-festival-adjacent days:
//
//	impact_ratio = avg_calls_during / baseline
//
// A festival is significant when the ratio clears the impact threshold AND
// the window average clears a minimum call count (ratio alone is unreliable
// for sparse categories). Every function here is a deterministic, pure
// function of its inputs; analyses for independent (dataset, category)
// pairs can run concurrently without synchronization.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dial112/callscope/internal/models"
)

// DayCount is a daily call tally
type DayCount struct {
	Date  string `json:"date"` // ISO calendar date
	Count int    `json:"count"`
}

// HourCount is an hourly call tally
type HourCount struct {
	Hour  int `json:"hour"` // 0-23
	Count int `json:"count"`
}

// CategoryShare is a per-category tally with its share of the total
type CategoryShare struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// KPIs are the headline figures for a call dataset
type KPIs struct {
	TotalCalls int     `json:"total_calls"`
	AvgPerDay  float64 `json:"avg_per_day"` // total / distinct days observed
	PeakHour   string  `json:"peak_hour"`   // "HH:00 - HH+1:00", "N/A" when empty
}

// ByDay tallies calls per calendar day, ascending by date. Only days present
// in the data appear; gaps are not filled.
func ByDay(calls []models.CallRecord) []DayCount {
	counts := make(map[string]int)
	for _, c := range calls {
		counts[c.Date]++
	}

	result := make([]DayCount, 0, len(counts))
	for date, n := range counts {
		result = append(result, DayCount{Date: date, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// ByHour tallies calls per hour of day. Unlike ByDay, all 24 hours are
// always present, zero-filled: hours are a closed fixed domain, dates
// are not.
func ByHour(calls []models.CallRecord) []HourCount {
	result := make([]HourCount, 24)
	for h := range result {
		result[h].Hour = h
	}
	for _, c := range calls {
		if c.Hour >= 0 && c.Hour < 24 {
			result[c.Hour].Count++
		}
	}
	return result
}

// ByCategory tallies calls per category with each category's share of the
// total, sorted by count descending (ties by name ascending).
func ByCategory(calls []models.CallRecord) []CategoryShare {
	counts := make(map[string]int)
	for _, c := range calls {
		counts[c.Category]++
	}

	total := len(calls)
	result := make([]CategoryShare, 0, len(counts))
	for category, n := range counts {
		share := CategoryShare{Category: category, Count: n}
		if total > 0 {
			share.Percent = float64(n) / float64(total) * 100
		}
		result = append(result, share)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// ComputeKPIs derives the headline figures. Average per day divides by the
// distinct calendar days actually present, not the calendar span. Peak hour
// is the mode of the hour column; ties break toward the smallest hour.
func ComputeKPIs(calls []models.CallRecord) KPIs {
	if len(calls) == 0 {
		return KPIs{PeakHour: "N/A"}
	}

	days := make(map[string]bool)
	var hourCounts [24]int
	for _, c := range calls {
		days[c.Date] = true
		if c.Hour >= 0 && c.Hour < 24 {
			hourCounts[c.Hour]++
		}
	}

	peakHour := 0
	for h := 1; h < 24; h++ {
		if hourCounts[h] > hourCounts[peakHour] {
			peakHour = h
		}
	}

	return KPIs{
		TotalCalls: len(calls),
		AvgPerDay:  float64(len(calls)) / float64(len(days)),
		PeakHour:   fmt.Sprintf("%02d:00 - %02d:00", peakHour, peakHour+1),
	}
}

// Insights generates short text findings from a daily series: the peak and
// trough days. Fewer than two distinct days yields a single
// insufficient-data message.
func Insights(days []DayCount) []string {
	if len(days) < 2 {
		return []string{"Not enough data for insights."}
	}

	peak, trough := days[0], days[0]
	for _, d := range days[1:] {
		if d.Count > peak.Count {
			peak = d
		}
		if d.Count < trough.Count {
			trough = d
		}
	}

	return []string{
		fmt.Sprintf("Highest traffic on %s with %d calls.", peak.Date, peak.Count),
		fmt.Sprintf("Lowest traffic on %s with %d calls.", trough.Date, trough.Count),
	}
}

// timeSlot is a named span of hours [from, to) used for hourly insights.
type timeSlot struct {
	label    string
	from, to int
}

var timeSlots = []timeSlot{
	{"Morning (6-12)", 6, 12},
	{"Afternoon (12-18)", 12, 18},
	{"Evening (18-24)", 18, 24},
	{"Night (0-6)", 0, 6},
}

// HourlyInsights generates text findings from an hourly distribution: the
// peak hour and the busiest named time slot.
func HourlyInsights(hours []HourCount) []string {
	total := 0
	for _, h := range hours {
		total += h.Count
	}
	if total == 0 {
		return []string{"No hourly data available."}
	}

	peak := hours[0]
	for _, h := range hours[1:] {
		if h.Count > peak.Count {
			peak = h
		}
	}

	busiest := timeSlots[0]
	busiestSum := -1
	for _, slot := range timeSlots {
		sum := 0
		for _, h := range hours {
			if h.Hour >= slot.from && h.Hour < slot.to {
				sum += h.Count
			}
		}
		if sum > busiestSum {
			busiest = slot
			busiestSum = sum
		}
	}

	return []string{
		fmt.Sprintf("Peak activity is around %02d:00, with %d calls.", peak.Hour, peak.Count),
		fmt.Sprintf("The busiest time slot is %s.", busiest.label),
	}
}

// filterCategory returns the calls whose category matches (case-insensitive
// exact match).
func filterCategory(calls []models.CallRecord, category string) []models.CallRecord {
	var result []models.CallRecord
	for _, c := range calls {
		if strings.EqualFold(c.Category, category) {
			result = append(result, c)
		}
	}
	return result
}
