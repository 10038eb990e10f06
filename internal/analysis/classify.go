package analysis

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dial112/callscope/internal/logger"
	"github.com/dial112/callscope/internal/models"
)

// Default classifier tuning. A festival is significant when its window
// average is at least 30% above baseline AND at least 3 calls.
const (
	DefaultImpactThreshold   = 1.3
	DefaultMinCallsThreshold = 3
	DefaultWindowDays        = 1
)

// ClassifyParams tunes the impact classifier
type ClassifyParams struct {
	Category          string
	ImpactThreshold   float64
	MinCallsThreshold int
	WindowDays        int
}

// DefaultParams returns the tuned default parameters for a category.
func DefaultParams(category string) ClassifyParams {
	return ClassifyParams{
		Category:          category,
		ImpactThreshold:   DefaultImpactThreshold,
		MinCallsThreshold: DefaultMinCallsThreshold,
		WindowDays:        DefaultWindowDays,
	}
}

// Classify assesses each candidate festival against the call data for one
// category and returns all computed assessments sorted by impact ratio
// descending (ties by date ascending) for diagnostics. Callers should treat
// the Significant subset as production results.
//
// Festivals outside the category data's observed date range produce no
// assessment; neither do festivals with no observed days in their window
// (missing days contribute nothing, not zero). Empty candidate sets return
// an empty slice, not an error. ErrEmptyCategory propagates when the
// category itself has zero calls; malformed festival dates are a caller
// error.
func Classify(candidates []models.FestivalRecord, calls []models.CallRecord, p ClassifyParams) ([]models.ImpactAssessment, error) {
	if len(candidates) == 0 {
		return []models.ImpactAssessment{}, nil
	}
	if p.ImpactThreshold <= 0 {
		return nil, fmt.Errorf("impact threshold must be positive, got %v", p.ImpactThreshold)
	}
	if p.WindowDays < 0 {
		return nil, fmt.Errorf("window days must not be negative, got %d", p.WindowDays)
	}

	daily, err := CategoryDailyCounts(calls, p.Category)
	if err != nil {
		return nil, err
	}

	dataStart, dataEnd := observedRange(daily)

	// Restrict candidates to the observed range.
	var inRange []models.FestivalRecord
	for _, f := range candidates {
		if _, err := models.ParseDay(f.Date); err != nil {
			return nil, fmt.Errorf("malformed festival date %q: %w", f.Date, err)
		}
		if f.Date >= dataStart && f.Date <= dataEnd {
			inRange = append(inRange, f)
		}
	}
	if len(inRange) == 0 {
		logger.Debug("No festival candidates within data range %s to %s", dataStart, dataEnd)
		return []models.ImpactAssessment{}, nil
	}

	festivalDates := make([]string, len(inRange))
	for i, f := range inRange {
		festivalDates[i] = f.Date
	}
	baseline := baselineFromDaily(daily, festivalDates, p.WindowDays)
	logger.Debug("Baseline daily calls (non-festival): %.1f across %d candidates", baseline, len(inRange))

	assessments := make([]models.ImpactAssessment, 0, len(inRange))
	for _, f := range inRange {
		sum, n, max := 0, 0, 0
		for delta := -p.WindowDays; delta <= p.WindowDays; delta++ {
			day, err := models.AddDays(f.Date, delta)
			if err != nil {
				continue
			}
			count, ok := daily[day]
			if !ok {
				continue // missing days contribute nothing, not zero
			}
			sum += count
			n++
			if count > max {
				max = count
			}
		}
		if n == 0 {
			continue // no observed days in the window; skip the festival
		}

		avg := float64(sum) / float64(n)
		ratio := 1.0 // neutral when the baseline is zero, never infinite
		maxRatio := 1.0
		if baseline > 0 {
			ratio = avg / baseline
			maxRatio = float64(max) / baseline
		}

		assessments = append(assessments, models.ImpactAssessment{
			ID:             uuid.New().String(),
			FestivalName:   f.Name,
			FestivalDate:   f.Date,
			AvgCallsDuring: avg,
			MaxCallsDuring: max,
			Baseline:       baseline,
			ImpactRatio:    ratio,
			MaxImpactRatio: maxRatio,
			ImpactCategory: models.CategorizeImpact(ratio),
			Included:       ratio >= p.ImpactThreshold && avg >= float64(p.MinCallsThreshold),
		})
	}

	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].ImpactRatio != assessments[j].ImpactRatio {
			return assessments[i].ImpactRatio > assessments[j].ImpactRatio
		}
		return assessments[i].FestivalDate < assessments[j].FestivalDate
	})
	return assessments, nil
}

// Significant filters assessments to those that passed both thresholds.
// Order is preserved. Returns a non-nil slice.
func Significant(assessments []models.ImpactAssessment) []models.ImpactAssessment {
	result := make([]models.ImpactAssessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Included {
			result = append(result, a)
		}
	}
	return result
}

// TopByMaxCount is the alternative selection mode: the n assessments with
// the highest single-day call count, descending (ties by date ascending),
// regardless of significance.
func TopByMaxCount(assessments []models.ImpactAssessment, n int) []models.ImpactAssessment {
	sorted := make([]models.ImpactAssessment, len(assessments))
	copy(sorted, assessments)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MaxCallsDuring != sorted[j].MaxCallsDuring {
			return sorted[i].MaxCallsDuring > sorted[j].MaxCallsDuring
		}
		return sorted[i].FestivalDate < sorted[j].FestivalDate
	})

	if n <= 0 {
		return []models.ImpactAssessment{}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// FestivalWeeks maps each festival name to its display-only week range
// (3 days before to 3 days after the festival date). This grouping is for
// presentation; the classifier's statistics use the tighter window.
func FestivalWeeks(festivals []models.FestivalRecord) map[string][2]string {
	weeks := make(map[string][2]string, len(festivals))
	for _, f := range festivals {
		start, err := models.AddDays(f.Date, -3)
		if err != nil {
			continue
		}
		end, err := models.AddDays(f.Date, 3)
		if err != nil {
			continue
		}
		weeks[f.Name] = [2]string{start, end}
	}
	return weeks
}

// observedRange returns the minimum and maximum dates present in a daily
// count map. The map must be non-empty.
func observedRange(daily map[string]int) (string, string) {
	first := true
	var start, end string
	for date := range daily {
		if first {
			start, end = date, date
			first = false
			continue
		}
		if date < start {
			start = date
		}
		if date > end {
			end = date
		}
	}
	return start, end
}
