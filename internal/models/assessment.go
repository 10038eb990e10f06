package models

import (
	"errors"
	"fmt"
)

// Impact categories assigned from the average-window impact ratio.
const (
	ImpactHigh     = "high"     // ratio >= 2.0
	ImpactModerate = "moderate" // ratio >= 1.5
	ImpactLow      = "low"
)

// CategorizeImpact maps an impact ratio to its category label.
func CategorizeImpact(ratio float64) string {
	switch {
	case ratio >= 2.0:
		return ImpactHigh
	case ratio >= 1.5:
		return ImpactModerate
	default:
		return ImpactLow
	}
}

// ImpactAssessment is the per-festival result of an impact analysis run.
// Assessments are ephemeral: produced fresh per query, never persisted.
type ImpactAssessment struct {
	ID             string  `json:"id"`
	FestivalName   string  `json:"festival_name"`
	FestivalDate   string  `json:"festival_date"` // ISO calendar date
	AvgCallsDuring float64 `json:"avg_calls_during"`
	MaxCallsDuring int     `json:"max_calls_during"`
	Baseline       float64 `json:"baseline_calls"`
	ImpactRatio    float64 `json:"impact_ratio"`     // avg during / baseline
	MaxImpactRatio float64 `json:"max_impact_ratio"` // max during / baseline
	ImpactCategory string  `json:"impact_category"`
	Included       bool    `json:"included"` // passed the significance thresholds
}

// Validate checks that all assessment fields are valid.
func (a *ImpactAssessment) Validate() error {
	if a.ID == "" {
		return errors.New("assessment ID must not be empty")
	}
	if a.FestivalName == "" {
		return errors.New("festival name must not be empty")
	}
	if _, err := ParseDay(a.FestivalDate); err != nil {
		return fmt.Errorf("festival date must be an ISO calendar date: %w", err)
	}
	if a.AvgCallsDuring < 0 {
		return errors.New("average calls during must not be negative")
	}
	if a.MaxCallsDuring < 0 {
		return errors.New("max calls during must not be negative")
	}
	if float64(a.MaxCallsDuring) < a.AvgCallsDuring {
		return errors.New("max calls during must be >= average calls during")
	}
	if a.Baseline < 0 {
		return errors.New("baseline must not be negative")
	}
	if a.ImpactRatio < 0 {
		return errors.New("impact ratio must not be negative")
	}
	if a.ImpactCategory != ImpactHigh && a.ImpactCategory != ImpactModerate && a.ImpactCategory != ImpactLow {
		return errors.New("impact category must be high, moderate, or low")
	}
	return nil
}
