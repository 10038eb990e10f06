// Package models defines the core domain entities for callscope: emergency
// helpline call records, recognized festival records, and the per-festival
// impact assessments produced by the analysis engine. All models include
// built-in validation to ensure data integrity throughout the application.
//
// Calendar dates are passed around as ISO strings ("2006-01-02"). The festival
// database is keyed by date, so at most one festival record exists per
// calendar day.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Festival record sources.
const (
	SourceICSImport = "ics_import" // parsed from a live ICS feed
	SourceFallback  = "fallback"   // synthesized approximate date
)

// FestivalRecord represents a single recognized festival on a calendar day.
// Records are created during calendar ingestion and never mutated in place;
// a refresh replaces the whole set.
type FestivalRecord struct {
	Name        string `json:"name"`
	Date        string `json:"date"` // ISO calendar date, whole-day semantics
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Validate checks that all festival fields are valid.
func (f *FestivalRecord) Validate() error {
	if f.Name == "" {
		return errors.New("festival name must not be empty")
	}
	if _, err := ParseDay(f.Date); err != nil {
		return fmt.Errorf("festival date must be an ISO calendar date: %w", err)
	}
	if f.Source != SourceICSImport && f.Source != SourceFallback {
		return fmt.Errorf("festival source must be %q or %q", SourceICSImport, SourceFallback)
	}
	return nil
}

// DayLayout is the canonical ISO calendar-date layout used as the key form
// throughout the festival database and the analysis engine.
const DayLayout = "2006-01-02"

// Day formats a timestamp as its ISO calendar date.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses an ISO calendar date string.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DayLayout, day)
}

// AddDays shifts an ISO calendar date by n days. The input must be a valid
// ISO date; callers validate dates at the boundary.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return Day(t.AddDate(0, 0, n)), nil
}
