package models

import (
	"errors"
	"time"
)

// CallRecord represents a single preprocessed 112 helpline call. Records are
// immutable once created; Date and Hour are always derived from Timestamp by
// NewCallRecord, never set independently.
type CallRecord struct {
	ID           string    `json:"call_id"`
	Timestamp    time.Time `json:"timestamp"` // timezone-naive canonical form
	Date         string    `json:"date"`      // ISO calendar date, derived
	Hour         int       `json:"hour"`      // 0-23, derived
	Category     string    `json:"category"`
	Jurisdiction string    `json:"jurisdiction"`
	Lat          *float64  `json:"lat,omitempty"`
	Lon          *float64  `json:"lon,omitempty"`
}

// NewCallRecord builds a call record with Date and Hour derived from ts.
func NewCallRecord(id string, ts time.Time, category, jurisdiction string) CallRecord {
	return CallRecord{
		ID:           id,
		Timestamp:    ts,
		Date:         Day(ts),
		Hour:         ts.Hour(),
		Category:     category,
		Jurisdiction: jurisdiction,
	}
}

// Validate checks that all call fields are valid and that the derived
// Date/Hour columns agree with Timestamp.
func (c *CallRecord) Validate() error {
	if c.ID == "" {
		return errors.New("call ID must not be empty")
	}
	if c.Timestamp.IsZero() {
		return errors.New("call timestamp must not be zero")
	}
	if c.Date != Day(c.Timestamp) {
		return errors.New("call date must be derived from timestamp")
	}
	if c.Hour != c.Timestamp.Hour() {
		return errors.New("call hour must be derived from timestamp")
	}
	if c.Category == "" {
		return errors.New("call category must not be empty")
	}
	if c.Jurisdiction == "" {
		return errors.New("call jurisdiction must not be empty")
	}
	if c.Lat != nil && (*c.Lat < -90 || *c.Lat > 90) {
		return errors.New("latitude must be between -90 and 90")
	}
	if c.Lon != nil && (*c.Lon < -180 || *c.Lon > 180) {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}
