package icsfeed

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dial112/callscope/internal/models"
)

// excludedKeywords mark administrative observances, awareness days, and
// national holidays that are not festivals. The blocklist is checked before
// the allowlist, so a title matching both is rejected.
var excludedKeywords = []string{
	"independence day", "republic day", "gandhi jayanti",
	"birthday", "death anniversary", "national", "international",
	"world", "day of", "awareness", "week", "month", "memorial",
	"remembrance", "solidarity", "earth day", "environment",
	"health", "safety", "conference", "meeting",
}

// festivalKeywords mark recognizable festival and religious-observance names.
// An event matching neither list is dropped.
var festivalKeywords = []string{
	"diwali", "deepavali", "holi", "dussehra", "dasara", "vijayadashami",
	"ganesh", "ganapati", "navratri", "durga", "kali", "lakshmi",
	"karva", "karwa", "raksha", "rakhi", "janmashtami", "krishna",
	"ram navami", "hanuman", "shivratri", "makar sankranti", "pongal",
	"baisakhi", "vaisakhi", "onam", "vishu", "ugadi", "gudi padwa",
	"akshaya tritiya", "teej", "ahoi ashtami", "dhanteras", "govardhan",
	"bhai dooj", "chhath", "kartikeya", "ganga dussehra", "rath yatra",
	"guru nanak", "guru gobind", "vasant panchami", "magh purnima",
	"maharana pratap", "chhatrapati", "festival", "celebration",
	"eid", "ramadan", "muharram", "christmas", "good friday", "easter",
	"pooja", "puja", "jayanti", "vratam", "vrata", "chaturthi",
	"purnima", "amavasya", "ekadashi", "sankranti", "vivah",
}

// IsLikelyFestival reports whether an event title looks like a festival.
// Blocklist terms win over allowlist terms.
func IsLikelyFestival(title string) bool {
	name := strings.ToLower(strings.TrimSpace(title))
	if name == "" {
		return false
	}

	for _, excluded := range excludedKeywords {
		if strings.Contains(name, excluded) {
			return false
		}
	}
	for _, keyword := range festivalKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// ParseFestivals parses a single ICS payload and extracts festival records
// keyed by ISO calendar date. Events without a summary or parsable start
// date are skipped; events failing the festival-likeness filter are dropped.
// Duplicate dates within the feed are resolved with the same rule used
// across feeds: the longer description wins, ties keep the first seen.
func ParseFestivals(body []byte) (map[string]models.FestivalRecord, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	festivals := make(map[string]models.FestivalRecord)

	for _, ve := range cal.Events() {
		summary := ""
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}
		if summary == "" {
			continue
		}

		start, ok := eventStart(ve)
		if !ok {
			continue
		}

		if !IsLikelyFestival(summary) {
			continue
		}

		description := ""
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			description = strings.TrimSpace(p.Value)
		}

		record := models.FestivalRecord{
			Name:        summary,
			Date:        models.Day(start),
			Description: description,
			Source:      models.SourceICSImport,
		}
		MergeByDate(festivals, map[string]models.FestivalRecord{record.Date: record})
	}

	return festivals, nil
}

// MergeByDate merges src into dst under the canonical one-record-per-date
// invariant: when both maps hold a record for a date, the record with the
// longer description wins; on a tie the record already in dst is kept.
func MergeByDate(dst, src map[string]models.FestivalRecord) {
	for date, record := range src {
		existing, exists := dst[date]
		if !exists {
			dst[date] = record
			continue
		}
		if len(record.Description) > len(existing.Description) {
			dst[date] = record
		}
	}
}

// eventStart extracts the start date of a VEVENT. It prefers the library's
// timezone-aware helper and falls back to parsing the raw DTSTART value for
// all-day (VALUE=DATE) events.
func eventStart(ve *ical.VEvent) (time.Time, bool) {
	if start, err := ve.GetStartAt(); err == nil && !start.IsZero() {
		return start, true
	}

	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil || p.Value == "" {
		return time.Time{}, false
	}
	if t, err := parseICSTime(p.Value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseICSTime parses the basic ICS DATE / DATE-TIME value forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}

	// Floating date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		return time.Parse("20060102T150405", v)
	}

	// Date-only (all-day), e.g. 20250101
	return time.Parse("20060102", v)
}
