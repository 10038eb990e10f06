package icsfeed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dial112/callscope/internal/models"
)

// GenerateICS renders a festival map back to ICS text for reference export.
// Events are emitted in date order so the output is deterministic.
func GenerateICS(festivals map[string]models.FestivalRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//callscope//Festival Database//EN\r\n")
	b.WriteString("X-WR-CALNAME:Festival Database\r\n")
	b.WriteString("X-WR-TIMEZONE:Asia/Kolkata\r\n")

	dates := make([]string, 0, len(festivals))
	for date := range festivals {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	stamp := now.UTC().Format("20060102T150405Z")
	for _, date := range dates {
		f := festivals[date]
		day, err := models.ParseDay(date)
		if err != nil {
			continue
		}
		compact := day.Format("20060102")
		description := f.Description
		if description == "" {
			description = f.Name
		}

		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:%s-%s@callscope.local\r\n", date, slug(f.Name))
		fmt.Fprintf(&b, "DTSTART;VALUE=DATE:%s\r\n", compact)
		fmt.Fprintf(&b, "DTEND;VALUE=DATE:%s\r\n", compact)
		fmt.Fprintf(&b, "DTSTAMP:%s\r\n", stamp)
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", f.Name)
		fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", description)
		b.WriteString("STATUS:CONFIRMED\r\n")
		b.WriteString("TRANSP:TRANSPARENT\r\n")
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
