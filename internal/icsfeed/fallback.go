package icsfeed

import (
	"fmt"
	"time"

	"github.com/dial112/callscope/internal/models"
)

// recurringFestival is an entry in the synthetic fallback table: a major
// festival pinned to a fixed approximate day of a fixed month. Days are
// staggered within shared months so the one-record-per-date invariant does
// not silently drop festivals.
type recurringFestival struct {
	name  string
	month time.Month
	day   int
}

var recurringFestivals = []recurringFestival{
	{"Makar Sankranti", time.January, 15},
	{"Maha Shivratri", time.February, 15},
	{"Holi", time.March, 15},
	{"Ram Navami", time.April, 10},
	{"Hanuman Jayanti", time.April, 18},
	{"Raksha Bandhan", time.August, 10},
	{"Krishna Janmashtami", time.August, 18},
	{"Ganesh Chaturthi", time.August, 26},
	{"Navratri", time.September, 15},
	{"Dussehra", time.October, 5},
	{"Karva Chauth", time.October, 12},
	{"Dhanteras", time.October, 18},
	{"Diwali", time.October, 20},
	{"Bhai Dooj", time.November, 2},
}

// FallbackYearsSpan is the number of years covered on each side of the
// current year by the fallback table.
const FallbackYearsSpan = 25

// FallbackTable synthesizes the approximate-date festival table used when no
// live feed is reachable: one entry per recurring festival per year over a
// 51-year window centered on now (25 years back, 25 years forward).
func FallbackTable(now time.Time) map[string]models.FestivalRecord {
	festivals := make(map[string]models.FestivalRecord, len(recurringFestivals)*(2*FallbackYearsSpan+1))
	currentYear := now.Year()

	for year := currentYear - FallbackYearsSpan; year <= currentYear+FallbackYearsSpan; year++ {
		for _, f := range recurringFestivals {
			date := models.Day(time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC))
			festivals[date] = models.FestivalRecord{
				Name:        f.name,
				Date:        date,
				Description: fmt.Sprintf("Approximate date for %s", f.name),
				Source:      models.SourceFallback,
			}
		}
	}

	return festivals
}
