package icsfeed

import (
	"strings"
	"testing"
	"time"

	"github.com/dial112/callscope/internal/models"
)

func icsBody(events ...string) []byte {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//test//EN\r\n")
	for _, e := range events {
		b.WriteString(e)
	}
	b.WriteString("END:VCALENDAR\r\n")
	return []byte(b.String())
}

func vevent(uid, date, summary, description string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString("UID:" + uid + "\r\n")
	b.WriteString("DTSTART;VALUE=DATE:" + date + "\r\n")
	b.WriteString("SUMMARY:" + summary + "\r\n")
	if description != "" {
		b.WriteString("DESCRIPTION:" + description + "\r\n")
	}
	b.WriteString("END:VEVENT\r\n")
	return b.String()
}

func TestIsLikelyFestival(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Diwali", true},
		{"Ganesh Chaturthi", true},
		{"Eid al-Fitr", true},
		{"Hanuman Jayanti", true},
		{"Independence Day", false},
		{"Gandhi Jayanti", false},  // blocklist wins over the jayanti keyword
		{"Diwali Awareness Day", false}, // blocklist wins over the diwali keyword
		{"Quarterly Planning Meeting", false},
		{"Some Random Event", false}, // matches neither list
		{"", false},
	}

	for _, tt := range tests {
		if got := IsLikelyFestival(tt.title); got != tt.want {
			t.Errorf("IsLikelyFestival(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestParseFestivals(t *testing.T) {
	body := icsBody(
		vevent("1@test", "20240320", "Holi", "Festival of colors"),
		vevent("2@test", "20240815", "Independence Day", "National holiday"),
		vevent("3@test", "20241101", "Diwali", "Festival of lights"),
	)

	festivals, err := ParseFestivals(body)
	if err != nil {
		t.Fatalf("ParseFestivals failed: %v", err)
	}

	if len(festivals) != 2 {
		t.Fatalf("Expected 2 festivals, got %d", len(festivals))
	}

	holi, ok := festivals["2024-03-20"]
	if !ok {
		t.Fatal("Expected Holi on 2024-03-20")
	}
	if holi.Name != "Holi" || holi.Description != "Festival of colors" {
		t.Errorf("Unexpected Holi record: %+v", holi)
	}
	if holi.Source != models.SourceICSImport {
		t.Errorf("Expected source %s, got %s", models.SourceICSImport, holi.Source)
	}

	if _, ok := festivals["2024-08-15"]; ok {
		t.Error("Independence Day should have been filtered out")
	}
}

func TestParseFestivals_DateTimeStart(t *testing.T) {
	event := "BEGIN:VEVENT\r\nUID:4@test\r\nDTSTART:20241101T060000Z\r\nSUMMARY:Diwali Puja\r\nEND:VEVENT\r\n"
	festivals, err := ParseFestivals(icsBody(event))
	if err != nil {
		t.Fatalf("ParseFestivals failed: %v", err)
	}
	if _, ok := festivals["2024-11-01"]; !ok {
		t.Errorf("Expected festival on 2024-11-01, got %v", festivals)
	}
}

func TestParseFestivals_EmptyBody(t *testing.T) {
	if _, err := ParseFestivals(nil); err == nil {
		t.Error("Expected error for empty body")
	}
}

func TestMergeByDate_LongerDescriptionWins(t *testing.T) {
	dst := map[string]models.FestivalRecord{
		"2024-11-01": {Name: "Diwali", Date: "2024-11-01", Description: "short", Source: models.SourceICSImport},
	}
	src := map[string]models.FestivalRecord{
		"2024-11-01": {Name: "Deepavali", Date: "2024-11-01", Description: "a much richer description", Source: models.SourceICSImport},
		"2024-03-20": {Name: "Holi", Date: "2024-03-20", Source: models.SourceICSImport},
	}

	MergeByDate(dst, src)

	if len(dst) != 2 {
		t.Fatalf("Expected 2 records after merge, got %d", len(dst))
	}
	if dst["2024-11-01"].Name != "Deepavali" {
		t.Errorf("Expected longer description to win, got %+v", dst["2024-11-01"])
	}
}

func TestMergeByDate_TieKeepsFirstSeen(t *testing.T) {
	dst := map[string]models.FestivalRecord{
		"2024-11-01": {Name: "Diwali", Date: "2024-11-01", Description: "equal", Source: models.SourceICSImport},
	}
	src := map[string]models.FestivalRecord{
		"2024-11-01": {Name: "Deepavali", Date: "2024-11-01", Description: "equal", Source: models.SourceICSImport},
	}

	MergeByDate(dst, src)

	if dst["2024-11-01"].Name != "Diwali" {
		t.Errorf("Expected first-seen record kept on tie, got %+v", dst["2024-11-01"])
	}
}

func TestFallbackTable(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	table := FallbackTable(now)

	if len(table) == 0 {
		t.Fatal("Fallback table must not be empty")
	}

	// 14 festivals per year over a 51-year window
	wantLen := len(recurringFestivals) * (2*FallbackYearsSpan + 1)
	if len(table) != wantLen {
		t.Errorf("Expected %d fallback records, got %d", wantLen, len(table))
	}

	diwali, ok := table["2024-10-20"]
	if !ok {
		t.Fatal("Expected Diwali on 2024-10-20")
	}
	if diwali.Name != "Diwali" || diwali.Source != models.SourceFallback {
		t.Errorf("Unexpected fallback record: %+v", diwali)
	}

	// Window edges: 25 years back and forward
	if _, ok := table["1999-10-20"]; !ok {
		t.Error("Expected fallback coverage 25 years back")
	}
	if _, ok := table["2049-10-20"]; !ok {
		t.Error("Expected fallback coverage 25 years forward")
	}
	if _, ok := table["1998-10-20"]; ok {
		t.Error("Fallback coverage should not extend 26 years back")
	}
}

func TestGenerateICS_RoundTrips(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	festivals := map[string]models.FestivalRecord{
		"2024-11-01": {Name: "Diwali", Date: "2024-11-01", Description: "Festival of lights", Source: models.SourceICSImport},
		"2024-03-20": {Name: "Holi", Date: "2024-03-20", Source: models.SourceFallback},
	}

	out := GenerateICS(festivals, now)
	if !strings.Contains(out, "SUMMARY:Diwali") || !strings.Contains(out, "SUMMARY:Holi") {
		t.Fatalf("Generated ICS missing events:\n%s", out)
	}

	parsed, err := ParseFestivals([]byte(out))
	if err != nil {
		t.Fatalf("Generated ICS failed to parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("Expected 2 festivals after round trip, got %d", len(parsed))
	}
	if parsed["2024-11-01"].Name != "Diwali" {
		t.Errorf("Unexpected round-trip record: %+v", parsed["2024-11-01"])
	}
}
