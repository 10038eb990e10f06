package alert

import (
	"strings"
	"testing"

	"github.com/dial112/callscope/internal/models"
)

func TestFormatImpactReport(t *testing.T) {
	assessments := []models.ImpactAssessment{
		{
			FestivalName:   "Diwali",
			FestivalDate:   "2024-11-01",
			AvgCallsDuring: 12.3,
			MaxCallsDuring: 20,
			Baseline:       5.0,
			ImpactRatio:    2.46,
			MaxImpactRatio: 4.0,
			ImpactCategory: models.ImpactHigh,
			Included:       true,
		},
		{
			FestivalName:   "Holi",
			FestivalDate:   "2024-03-25",
			AvgCallsDuring: 8.0,
			MaxCallsDuring: 10,
			Baseline:       5.0,
			ImpactRatio:    1.6,
			MaxImpactRatio: 2.0,
			ImpactCategory: models.ImpactModerate,
			Included:       true,
		},
	}

	message := FormatImpactReport("crime", assessments)

	if !strings.Contains(message, "Festival Call Volume Impact Report") {
		t.Error("Expected report header")
	}
	if !strings.Contains(message, "Diwali") {
		t.Error("Expected Diwali in the report")
	}
	if !strings.Contains(message, "2024\\-11\\-01") {
		t.Error("Expected escaped festival date")
	}
	if !strings.Contains(message, "2\\.46x") {
		t.Error("Expected escaped impact ratio")
	}
	if !strings.Contains(message, "peak 20") {
		t.Error("Expected peak call count")
	}
	if !strings.Contains(message, "🔴") || !strings.Contains(message, "🟠") {
		t.Error("Expected impact category markers")
	}
	if strings.Index(message, "Diwali") > strings.Index(message, "Holi") {
		t.Error("Expected assessments rendered in given order")
	}
}

func TestFormatImpactReport_Empty(t *testing.T) {
	message := FormatImpactReport("crime", nil)

	if !strings.Contains(message, "No festivals with significant call volume impact") {
		t.Error("Expected empty report notice")
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got := escapeMarkdownV2("a.b-c(d)")
	want := "a\\.b\\-c\\(d\\)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
