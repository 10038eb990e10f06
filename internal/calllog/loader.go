// Package calllog reads emergency call records from CSV exports. Column
// headers are normalized before lookup so files exported with mixed casing
// or spaces in the header row still load.
package calllog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dial112/callscope/internal/models"
)

// Required columns after header normalization. call_id, caller_lat and
// caller_lon are optional.
var requiredColumns = []string{"call_ts", "category", "jurisdiction"}

// Timestamp layouts accepted for the call_ts column, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadFile reads the CSV file at path and returns the parsed call records
// together with the number of rows skipped for parse failures.
func LoadFile(path string) ([]models.CallRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses CSV call records from r. Rows with an unparsable timestamp or
// an empty required field are skipped and counted rather than failing the
// whole load. A missing required column is a hard error.
func Load(r io.Reader) ([]models.CallRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read call log header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("call log is missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		calls   []models.CallRecord
		skipped int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		record, ok := parseRow(row, index)
		if !ok {
			skipped++
			continue
		}
		calls = append(calls, record)
	}

	return calls, skipped, nil
}

func parseRow(row []string, index map[string]int) (models.CallRecord, bool) {
	ts, ok := parseTimestamp(field(row, index, "call_ts"))
	if !ok {
		return models.CallRecord{}, false
	}

	category := strings.TrimSpace(field(row, index, "category"))
	jurisdiction := strings.TrimSpace(field(row, index, "jurisdiction"))
	if category == "" || jurisdiction == "" {
		return models.CallRecord{}, false
	}

	id := strings.TrimSpace(field(row, index, "call_id"))
	if id == "" {
		id = uuid.New().String()
	}

	record := models.NewCallRecord(id, ts, category, jurisdiction)
	record.Lat = parseCoordinate(field(row, index, "caller_lat"))
	record.Lon = parseCoordinate(field(row, index, "caller_lon"))
	if err := record.Validate(); err != nil {
		return models.CallRecord{}, false
	}

	return record, true
}

func field(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseTimestamp returns a timezone-naive time. Zone-aware layouts are
// stripped of their offset so the wall-clock time is kept as recorded.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		y, mo, d := ts.Date()
		h, mi, s := ts.Clock()
		return time.Date(y, mo, d, h, mi, s, 0, time.UTC), true
	}
	return time.Time{}, false
}

func parseCoordinate(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}

func normalizeHeader(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
