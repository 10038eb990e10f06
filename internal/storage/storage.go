// Package storage provides file-based persistence for the festival database.
// The database is a JSON document keyed by ISO calendar date, plus a small
// metadata record describing freshness and coverage.
//
// Writes are full replacements (a refresh swaps the entire set) and are
// performed atomically: the new document is written to a temp file and then
// renamed over the previous one, so readers never observe a partial database.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dial112/callscope/internal/models"
)

// Metadata describes the persisted festival set
type Metadata struct {
	LastUpdate     time.Time `json:"last_update"`
	TotalFestivals int       `json:"total_festivals"`
	DateCoverage   string    `json:"date_coverage"`
	Sources        []string  `json:"sources"`
}

// databaseFile is the on-disk document structure
type databaseFile struct {
	Version   string                           `json:"version"`
	SavedAt   time.Time                        `json:"saved_at"`
	Metadata  Metadata                         `json:"metadata"`
	Festivals map[string]models.FestivalRecord `json:"festivals"`
}

// Store persists the festival database to a single JSON file
type Store struct {
	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// New creates a Store writing to filePath. If filePath is empty, an
// OS-appropriate tmp directory is used.
func New(filePath string) *Store {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "callscope", "festivals.json")
	}
	return &Store{
		filePath:        filePath,
		filePermissions: 0o644,
		dirPermissions:  0o755,
	}
}

// Replace atomically overwrites the persisted festival set and its metadata.
func (s *Store) Replace(festivals map[string]models.FestivalRecord, meta Metadata) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, s.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := databaseFile{
		Version:   "1.0",
		SavedAt:   time.Now(),
		Metadata:  meta,
		Festivals: festivals,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal festival database: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, s.filePermissions); err != nil {
		return fmt.Errorf("failed to write festival database: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return fmt.Errorf("failed to rename festival database: %w", err)
	}

	return nil
}

// Load reads the persisted festival set. A missing file is not an error:
// it yields an empty map and zero metadata so first runs start fresh.
func (s *Store) Load() (map[string]models.FestivalRecord, Metadata, error) {
	// Clean up any stale temp files from previous crashes
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return make(map[string]models.FestivalRecord), Metadata{}, nil
	}

	jsonData, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read festival database: %w", err)
	}

	var data databaseFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to unmarshal festival database: %w", err)
	}

	if data.Festivals == nil {
		data.Festivals = make(map[string]models.FestivalRecord)
	}
	return data.Festivals, data.Metadata, nil
}

// BuildMetadata derives the metadata record for a festival set as of now.
func BuildMetadata(festivals map[string]models.FestivalRecord, now time.Time) Metadata {
	sourceSet := make(map[string]bool)
	for _, f := range festivals {
		sourceSet[f.Source] = true
	}
	sources := make([]string, 0, len(sourceSet))
	for src := range sourceSet {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	return Metadata{
		LastUpdate:     now,
		TotalFestivals: len(festivals),
		DateCoverage:   DateCoverage(festivals),
		Sources:        sources,
	}
}

// DateCoverage summarizes the year span of a festival set as
// "YYYY-YYYY (N years)", or "no festivals" for an empty set.
func DateCoverage(festivals map[string]models.FestivalRecord) string {
	if len(festivals) == 0 {
		return "no festivals"
	}

	minYear, maxYear := 0, 0
	first := true
	for date := range festivals {
		t, err := models.ParseDay(date)
		if err != nil {
			continue
		}
		y := t.Year()
		if first {
			minYear, maxYear = y, y
			first = false
			continue
		}
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if first {
		return "no festivals"
	}

	return fmt.Sprintf("%d-%d (%d years)", minYear, maxYear, maxYear-minYear+1)
}
