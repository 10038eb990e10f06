package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dial112/callscope/internal/models"
)

func sampleFestivals() map[string]models.FestivalRecord {
	return map[string]models.FestivalRecord{
		"2024-03-20": {Name: "Holi", Date: "2024-03-20", Source: models.SourceICSImport},
		"2024-11-01": {Name: "Diwali", Date: "2024-11-01", Description: "Festival of lights", Source: models.SourceICSImport},
		"2025-10-20": {Name: "Diwali", Date: "2025-10-20", Source: models.SourceFallback},
	}
}

func TestStore_ReplaceAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "festivals.json")
	s := New(path)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	festivals := sampleFestivals()
	meta := BuildMetadata(festivals, now)

	if err := s.Replace(festivals, meta); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	loaded, loadedMeta, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("Expected 3 festivals after load, got %d", len(loaded))
	}
	if loaded["2024-11-01"].Description != "Festival of lights" {
		t.Errorf("Unexpected loaded record: %+v", loaded["2024-11-01"])
	}
	if !loadedMeta.LastUpdate.Equal(now) {
		t.Errorf("Expected last update %v, got %v", now, loadedMeta.LastUpdate)
	}
	if loadedMeta.TotalFestivals != 3 {
		t.Errorf("Expected total 3, got %d", loadedMeta.TotalFestivals)
	}
}

func TestStore_LoadMissingFileStartsFresh(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"))

	festivals, meta, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(festivals) != 0 {
		t.Errorf("Expected empty festival set, got %d", len(festivals))
	}
	if !meta.LastUpdate.IsZero() {
		t.Errorf("Expected zero metadata, got %+v", meta)
	}
}

func TestStore_ReplaceIsFullReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "festivals.json")
	s := New(path)
	now := time.Now()

	if err := s.Replace(sampleFestivals(), BuildMetadata(sampleFestivals(), now)); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	smaller := map[string]models.FestivalRecord{
		"2026-03-15": {Name: "Holi", Date: "2026-03-15", Source: models.SourceFallback},
	}
	if err := s.Replace(smaller, BuildMetadata(smaller, now)); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	loaded, _, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Expected replacement to drop previous records, got %d", len(loaded))
	}
}

func TestStore_LoadCleansStaleTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festivals.json")
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := New(path).Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Error("Expected stale temp file to be removed")
	}
}

func TestStore_EmptyFilePathUsesTmpDir(t *testing.T) {
	s := New("")
	if s.filePath == "" {
		t.Fatal("File path should not be empty")
	}
	if !strings.HasSuffix(s.filePath, filepath.Join("callscope", "festivals.json")) {
		t.Errorf("Expected tmp-dir default path, got %s", s.filePath)
	}
}

func TestBuildMetadata(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	meta := BuildMetadata(sampleFestivals(), now)

	if meta.TotalFestivals != 3 {
		t.Errorf("Expected total 3, got %d", meta.TotalFestivals)
	}
	if meta.DateCoverage != "2024-2025 (2 years)" {
		t.Errorf("Unexpected coverage: %s", meta.DateCoverage)
	}
	if len(meta.Sources) != 2 || meta.Sources[0] != models.SourceFallback || meta.Sources[1] != models.SourceICSImport {
		t.Errorf("Unexpected sources: %v", meta.Sources)
	}
}

func TestDateCoverage_Empty(t *testing.T) {
	if got := DateCoverage(nil); got != "no festivals" {
		t.Errorf("Expected 'no festivals', got %q", got)
	}
}
