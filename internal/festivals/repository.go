// Package festivals owns the canonical festival map: the deduplicated,
// date-keyed set of festival records the impact classifier draws candidates
// from. The repository is the only stateful component in the analysis core;
// readers always see either the previous set or the fully refreshed one,
// never a partially replaced map.
package festivals

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dial112/callscope/internal/logger"
	"github.com/dial112/callscope/internal/models"
	"github.com/dial112/callscope/internal/storage"
)

// DefaultStaleness is the refresh staleness window: a non-forced refresh is
// a no-op unless this much time has passed since the last successful one.
const DefaultStaleness = 180 * 24 * time.Hour

// Source produces the normalized festival map from external calendar feeds.
// The icsfeed client satisfies this.
type Source interface {
	FetchFestivals(ctx context.Context) (map[string]models.FestivalRecord, []error, error)
}

// Statistics summarizes the current festival database
type Statistics struct {
	TotalFestivals int
	DateCoverage   string
	LastRefresh    time.Time
	Sources        []string
	PerYear        map[int]int
}

// Repository holds the canonical festival map and its freshness state.
// All methods are safe for concurrent use.
type Repository struct {
	mu          sync.RWMutex
	festivals   map[string]models.FestivalRecord
	lastRefresh time.Time

	source    Source
	store     *storage.Store // nil disables persistence
	staleness time.Duration
	now       func() time.Time
}

// New creates a repository backed by the given source and optional store.
// A staleness of zero selects DefaultStaleness.
func New(source Source, store *storage.Store, staleness time.Duration) *Repository {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &Repository{
		festivals: make(map[string]models.FestivalRecord),
		source:    source,
		store:     store,
		staleness: staleness,
		now:       time.Now,
	}
}

// Load restores the festival map and last-refresh timestamp from the store.
// Without a store it is a no-op.
func (r *Repository) Load() error {
	if r.store == nil {
		return nil
	}

	festivals, meta, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load festival database: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.festivals = festivals
	r.lastRefresh = meta.LastUpdate
	return nil
}

// Refresh re-ingests the calendar feeds and atomically replaces the festival
// map. Unless force is true, it is skipped when the current set is still
// fresh (within the staleness window of the last successful refresh).
// The returned warnings carry per-feed failures and the fallback notice;
// the error is non-nil only for configuration-level failures.
func (r *Repository) Refresh(ctx context.Context, force bool) (bool, []error, error) {
	now := r.now()

	r.mu.RLock()
	last := r.lastRefresh
	r.mu.RUnlock()

	if !force && !last.IsZero() && now.Sub(last) <= r.staleness {
		logger.Debug("Festival database fresh (last refresh %v); skipping", last)
		return false, nil, nil
	}

	// Build the replacement map fully off to the side before publishing.
	festivals, warnings, err := r.source.FetchFestivals(ctx)
	if err != nil {
		return false, warnings, fmt.Errorf("festival refresh failed: %w", err)
	}

	if r.store != nil {
		meta := storage.BuildMetadata(festivals, now)
		if err := r.store.Replace(festivals, meta); err != nil {
			// Persistence failure does not invalidate the in-memory refresh.
			warnings = append(warnings, fmt.Errorf("failed to persist festival database: %w", err))
			logger.Warn("Failed to persist festival database: %v", err)
		}
	}

	r.mu.Lock()
	r.festivals = festivals
	r.lastRefresh = now
	r.mu.Unlock()

	logger.Info("Festival database refreshed: %d festivals", len(festivals))
	return true, warnings, nil
}

// Get returns all festivals whose date falls within [start, end] inclusive,
// sorted by date ascending. An empty or inverted range yields an empty
// result, never an error. ISO date strings order lexicographically, so the
// range check is a plain string comparison.
func (r *Repository) Get(start, end string) []models.FestivalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.FestivalRecord
	for date, f := range r.festivals {
		if date >= start && date <= end {
			result = append(result, f)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// All returns a copy of the full festival map.
func (r *Repository) All() map[string]models.FestivalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.FestivalRecord, len(r.festivals))
	for date, f := range r.festivals {
		out[date] = f
	}
	return out
}

// Statistics reports size, coverage, and freshness of the current set.
func (r *Repository) Statistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sourceSet := make(map[string]bool)
	perYear := make(map[int]int)
	for date, f := range r.festivals {
		sourceSet[f.Source] = true
		if t, err := models.ParseDay(date); err == nil {
			perYear[t.Year()]++
		}
	}
	sources := make([]string, 0, len(sourceSet))
	for src := range sourceSet {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	return Statistics{
		TotalFestivals: len(r.festivals),
		DateCoverage:   storage.DateCoverage(r.festivals),
		LastRefresh:    r.lastRefresh,
		Sources:        sources,
		PerYear:        perYear,
	}
}
