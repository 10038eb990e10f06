// Package icsfeed ingests festival candidates from external ICS calendar
// feeds. It normalizes VEVENT components into festival records keyed by ISO
// calendar date, keeps only events that pass a festival-likeness filter, and
// deduplicates across feeds so that at most one record exists per date.
//
// Feed failures are recoverable: an unreachable or unparsable feed is skipped
// with a warning, and when every configured feed fails the client degrades to
// a synthetic fallback table of major recurring festivals, so the impact
// classifier always has candidates even with no network access.
package icsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dial112/callscope/internal/logger"
	"github.com/dial112/callscope/internal/models"
)

// ErrNoFestivalData is returned when no feeds are configured and the fallback
// table is empty. This is a configuration error: the caller must not proceed
// with an empty candidate set.
var ErrNoFestivalData = errors.New("no festival data: no feeds configured and fallback table is empty")

// ErrAllFeedsFailed is reported as a warning when every configured feed
// failed and the fallback table was served instead.
var ErrAllFeedsFailed = errors.New("all calendar feeds failed; using fallback festival table")

// Client fetches and normalizes festival calendar feeds
type Client struct {
	urls           []string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
	now            func() time.Time
}

// NewClient creates a new calendar feed client for the given ICS endpoints
func NewClient(urls []string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		urls: urls,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		now:            time.Now,
	}
}

// FetchFestivals fetches every configured feed and merges the results into a
// single date-keyed festival map. Per-feed failures are returned as warnings,
// not errors. When all feeds fail (or none are configured) the synthetic
// fallback table is returned together with an ErrAllFeedsFailed warning.
// The hard error is non-nil only for the empty-fallback configuration case.
func (c *Client) FetchFestivals(ctx context.Context) (map[string]models.FestivalRecord, []error, error) {
	merged := make(map[string]models.FestivalRecord)
	var warnings []error
	successful := 0

	for _, url := range c.urls {
		body, err := c.fetchOne(ctx, url)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("feed %s unreachable: %w", url, err))
			logger.Warn("Calendar feed fetch failed for %s: %v", url, err)
			continue
		}

		feed, err := ParseFestivals(body)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("feed %s unparsable: %w", url, err))
			logger.Warn("Calendar feed parse failed for %s: %v", url, err)
			continue
		}

		MergeByDate(merged, feed)
		successful++
		logger.Info("Fetched %d festival candidates from %s", len(feed), url)
	}

	if successful == 0 {
		fallback := FallbackTable(c.now())
		if len(fallback) == 0 {
			return nil, warnings, ErrNoFestivalData
		}
		if len(c.urls) > 0 {
			warnings = append(warnings, ErrAllFeedsFailed)
			logger.Warn("All %d calendar feeds failed; serving fallback table with %d festivals", len(c.urls), len(fallback))
		} else {
			logger.Info("No calendar feeds configured; serving fallback table with %d festivals", len(fallback))
		}
		return fallback, warnings, nil
	}

	return merged, warnings, nil
}

// fetchOne performs an HTTP GET with bounded retry. Server errors and network
// failures are retried with linear backoff; client errors are not.
func (c *Client) fetchOne(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/calendar")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
