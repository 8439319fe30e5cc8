// Package harvest gathers signals from the supported public sources.
//
// Each Harvester covers one source platform and turns its items into
// signals. Harvesters share a rate-limited HTTP client so the service is
// a polite consumer of every upstream API regardless of how many sources
// are enabled.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pulsesift/pulsesift/internal/platform/config"
	"github.com/pulsesift/pulsesift/internal/signal"
)

const maxResponseBytes = 4 << 20

// Harvester produces signals from one source platform.
type Harvester interface {
	Source() signal.Source
	Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error)
}

// fetcher is the shared rate-limited HTTP client.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newFetcher(rps float64, timeout time.Duration) *fetcher {
	if rps <= 0 {
		rps = 1
	}

	return &fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// get performs a rate-limited GET and returns the response body.
func (f *fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", "pulsesift/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	return body, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (f *fetcher) getJSON(ctx context.Context, url string, target any) error {
	body, err := f.get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	return nil
}

// FromConfig builds every harvester the configuration enables.
func FromConfig(cfg *config.Config, logger *zerolog.Logger) ([]Harvester, error) {
	timeout, err := time.ParseDuration(cfg.HarvestHTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid harvest http timeout: %w", err)
	}

	shared := newFetcher(cfg.HarvestRPS, timeout)

	var harvesters []Harvester

	if len(cfg.FeedURLs) > 0 {
		harvesters = append(harvesters, newRSS(cfg.FeedURLs, cfg.FeedExpandContent, cfg.MaxContentLength, shared, logger))
	}

	if len(cfg.GithubRepos) > 0 {
		gh, err := newGithub(cfg.GithubToken, cfg.GithubRepos, cfg.MaxContentLength, logger)
		if err != nil {
			return nil, err
		}

		harvesters = append(harvesters, gh)
	}

	if cfg.HNQuery != "" {
		harvesters = append(harvesters, newHackerNews(cfg.HNQuery, shared, logger))
	}

	if cfg.StackExchangeTag != "" {
		harvesters = append(harvesters, newStackExchange(cfg.StackExchangeSite, cfg.StackExchangeTag, cfg.MaxContentLength, shared, logger))
	}

	if cfg.MastodonServer != "" && cfg.MastodonHashtag != "" {
		harvesters = append(harvesters, newMastodon(cfg.MastodonServer, cfg.MastodonHashtag, cfg.MaxContentLength, shared, logger))
	}

	return harvesters, nil
}
