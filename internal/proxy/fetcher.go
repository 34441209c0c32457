// Package proxy resolves URLs to page bodies, falling back across a
// list of public CORS relay endpoints when the direct route fails.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/webradar/webradar/pkg/logging"
)

// ErrAllRelaysFailed indicates neither the direct route nor any eligible
// relay produced a body
var ErrAllRelaysFailed = errors.New("direct fetch and all relays failed")

// DefaultRelays lists the public CORS relay endpoints tried in order.
// Each expects the percent-encoded target URL appended to its base.
var DefaultRelays = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
	"https://thingproxy.freeboard.io/fetch/",
}

// FetcherConfig configures fetch behavior
type FetcherConfig struct {
	Relays        []string      `json:"relays"`
	DirectTimeout time.Duration `json:"direct_timeout"`
	RelayTimeout  time.Duration `json:"relay_timeout"`
	RelayCooldown time.Duration `json:"relay_cooldown"`
	MaxBodySize   int64         `json:"max_body_size"`
	UserAgent     string        `json:"user_agent"`
}

// DefaultFetcherConfig returns default fetcher configuration
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		Relays:        DefaultRelays,
		DirectTimeout: 6 * time.Second,
		RelayTimeout:  8 * time.Second,
		RelayCooldown: 30 * time.Second,
		MaxBodySize:   2 * 1024 * 1024,
		UserAgent:     "webradar/1.0 (web discovery; respectful crawling)",
	}
}

// Fetcher retrieves page bodies, first directly and then through the
// configured relay list with per-relay failure cooldowns
type Fetcher struct {
	client *http.Client
	config *FetcherConfig
	health *HealthTracker
}

// NewFetcher creates a new proxy-capable fetcher
func NewFetcher(config *FetcherConfig) *Fetcher {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	return &Fetcher{
		// Per-attempt deadlines come from the request context, not the
		// client, so direct and relay attempts can differ.
		client: &http.Client{},
		config: config,
		health: NewHealthTracker(config.RelayCooldown),
	}
}

// Health exposes the relay health tracker
func (f *Fetcher) Health() *HealthTracker {
	return f.health
}

// Fetch resolves targetURL to a body. It tries a direct request first,
// then each relay outside its cooldown window, returning the first body
// obtained. When everything fails the last observed error is wrapped in
// ErrAllRelaysFailed.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	logger := logging.GetLogger("fetcher")

	body, directErr := f.get(ctx, targetURL, f.config.DirectTimeout)
	if directErr == nil {
		return body, nil
	}

	logger.Debug().
		Str("url", targetURL).
		Err(directErr).
		Msg("Direct fetch failed, trying relays")

	lastErr := directErr
	attempted := false

	for _, relay := range f.config.Relays {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !f.health.Available(relay) {
			logger.Debug().Str("relay", relay).Msg("Relay skipped during cooldown")
			continue
		}

		attempted = true
		relayURL := relay + url.QueryEscape(targetURL)

		body, err := f.get(ctx, relayURL, f.config.RelayTimeout)
		if err != nil {
			f.health.RecordFailure(relay)
			lastErr = err
			logger.Debug().Str("relay", relay).Err(err).Msg("Relay fetch failed")
			continue
		}

		f.health.RecordSuccess(relay)
		logger.Debug().
			Str("url", targetURL).
			Str("relay", relay).
			Int("body_len", len(body)).
			Msg("Fetched through relay")
		return body, nil
	}

	if !attempted {
		return "", fmt.Errorf("%w: every relay in cooldown after: %v", ErrAllRelaysFailed, lastErr)
	}
	return "", fmt.Errorf("%w: last error: %v", ErrAllRelaysFailed, lastErr)
}

// get issues one GET with its own timeout and reads a size-capped body
func (f *Fetcher) get(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := &io.LimitedReader{R: resp.Body, N: f.config.MaxBodySize}
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
