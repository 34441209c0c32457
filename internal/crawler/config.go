package crawler

import (
	"time"

	"github.com/webradar/webradar/internal/proxy"
	"github.com/webradar/webradar/internal/sources"
	"github.com/webradar/webradar/internal/store"
)

// Timeouts bounds each stage of a crawl step
type Timeouts struct {
	// PerDomain caps the whole fetch phase for one domain across all
	// URL variants
	PerDomain time.Duration `json:"per_domain"`

	// Variants are tried in order until one succeeds or PerDomain
	// expires; each entry bounds a single variant attempt
	Variants []time.Duration `json:"variants"`

	// Extract bounds HTML parsing and quote selection
	Extract time.Duration `json:"extract"`
}

// AdaptiveDelay controls the pause between crawl steps. The delay
// grows toward Max while discoveries keep landing, since a filling feed
// needs no hurry, and falls back toward Base during dry streaks.
type AdaptiveDelay struct {
	Base time.Duration `json:"base"`
	Max  time.Duration `json:"max"`
	Step time.Duration `json:"step"`
}

// Config holds everything the crawl orchestrator needs
type Config struct {
	Fetcher    *proxy.FetcherConfig     `json:"fetcher"`
	Discovery  sources.AggregatorConfig `json:"discovery"`
	Store      store.StoreConfig        `json:"store"`
	Timeouts   Timeouts                 `json:"timeouts"`
	Delay      AdaptiveDelay            `json:"delay"`

	// MinBodySize rejects responses too small to hold real content
	MinBodySize int `json:"min_body_size"`
}

// DefaultConfig returns the settings used by the standard crawl
// session
func DefaultConfig() Config {
	return Config{
		Fetcher:   proxy.DefaultFetcherConfig(),
		Discovery: sources.DefaultAggregatorConfig(),
		Store:     store.DefaultStoreConfig(),
		Timeouts: Timeouts{
			PerDomain: 8 * time.Second,
			Variants:  []time.Duration{4 * time.Second, 3 * time.Second, 2 * time.Second},
			Extract:   1500 * time.Millisecond,
		},
		Delay: AdaptiveDelay{
			Base: 800 * time.Millisecond,
			Max:  3 * time.Second,
			Step: 400 * time.Millisecond,
		},
		MinBodySize: 100,
	}
}
