package sources

import (
	"context"
	"sort"
	"time"

	"github.com/webradar/webradar/internal/domain"
	"github.com/webradar/webradar/pkg/logging"
)

// AggregatorConfig controls the multi-strategy discovery pass
type AggregatorConfig struct {
	// Budget bounds the whole discovery pass; strategies still
	// running when it expires are abandoned
	Budget time.Duration `json:"budget"`

	// QueueCap limits how many ranked domains a pass returns
	QueueCap int `json:"queue_cap"`
}

// DefaultAggregatorConfig returns discovery settings tuned for
// interactive crawl sessions
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		Budget:   12 * time.Second,
		QueueCap: 40,
	}
}

// Aggregator runs every discovery strategy concurrently, merges their
// candidates and returns a validated, scored, deduplicated queue
type Aggregator struct {
	strategies []Strategy
	config     AggregatorConfig
}

// NewAggregator builds an aggregator with the full default strategy
// set backed by the given fetcher
func NewAggregator(fetcher Fetcher, config AggregatorConfig) *Aggregator {
	return NewAggregatorWithStrategies(config,
		NewHackerNewsStrategy(fetcher),
		NewGitHubStrategy(fetcher),
		NewRedditStrategy(fetcher),
		NewCertLogStrategy(fetcher),
		NewFeedStrategy(fetcher),
		NewSyntheticStrategy(),
	)
}

// NewAggregatorWithStrategies builds an aggregator over an explicit
// strategy set
func NewAggregatorWithStrategies(config AggregatorConfig, strategies ...Strategy) *Aggregator {
	if config.Budget <= 0 {
		config.Budget = DefaultAggregatorConfig().Budget
	}
	if config.QueueCap <= 0 {
		config.QueueCap = DefaultAggregatorConfig().QueueCap
	}
	return &Aggregator{strategies: strategies, config: config}
}

type strategyResult struct {
	name    string
	domains []string
	err     error
}

// Discover runs all strategies and assembles the crawl queue. A
// strategy that fails or outlives the budget only shrinks the pool;
// the pass itself fails only when ctx is cancelled.
func (a *Aggregator) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetLogger("discovery")

	runCtx, cancel := context.WithTimeout(ctx, a.config.Budget)
	defer cancel()

	// Buffered so stragglers finishing after the deadline can still
	// send without blocking; their results are simply never read
	results := make(chan strategyResult, len(a.strategies))
	for _, s := range a.strategies {
		go func(s Strategy) {
			domains, err := s.Discover(runCtx)
			results <- strategyResult{name: s.Name(), domains: domains, err: err}
		}(s)
	}

	var merged []string
	collected := 0
	for collected < len(a.strategies) {
		select {
		case res := <-results:
			collected++
			if res.err != nil {
				logger.Warn().Str("strategy", res.name).Err(res.err).Msg("Discovery strategy failed")
			}
			merged = append(merged, res.domains...)
		case <-runCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			logger.Warn().
				Int("finished", collected).
				Int("total", len(a.strategies)).
				Msg("Discovery budget expired before all strategies finished")
			return a.rank(merged), nil
		}
	}

	return a.rank(merged), nil
}

// rank validates, deduplicates and orders candidates by heuristic
// score, keeping the top QueueCap
func (a *Aggregator) rank(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var queue []string
	for _, c := range candidates {
		if !domain.IsValidDomain(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		queue = append(queue, c)
	}

	// Lexical tiebreak keeps equal-score ordering stable across runs
	sort.SliceStable(queue, func(i, j int) bool {
		si, sj := domain.Score(queue[i]), domain.Score(queue[j])
		if si != sj {
			return si > sj
		}
		return queue[i] < queue[j]
	})

	if len(queue) > a.config.QueueCap {
		queue = queue[:a.config.QueueCap]
	}
	return queue
}
