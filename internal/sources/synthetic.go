package sources

import (
	"context"
	"math/rand"
	"time"
)

var (
	syntheticPrefixes = []string{"get", "try", "use", "my", "go", "hey", "join", "meet"}
	syntheticStems    = []string{"flow", "stack", "base", "pulse", "forge", "spark", "nest", "loop", "shift", "wave"}
	syntheticTLDs     = []string{"ai", "io", "app", "dev", "tech", "co"}
)

const syntheticBatchSize = 15

// SyntheticStrategy generates plausible modern-looking domain names by
// combining startup naming patterns. It never fails and needs no
// network, so discovery always has candidates even when every public
// API is down.
type SyntheticStrategy struct {
	rng *rand.Rand
}

// NewSyntheticStrategy creates the synthetic name generator
func NewSyntheticStrategy() *SyntheticStrategy {
	return &SyntheticStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSyntheticStrategyWithSeed creates a generator with a fixed seed
// for reproducible runs
func NewSyntheticStrategyWithSeed(seed int64) *SyntheticStrategy {
	return &SyntheticStrategy{rng: rand.New(rand.NewSource(seed))}
}

// Name implements Strategy
func (s *SyntheticStrategy) Name() string { return "synthetic" }

// Discover produces a batch of generated candidate domains
func (s *SyntheticStrategy) Discover(ctx context.Context) ([]string, error) {
	domains := make([]string, 0, syntheticBatchSize)
	for i := 0; i < syntheticBatchSize; i++ {
		stem := syntheticStems[s.rng.Intn(len(syntheticStems))]
		tld := syntheticTLDs[s.rng.Intn(len(syntheticTLDs))]

		// Half the names carry a verb prefix, the rest stand alone
		name := stem
		if s.rng.Intn(2) == 0 {
			name = syntheticPrefixes[s.rng.Intn(len(syntheticPrefixes))] + stem
		}
		domains = append(domains, name+"."+tld)
	}
	return domains, nil
}
