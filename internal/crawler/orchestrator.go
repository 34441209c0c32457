package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/webradar/webradar/internal/store"
	"github.com/webradar/webradar/pkg/content"
	"github.com/webradar/webradar/pkg/logging"
)

// ErrStopped is returned by steps interrupted by Stop
var ErrStopped = errors.New("crawler stopped")

// State names the orchestrator's current phase
type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateCrawling    State = "crawling"
)

// Source produces a ranked queue of candidate domains
type Source interface {
	Discover(ctx context.Context) ([]string, error)
}

// Fetcher retrieves the body behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns raw HTML into a discovery
type Extractor interface {
	Extract(html, domain string) (*content.Discovery, error)
}

// Analyzer fills in quality, category and sentiment
type Analyzer interface {
	Analyze(d *content.Discovery) *content.Discovery
}

// Orchestrator runs the sequential crawl loop: discover a queue of
// domains, then fetch, extract and analyze them one at a time with an
// adaptive pause between steps. One orchestrator runs one session at a
// time; Start while running is a no-op.
type Orchestrator struct {
	config    Config
	source    Source
	fetcher   Fetcher
	extractor Extractor
	analyzer  Analyzer
	store     *store.Store
	sink      EventSink

	mu      sync.Mutex
	state   State
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	stats   SessionStats
	delay   time.Duration
}

// NewOrchestrator wires a crawl session from its parts. A nil sink
// falls back to log-only output.
func NewOrchestrator(config Config, source Source, fetcher Fetcher, extractor Extractor, analyzer Analyzer, st *store.Store, sink EventSink) *Orchestrator {
	if sink == nil {
		sink = LogSink{}
	}
	return &Orchestrator{
		config:    config,
		source:    source,
		fetcher:   fetcher,
		extractor: extractor,
		analyzer:  analyzer,
		store:     st,
		sink:      sink,
		state:     StateIdle,
	}
}

// State returns the current phase
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Running reports whether a session is in progress
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Stats returns a snapshot of the current session's counters
func (o *Orchestrator) Stats() SessionStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats.copy()
}

// Start begins a session in the background. Calling Start on a
// running orchestrator does nothing.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		logger := logging.GetLogger("crawler")
		logger.Debug().Msg("Start ignored, session already running")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.done = make(chan struct{})
	o.stats = newSessionStats()
	o.delay = o.config.Delay.Base
	done := o.done
	o.mu.Unlock()

	go func() {
		defer close(done)
		o.run(runCtx)
	}()
}

// Stop ends the session. It is safe to call when nothing is running.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.running = false
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current session finishes
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	defer o.finish()

	queue, err := o.discover(ctx)
	if errors.Is(err, ErrStopped) {
		return
	}
	if err != nil {
		o.sink.OnStatus("Discovery failed: " + err.Error())
		return
	}
	if len(queue) == 0 {
		o.sink.OnStatus("No new domains discovered")
		return
	}

	o.setState(StateCrawling)
	o.sink.OnStatus(fmt.Sprintf("Crawling %d domains", len(queue)))

	for o.keepGoing(ctx) {
		if len(queue) == 0 {
			queue, err = o.discover(ctx)
			if err != nil || len(queue) == 0 {
				o.sink.OnStatus("Discovery complete")
				return
			}
			o.setState(StateCrawling)
			o.sink.OnStatus(fmt.Sprintf("Crawling %d more domains", len(queue)))
		}

		domain := queue[0]
		queue = queue[1:]

		if o.store.HasDomain(domain) {
			continue
		}

		yielded := o.crawlDomain(ctx, domain)
		o.adjustDelay(yielded)

		if !o.pause(ctx) {
			return
		}
	}
}

// discover runs one discovery pass and drops domains the store has
// already produced quotes from
func (o *Orchestrator) discover(ctx context.Context) ([]string, error) {
	o.setState(StateDiscovering)
	o.sink.OnStatus("Discovering domains")

	o.mu.Lock()
	o.stats.DiscoveryPasses++
	o.mu.Unlock()

	candidates, err := o.source.Discover(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrStopped
		}
		return nil, err
	}

	queue := candidates[:0:0]
	for _, d := range candidates {
		if !o.store.HasDomain(d) {
			queue = append(queue, d)
		}
	}
	return queue, nil
}

// crawlDomain runs one full step for one domain and reports whether it
// produced an accepted discovery
func (o *Orchestrator) crawlDomain(ctx context.Context, domain string) bool {
	o.mu.Lock()
	o.stats.DomainsCrawled++
	o.mu.Unlock()

	o.sink.OnProgress(domain, "fetching")

	body, err := o.fetchVariants(ctx, domain)
	if err != nil {
		o.mu.Lock()
		o.stats.FetchFailures++
		o.mu.Unlock()
		o.sink.OnError(domain, err)
		return false
	}

	o.sink.OnProgress(domain, "extracting")

	discovery, err := o.extractWithTimeout(body, domain)
	if err != nil {
		o.mu.Lock()
		o.stats.ExtractFailures++
		o.mu.Unlock()
		o.sink.OnError(domain, err)
		return false
	}

	o.sink.OnProgress(domain, "analyzing")
	discovery = o.analyzer.Analyze(discovery)

	if !o.store.Commit(discovery) {
		o.mu.Lock()
		o.stats.Duplicates++
		o.mu.Unlock()
		return false
	}

	o.mu.Lock()
	o.stats.recordDiscovery(discovery)
	o.mu.Unlock()
	o.sink.OnDiscovery(discovery)
	return true
}

// fetchVariants tries protocol and subdomain variants of the domain
// under a shared per-domain deadline
func (o *Orchestrator) fetchVariants(ctx context.Context, domain string) (string, error) {
	domainCtx, cancel := context.WithTimeout(ctx, o.config.Timeouts.PerDomain)
	defer cancel()

	variants := []string{
		"https://" + domain,
		"http://" + domain,
		"https://www." + domain,
	}

	var lastErr error
	for i, target := range variants {
		if err := domainCtx.Err(); err != nil {
			break
		}

		// No per-variant budget configured means the per-domain
		// ceiling is the only bound
		timeout := o.config.Timeouts.PerDomain
		if n := len(o.config.Timeouts.Variants); n > 0 {
			if i < n {
				timeout = o.config.Timeouts.Variants[i]
			} else {
				timeout = o.config.Timeouts.Variants[n-1]
			}
		}

		variantCtx, variantCancel := context.WithTimeout(domainCtx, timeout)
		body, err := o.fetcher.Fetch(variantCtx, target)
		variantCancel()

		if err != nil {
			lastErr = err
			continue
		}
		if len(body) < o.config.MinBodySize {
			lastErr = fmt.Errorf("response too small (%d bytes)", len(body))
			continue
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = domainCtx.Err()
	}
	return "", fmt.Errorf("all variants failed for %s: %w", domain, lastErr)
}

// extractWithTimeout races extraction against its deadline. HTML
// parsing is not cancellable, so a timed-out parse finishes in the
// background; the buffered channel lets it exit cleanly.
func (o *Orchestrator) extractWithTimeout(body, domain string) (*content.Discovery, error) {
	type result struct {
		discovery *content.Discovery
		err       error
	}

	ch := make(chan result, 1)
	go func() {
		d, err := o.extractor.Extract(body, domain)
		ch <- result{discovery: d, err: err}
	}()

	select {
	case res := <-ch:
		return res.discovery, res.err
	case <-time.After(o.config.Timeouts.Extract):
		return nil, fmt.Errorf("extraction timed out for %s", domain)
	}
}

// adjustDelay moves the inter-step pause toward Max on a hit and back
// toward Base on a miss
func (o *Orchestrator) adjustDelay(yielded bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if yielded {
		o.delay += o.config.Delay.Step
		if o.delay > o.config.Delay.Max {
			o.delay = o.config.Delay.Max
		}
	} else {
		o.delay -= o.config.Delay.Step
		if o.delay < o.config.Delay.Base {
			o.delay = o.config.Delay.Base
		}
	}
}

// pause sleeps the adaptive delay; it reports false when the session
// was cancelled mid-sleep
func (o *Orchestrator) pause(ctx context.Context) bool {
	o.mu.Lock()
	delay := o.delay
	o.mu.Unlock()

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) keepGoing(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.state = StateIdle
	o.running = false
	stats := o.stats.copy()
	o.mu.Unlock()

	o.store.Flush()
	o.sink.OnDone(stats)
}
