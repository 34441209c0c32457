package crawler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webradar/webradar/internal/store"
	"github.com/webradar/webradar/pkg/content"
)

type stubSource struct {
	mu     sync.Mutex
	queues [][]string
	calls  int
}

func (s *stubSource) Discover(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.calls >= len(s.queues) {
		s.calls++
		return nil, nil
	}
	queue := s.queues[s.calls]
	s.calls++
	return queue, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if body, ok := f.bodies[url]; ok {
		return body, nil
	}
	return "", errors.New("connection refused")
}

func (f *stubFetcher) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type stubExtractor struct {
	err   error
	sleep time.Duration
}

func (e *stubExtractor) Extract(html, domain string) (*content.Discovery, error) {
	if e.sleep > 0 {
		time.Sleep(e.sleep)
	}
	if e.err != nil {
		return nil, e.err
	}
	return &content.Discovery{
		ID:        uuid.New().String(),
		Domain:    domain,
		URL:       "https://" + domain,
		Title:     domain,
		Quote:     "A distinctive quote from " + domain + " with enough length to pass validation",
		Timestamp: time.Now(),
	}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(d *content.Discovery) *content.Discovery {
	d.QualityScore = 70
	d.Category = content.CategoryTech
	d.Sentiment = content.SentimentNeutral
	return d
}

type recordingSink struct {
	mu          sync.Mutex
	statuses    []string
	discoveries []*content.Discovery
	errs        []string
	doneStats   *SessionStats
	done        chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{done: make(chan struct{})}
}

func (r *recordingSink) OnStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingSink) OnProgress(domain, phase string) {}

func (r *recordingSink) OnDiscovery(d *content.Discovery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoveries = append(r.discoveries, d)
}

func (r *recordingSink) OnError(domain string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, domain)
}

func (r *recordingSink) OnDone(stats SessionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doneStats = &stats
	close(r.done)
}

func (r *recordingSink) waitDone(t *testing.T) SessionStats {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(10 * time.Second):
		t.Fatal("session did not finish")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.doneStats
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeouts.PerDomain = 500 * time.Millisecond
	cfg.Timeouts.Variants = []time.Duration{200 * time.Millisecond, 150 * time.Millisecond, 100 * time.Millisecond}
	cfg.Timeouts.Extract = 200 * time.Millisecond
	cfg.Delay = AdaptiveDelay{Base: time.Millisecond, Max: 5 * time.Millisecond, Step: 2 * time.Millisecond}
	return cfg
}

func bigBody(domain string) string {
	return "<html><body><p>Content from " + domain + "</p>" + strings.Repeat("<p>filler</p>", 20) + "</body></html>"
}

func TestOrchestrator_HappyPath(t *testing.T) {
	source := &stubSource{queues: [][]string{{"winner.io"}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://winner.io": bigBody("winner.io"),
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.Equal(t, 1, stats.DomainsCrawled)
	assert.Equal(t, 1, stats.Discoveries)
	assert.Equal(t, 70, sink.discoveries[0].QualityScore)
	assert.Equal(t, StateIdle, o.State())
	assert.False(t, o.Running())
	assert.Equal(t, 1, st.Len())
}

func TestOrchestrator_RediscoversWhenQueueExhausted(t *testing.T) {
	// Every fetch fails, so the whole first queue drains without a
	// discovery and a second discovery pass runs
	source := &stubSource{queues: [][]string{{"a.com", "b.io"}, {}}}
	fetcher := &stubFetcher{}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.GreaterOrEqual(t, source.callCount(), 2)
	assert.Equal(t, 2, stats.DomainsCrawled)
	assert.Equal(t, 2, stats.FetchFailures)
	assert.Equal(t, 0, stats.Discoveries)
	assert.Contains(t, sink.statuses, "Discovery complete")
	assert.Equal(t, StateIdle, o.State())
}

func TestOrchestrator_EmptyFirstDiscovery(t *testing.T) {
	source := &stubSource{queues: [][]string{{}}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, &stubFetcher{}, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	sink.waitDone(t)

	assert.Contains(t, sink.statuses, "No new domains discovered")
	assert.Equal(t, StateIdle, o.State())
}

func TestOrchestrator_VariantFallback(t *testing.T) {
	// Only the www https variant responds
	source := &stubSource{queues: [][]string{{"tricky.io"}, {}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://www.tricky.io": bigBody("tricky.io"),
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	require.Equal(t, 1, stats.Discoveries)
	calls := fetcher.callLog()
	require.Len(t, calls, 3)
	assert.Equal(t, "https://tricky.io", calls[0])
	assert.Equal(t, "http://tricky.io", calls[1])
	assert.Equal(t, "https://www.tricky.io", calls[2])
}

func TestOrchestrator_RejectsTinyBody(t *testing.T) {
	source := &stubSource{queues: [][]string{{"empty.io"}, {}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://empty.io":     "<html></html>",
		"http://empty.io":      "<html></html>",
		"https://www.empty.io": "<html></html>",
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.Equal(t, 1, stats.FetchFailures)
	assert.Equal(t, 0, stats.Discoveries)
	assert.Equal(t, []string{"empty.io"}, sink.errs)
}

func TestOrchestrator_ExtractTimeout(t *testing.T) {
	source := &stubSource{queues: [][]string{{"slowparse.io"}, {}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://slowparse.io": bigBody("slowparse.io"),
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{sleep: time.Second}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.Equal(t, 1, stats.ExtractFailures)
	assert.Equal(t, 0, stats.Discoveries)
}

func TestOrchestrator_SkipsAlreadyDiscoveredDomains(t *testing.T) {
	source := &stubSource{queues: [][]string{{"known.io", "fresh.io"}, {}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://fresh.io": bigBody("fresh.io"),
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	prior := &content.Discovery{
		ID:        uuid.New().String(),
		Domain:    "known.io",
		URL:       "https://known.io",
		Quote:     "An earlier quote from this domain, long enough to be accepted",
		Timestamp: time.Now(),
	}
	require.True(t, st.Commit(prior))

	o := NewOrchestrator(testConfig(), source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.Equal(t, 1, stats.DomainsCrawled)
	assert.Equal(t, 1, stats.Discoveries)
	assert.Equal(t, "fresh.io", sink.discoveries[0].Domain)
}

func TestOrchestrator_StartWhileRunningIsNoop(t *testing.T) {
	source := &stubSource{queues: [][]string{{"slow.io"}, {}}}
	fetcher := &stubFetcher{}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	cfg := testConfig()
	cfg.Delay = AdaptiveDelay{Base: 200 * time.Millisecond, Max: 400 * time.Millisecond, Step: 50 * time.Millisecond}

	o := NewOrchestrator(cfg, source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	o.Start(context.Background())
	sink.waitDone(t)

	// A second session would have run extra discovery passes
	assert.Equal(t, 2, source.callCount())
}

func TestOrchestrator_Stop(t *testing.T) {
	domains := []string{"one.io", "two.io", "three.io", "four.io"}
	source := &stubSource{queues: [][]string{domains}}
	fetcher := &stubFetcher{}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	cfg := testConfig()
	cfg.Delay = AdaptiveDelay{Base: 100 * time.Millisecond, Max: time.Second, Step: 100 * time.Millisecond}

	o := NewOrchestrator(cfg, source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	o.Stop()
	stats := sink.waitDone(t)

	assert.False(t, o.Running())
	assert.Equal(t, StateIdle, o.State())
	assert.Less(t, stats.DomainsCrawled, len(domains))
}

func TestOrchestrator_NoVariantTimeoutsConfigured(t *testing.T) {
	// Only the per-domain ceiling bounds fetches when the variant list
	// is empty; the step must still complete
	source := &stubSource{queues: [][]string{{"plainconf.io"}, {}}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://plainconf.io": bigBody("plainconf.io"),
	}}
	sink := newRecordingSink()
	st := store.NewStore(nil, store.DefaultStoreConfig())

	cfg := testConfig()
	cfg.Timeouts.Variants = nil

	o := NewOrchestrator(cfg, source, fetcher, &stubExtractor{}, stubAnalyzer{}, st, sink)
	o.Start(context.Background())
	stats := sink.waitDone(t)

	assert.Equal(t, 1, stats.Discoveries)
}

func TestLogSink(t *testing.T) {
	// Smoke coverage for the log-only sink callbacks
	var sink LogSink
	sink.OnStatus("session starting")
	sink.OnProgress("smoke.io", "fetching")
	sink.OnDiscovery(&content.Discovery{Domain: "smoke.io", QualityScore: 55})
	sink.OnError("smoke.io", errors.New("unreachable"))
	sink.OnDone(newSessionStats())
}

func TestAdjustDelay(t *testing.T) {
	cfg := testConfig()
	cfg.Delay = AdaptiveDelay{Base: 100 * time.Millisecond, Max: 300 * time.Millisecond, Step: 100 * time.Millisecond}
	o := NewOrchestrator(cfg, nil, nil, nil, nil, nil, nil)
	o.delay = cfg.Delay.Base

	o.adjustDelay(true)
	assert.Equal(t, 200*time.Millisecond, o.delay)
	o.adjustDelay(true)
	o.adjustDelay(true)
	assert.Equal(t, 300*time.Millisecond, o.delay)

	o.adjustDelay(false)
	assert.Equal(t, 200*time.Millisecond, o.delay)
	o.adjustDelay(false)
	o.adjustDelay(false)
	assert.Equal(t, 100*time.Millisecond, o.delay)
}

func TestSessionStats(t *testing.T) {
	stats := newSessionStats()
	stats.DomainsCrawled = 4

	d := &content.Discovery{QualityScore: 80, Category: content.CategoryTech, Sentiment: content.SentimentPositive}
	stats.recordDiscovery(d)
	d2 := &content.Discovery{QualityScore: 40, Category: content.CategoryTech, Sentiment: content.SentimentNeutral}
	stats.recordDiscovery(d2)

	assert.Equal(t, 0.5, stats.SuccessRate())
	assert.Equal(t, 60.0, stats.AverageQuality())
	assert.Equal(t, 2, stats.Categories[content.CategoryTech])
	assert.Equal(t, 1, stats.Sentiments[content.SentimentPositive])

	snapshot := stats.copy()
	snapshot.Categories[content.CategoryScience] = 9
	assert.Zero(t, stats.Categories[content.CategoryScience])
}
