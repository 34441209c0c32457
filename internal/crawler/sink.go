package crawler

import (
	"github.com/webradar/webradar/pkg/content"
	"github.com/webradar/webradar/pkg/logging"
)

// EventSink receives orchestrator progress as it happens. Implementors
// must return quickly; a slow sink stalls the crawl loop.
type EventSink interface {
	// OnStatus reports a human-readable state change
	OnStatus(status string)

	// OnProgress reports the domain and phase of the current step
	OnProgress(domain, phase string)

	// OnDiscovery delivers each accepted discovery
	OnDiscovery(d *content.Discovery)

	// OnError reports a non-fatal step failure
	OnError(domain string, err error)

	// OnDone fires when the session ends, with the final stats
	OnDone(stats SessionStats)
}

// LogSink is an EventSink that writes everything to the structured log
type LogSink struct{}

func (LogSink) OnStatus(status string) {
	logger := logging.GetLogger("crawler")
	logger.Info().Msg(status)
}

func (LogSink) OnProgress(domain, phase string) {
	logger := logging.GetCrawlLogger(domain, phase)
	logger.Debug().Msg("Crawl progress")
}

func (LogSink) OnDiscovery(d *content.Discovery) {
	logger := logging.GetLogger("crawler")
	logger.Info().
		Str("domain", d.Domain).
		Int("quality", d.QualityScore).
		Str("category", string(d.Category)).
		Str("sentiment", string(d.Sentiment)).
		Msg("New discovery")
}

func (LogSink) OnError(domain string, err error) {
	logger := logging.GetLogger("crawler")
	logger.Debug().Str("domain", domain).Err(err).Msg("Crawl step failed")
}

func (LogSink) OnDone(stats SessionStats) {
	logger := logging.GetLogger("crawler")
	logger.Info().
		Int("crawled", stats.DomainsCrawled).
		Int("discoveries", stats.Discoveries).
		Float64("success_rate", stats.SuccessRate()).
		Msg("Session finished")
}
