package crawler

import (
	"time"

	"github.com/webradar/webradar/pkg/content"
)

// SessionStats accumulates counters over one crawl session. The
// orchestrator owns it; callers only ever see copies.
type SessionStats struct {
	StartedAt       time.Time `json:"started_at"`
	DomainsCrawled  int       `json:"domains_crawled"`
	Discoveries     int       `json:"discoveries"`
	FetchFailures   int       `json:"fetch_failures"`
	ExtractFailures int       `json:"extract_failures"`
	Duplicates      int       `json:"duplicates"`
	DiscoveryPasses int       `json:"discovery_passes"`

	QualitySum int                       `json:"quality_sum"`
	Categories map[content.Category]int  `json:"categories"`
	Sentiments map[content.Sentiment]int `json:"sentiments"`
}

func newSessionStats() SessionStats {
	return SessionStats{
		StartedAt:  time.Now(),
		Categories: make(map[content.Category]int),
		Sentiments: make(map[content.Sentiment]int),
	}
}

func (s *SessionStats) recordDiscovery(d *content.Discovery) {
	s.Discoveries++
	s.QualitySum += d.QualityScore
	s.Categories[d.Category]++
	s.Sentiments[d.Sentiment]++
}

// SuccessRate returns the fraction of crawled domains that produced a
// discovery
func (s SessionStats) SuccessRate() float64 {
	if s.DomainsCrawled == 0 {
		return 0
	}
	return float64(s.Discoveries) / float64(s.DomainsCrawled)
}

// AverageQuality returns the mean quality score across discoveries
func (s SessionStats) AverageQuality() float64 {
	if s.Discoveries == 0 {
		return 0
	}
	return float64(s.QualitySum) / float64(s.Discoveries)
}

// copy returns a detached snapshot safe to hand to sinks
func (s SessionStats) copy() SessionStats {
	out := s
	out.Categories = make(map[content.Category]int, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.Sentiments = make(map[content.Sentiment]int, len(s.Sentiments))
	for k, v := range s.Sentiments {
		out.Sentiments[k] = v
	}
	return out
}
