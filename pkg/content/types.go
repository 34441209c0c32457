package content

import (
	"fmt"
	"strings"
	"time"
)

// Quote length bounds enforced at commit time. Extraction may surface
// slightly shorter candidates; anything outside these bounds never
// becomes a Discovery.
const (
	MinQuoteLength = 30
	MaxQuoteLength = 500
)

// Category classifies a discovery by topic
type Category string

const (
	CategoryTech      Category = "tech"
	CategoryBusiness  Category = "business"
	CategoryScience   Category = "science"
	CategoryCreative  Category = "creative"
	CategoryLifestyle Category = "lifestyle"
	CategoryGeneral   Category = "general"
)

// Sentiment labels the emotional tone of a quote
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// QualityTier represents quality classification of a discovery
type QualityTier string

const (
	TierExcellent QualityTier = "excellent" // Score >= 80
	TierGood      QualityTier = "good"      // Score >= 60
	TierFair      QualityTier = "fair"      // Score >= 40
	TierPoor      QualityTier = "poor"      // Score < 40
)

// TierForScore maps a quality score to its tier
func TierForScore(score int) QualityTier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	case score >= 40:
		return TierFair
	default:
		return TierPoor
	}
}

// excludedKeywords disqualify a quote outright; they mark error pages
// and placeholder content rather than real writing
var excludedKeywords = []string{
	"error",
	"404",
	"not found",
	"coming soon",
	"lorem ipsum",
}

// Discovery is one accepted crawl result: a domain paired with the single
// quote chosen to represent it, plus extracted metadata. Discoveries are
// immutable once committed to the store.
type Discovery struct {
	ID           string    `json:"id"`
	Domain       string    `json:"domain"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Quote        string    `json:"quote"`
	QualityScore int       `json:"quality_score"`
	Category     Category  `json:"category,omitempty"`
	Sentiment    Sentiment `json:"sentiment,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Tier returns the quality tier for the discovery's score
func (d *Discovery) Tier() QualityTier {
	return TierForScore(d.QualityScore)
}

// Validate checks if the discovery has required fields and a quote
// within the accepted length bounds, free of excluded keywords
func (d *Discovery) Validate() error {
	if d.Domain == "" {
		return fmt.Errorf("discovery domain cannot be empty")
	}
	if d.Quote == "" {
		return fmt.Errorf("discovery quote cannot be empty")
	}
	if len(d.Quote) < MinQuoteLength || len(d.Quote) > MaxQuoteLength {
		return fmt.Errorf("discovery quote length %d outside bounds [%d,%d]",
			len(d.Quote), MinQuoteLength, MaxQuoteLength)
	}
	if d.URL == "" {
		return fmt.Errorf("discovery must have a source URL")
	}
	lowered := strings.ToLower(d.Quote)
	for _, keyword := range excludedKeywords {
		if strings.Contains(lowered, keyword) {
			return fmt.Errorf("discovery quote contains excluded keyword %q", keyword)
		}
	}
	return nil
}
