// Package analyze scores and labels extracted discoveries. It is a pure
// refinement layer: no I/O, deterministic for a given input.
package analyze

import (
	"strings"

	"github.com/webradar/webradar/pkg/content"
)

// categoryKeywords maps each category to its indicator vocabulary. The
// first category reaching two distinct keyword hits wins.
var categoryKeywords = []struct {
	category content.Category
	keywords []string
}{
	{content.CategoryTech, []string{
		"technology", "software", "programming", "code", "developer",
		"app", "api", "data", "ai", "machine learning", "blockchain", "crypto",
	}},
	{content.CategoryBusiness, []string{
		"business", "startup", "entrepreneur", "company", "product",
		"service", "marketing", "sales", "finance", "investment",
	}},
	{content.CategoryScience, []string{
		"research", "study", "science", "academic", "university",
		"paper", "journal", "experiment", "discovery", "innovation",
	}},
	{content.CategoryCreative, []string{
		"design", "art", "creative", "photography", "music",
		"writing", "blog", "story", "visual", "artistic",
	}},
	{content.CategoryLifestyle, []string{
		"lifestyle", "travel", "food", "health", "fitness",
		"personal", "hobby", "family", "wellness", "culture",
	}},
	{content.CategoryGeneral, []string{
		"general", "misc", "other", "various", "different",
		"multiple", "news", "information",
	}},
}

var positiveWords = map[string]bool{
	"great": true, "amazing": true, "excellent": true, "wonderful": true,
	"fantastic": true, "love": true, "perfect": true, "best": true,
	"awesome": true, "incredible": true, "revolutionary": true, "breakthrough": true,
}

var negativeWords = map[string]bool{
	"terrible": true, "awful": true, "hate": true, "worst": true,
	"bad": true, "horrible": true, "disappointing": true, "failed": true,
	"broken": true, "wrong": true, "disaster": true, "nightmare": true,
}

// boilerplatePhrases each cost a quality penalty when found in a quote
var boilerplatePhrases = []string{
	"lorem ipsum", "click here", "read more", "error", "404",
	"not found", "coming soon",
}

const (
	baseQualityScore   = 50
	defaultTitle       = "Untitled"
	boilerplatePenalty = 20
)

// Analyzer assigns quality score, topical category, and sentiment label
// to extracted discoveries
type Analyzer struct{}

// NewAnalyzer creates a new content analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze fills in QualityScore, Category, and Sentiment on the
// discovery in place and returns it for chaining
func (a *Analyzer) Analyze(d *content.Discovery) *content.Discovery {
	d.QualityScore = a.scoreQuality(d)
	d.Category = a.categorize(d)
	d.Sentiment = a.sentiment(d.Quote)
	return d
}

// scoreQuality computes a 0-100 quality score from title, description,
// and quote signals
func (a *Analyzer) scoreQuality(d *content.Discovery) int {
	score := baseQualityScore

	if len(d.Title) > 10 {
		score += 10
	}
	if d.Title != "" && !strings.Contains(d.Title, defaultTitle) {
		score += 10
	}

	if len(d.Description) > 50 {
		score += 15
	}

	quoteLen := len(d.Quote)
	if quoteLen >= 50 && quoteLen <= 300 {
		score += 15
	}
	if containsQuotationMark(d.Quote) {
		score += 10
	}

	words := strings.Fields(d.Quote)
	if len(words) >= 8 {
		score += 10
	}
	if len(words) >= 15 {
		score += 5
	}

	lowerQuote := strings.ToLower(d.Quote)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lowerQuote, phrase) {
			score -= boilerplatePenalty
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// categorize picks the first category with at least two keyword matches
// across title, description, and quote
func (a *Analyzer) categorize(d *content.Discovery) content.Category {
	text := strings.ToLower(d.Title + " " + d.Description + " " + d.Quote)

	for _, ck := range categoryKeywords {
		matches := 0
		for _, kw := range ck.keywords {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		if matches >= 2 {
			return ck.category
		}
	}

	return content.CategoryGeneral
}

// sentiment counts positive and negative word memberships; majority
// wins, ties are neutral
func (a *Analyzer) sentiment(quote string) content.Sentiment {
	positive := 0
	negative := 0

	for _, word := range strings.Fields(strings.ToLower(quote)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if positiveWords[word] {
			positive++
		}
		if negativeWords[word] {
			negative++
		}
	}

	switch {
	case positive > negative:
		return content.SentimentPositive
	case negative > positive:
		return content.SentimentNegative
	default:
		return content.SentimentNeutral
	}
}

func containsQuotationMark(s string) bool {
	return strings.ContainsAny(s, "\"“”")
}
