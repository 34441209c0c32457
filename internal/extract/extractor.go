// Package extract turns raw HTML into at most one representative quote
// per page, bundled with title and description metadata.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/webradar/webradar/pkg/content"
	"github.com/webradar/webradar/pkg/logging"
)

// ErrNoContent indicates the page parsed fine but yielded no usable quote
var ErrNoContent = errors.New("no extractable content")

// ExtractorConfig configures content extraction behavior
type ExtractorConfig struct {
	MaxHTMLSize    int `json:"max_html_size"`    // bytes parsed; larger input is truncated
	MaxTitleLen    int `json:"max_title_len"`    // title characters kept
	MaxDescLen     int `json:"max_desc_len"`     // description characters kept
	MinQuoteLen    int `json:"min_quote_len"`    // shortest accepted candidate
	MaxQuoteLen    int `json:"max_quote_len"`    // longest accepted candidate
	IdealMinLen    int `json:"ideal_min_len"`    // preferred length window lower bound
	IdealMaxLen    int `json:"ideal_max_len"`    // preferred length window upper bound
	MaxCandidates  int `json:"max_candidates"`   // harvest stops once this many survive
}

// DefaultExtractorConfig returns default extractor configuration
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		MaxHTMLSize:   500 * 1024,
		MaxTitleLen:   200,
		MaxDescLen:    300,
		MinQuoteLen:   30,
		MaxQuoteLen:   400,
		IdealMinLen:   50,
		IdealMaxLen:   200,
		MaxCandidates: 25,
	}
}

// candidateSelectors are scanned in priority order: explicit quotations
// first, then emphasized text, then ordinary body copy.
var candidateSelectors = []string{
	"blockquote",
	"q, cite",
	"em, strong",
	"p, li, article",
}

// boilerplateMarkers reject navigational or machine text masquerading as
// prose. Lowercase substring match.
var boilerplateMarkers = []string{
	"cookie", "privacy", "subscribe", "menu", "navigation", "404",
	"click here", "read more", "javascript", "function", "var ",
	"{}", "[]", "</",
}

const defaultTitle = "Untitled"

// Extractor parses HTML and picks one representative quote per page
type Extractor struct {
	config *ExtractorConfig
}

// NewExtractor creates a new content extractor
func NewExtractor(config *ExtractorConfig) *Extractor {
	if config == nil {
		config = DefaultExtractorConfig()
	}
	return &Extractor{config: config}
}

// Extract parses html from the given domain and returns a Discovery
// carrying the single best quote, or ErrNoContent when nothing survives
// the filters. Selection is deterministic for identical input.
func (e *Extractor) Extract(html, domain string) (*content.Discovery, error) {
	logger := logging.GetLogger("extractor")

	if len(html) > e.config.MaxHTMLSize {
		html = html[:e.config.MaxHTMLSize]
	}

	if !strings.Contains(html, "<") || !strings.Contains(html, ">") {
		return nil, fmt.Errorf("input is not HTML")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	title := e.extractTitle(doc)
	description := e.extractDescription(doc)

	candidates := e.harvestCandidates(doc)
	if len(candidates) == 0 {
		logger.Debug().Str("domain", domain).Msg("No quote candidates survived filtering")
		return nil, ErrNoContent
	}

	best := e.pickBest(candidates)

	logger.Debug().
		Str("domain", domain).
		Int("candidates", len(candidates)).
		Int("quote_len", len(best)).
		Msg("Quote extracted")

	return &content.Discovery{
		ID:          uuid.New().String(),
		Domain:      domain,
		URL:         fmt.Sprintf("https://%s", domain),
		Title:       title,
		Description: description,
		Quote:       best,
		Timestamp:   time.Now(),
	}, nil
}

// extractTitle returns the first <title> text, trimmed and capped
func (e *Extractor) extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return defaultTitle
	}
	if len(title) > e.config.MaxTitleLen {
		title = title[:e.config.MaxTitleLen]
	}
	return title
}

// extractDescription returns the meta description content, trimmed and
// capped, or empty string
func (e *Extractor) extractDescription(doc *goquery.Document) string {
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	desc = strings.TrimSpace(desc)
	if len(desc) > e.config.MaxDescLen {
		desc = desc[:e.config.MaxDescLen]
	}
	return desc
}

// harvestCandidates scans the selector tiers in priority order and
// collects surviving quote candidates. Earlier tiers keep their position
// so explicit quotations outrank body copy at equal rank.
func (e *Extractor) harvestCandidates(doc *goquery.Document) []string {
	candidates := make([]string, 0, e.config.MaxCandidates)
	seen := make(map[string]bool)

	for _, selector := range candidateSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := normalizeWhitespace(sel.Text())
			if !e.acceptCandidate(text) || seen[text] {
				return true
			}
			seen[text] = true
			candidates = append(candidates, text)
			return len(candidates) < e.config.MaxCandidates
		})
		if len(candidates) >= e.config.MaxCandidates {
			break
		}
	}

	return candidates
}

// acceptCandidate applies the length window and boilerplate denylist
func (e *Extractor) acceptCandidate(text string) bool {
	if len(text) < e.config.MinQuoteLen || len(text) > e.config.MaxQuoteLen {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// pickBest ranks surviving candidates: quotation-mark-bearing text wins,
// then text inside the ideal length window, then harvest order. The tie
// break on harvest order keeps selection deterministic.
func (e *Extractor) pickBest(candidates []string) string {
	best := candidates[0]
	bestRank := e.rank(best)

	for _, c := range candidates[1:] {
		if r := e.rank(c); r > bestRank {
			best = c
			bestRank = r
		}
	}

	return best
}

// rank scores a candidate for selection only; higher is better
func (e *Extractor) rank(text string) int {
	r := 0
	if strings.ContainsAny(text, "\"“”") {
		r += 2
	}
	if len(text) >= e.config.IdealMinLen && len(text) <= e.config.IdealMaxLen {
		r++
	}
	return r
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
