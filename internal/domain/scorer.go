package domain

import (
	"strconv"
	"strings"
	"time"
)

// tldBonuses rewards modern registries favored by new projects
var tldBonuses = []struct {
	suffix string
	bonus  int
}{
	{".ai", 30},
	{".io", 25},
	{".app", 20},
	{".dev", 20},
	{".tech", 15},
}

// trendyWords each add a small attractiveness bonus when present
var trendyWords = []string{"ai", "ml", "app", "beta", "new", "try", "get", "my", "go"}

// Score assigns a deterministic attractiveness score to a domain string.
// Higher scores rank earlier in the crawl queue; the score is never used
// to reject a candidate. Result is clamped at zero.
func Score(d string) int {
	lower := strings.ToLower(d)
	score := 0

	for _, tb := range tldBonuses {
		if strings.HasSuffix(lower, tb.suffix) {
			score += tb.bonus
		}
	}

	year := time.Now().Year()
	if strings.Contains(lower, strconv.Itoa(year)) {
		score += 25
	}
	if strings.Contains(lower, strconv.Itoa(year-1)) {
		score += 15
	}

	for _, word := range trendyWords {
		if strings.Contains(lower, word) {
			score += 10
		}
	}

	// Length sweet spot: short enough to be memorable, long enough to
	// not be a parked three-letter domain.
	if len(d) >= 7 && len(d) <= 15 {
		score += 15
	}
	if len(d) < 6 || len(d) > 20 {
		score -= 10
	}

	// Established-site markers.
	if strings.Contains(lower, "www.") {
		score -= 20
	}
	if strings.Contains(lower, "blog.") {
		score -= 15
	}
	if strings.Contains(lower, "shop.") {
		score -= 15
	}

	if score < 0 {
		return 0
	}
	return score
}
