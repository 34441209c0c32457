// Package domain holds the pure predicates and heuristics that decide
// which candidate hostnames are worth crawling and in what order.
package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minDomainLength = 4
	maxDomainLength = 50
)

// hostnamePattern accepts label(.label)+ syntax with alphanumeric-hyphen labels
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]*\.[a-zA-Z]{2,}$`)

// infraSubstrings mark internal or placeholder hosts that never carry
// interesting front-page content
var infraSubstrings = []string{
	"www.", "api.", "cdn.", "mail.", "test.", "staging.", "dev.",
	"ns.", "mx.", "ftp.", "localhost", "example",
}

// newnessKeywords suggest a recently launched product or site
var newnessKeywords = []string{"new", "beta", "app", "try", "get", "my"}

// modernTLDs are the suffixes favored by recent registrations
var modernTLDs = []string{".ai", ".app", ".dev", ".tech", ".io"}

// IsValidDomain reports whether candidate is a plausible, crawlable
// hostname. Pure syntax plus heuristic exclusions; no network I/O.
func IsValidDomain(candidate string) bool {
	if len(candidate) < minDomainLength || len(candidate) > maxDomainLength {
		return false
	}
	if strings.Contains(candidate, "..") {
		return false
	}
	if !hostnamePattern.MatchString(candidate) {
		return false
	}
	// The minimum applies to the name itself; counting the TLD would
	// let two-letter names on short TLDs slip through
	if name := candidate[:strings.LastIndex(candidate, ".")]; len(name) < minDomainLength {
		return false
	}
	lower := strings.ToLower(candidate)
	for _, infra := range infraSubstrings {
		if strings.Contains(lower, infra) {
			return false
		}
	}
	return true
}

// IsLikelyNew flags domains that look recently registered: a current or
// prior year in the name, a launch-style keyword, or a modern TLD.
// Advisory only; it biases ranking and never hard-filters candidates.
func IsLikelyNew(candidate string) bool {
	lower := strings.ToLower(candidate)

	year := time.Now().Year()
	if strings.Contains(lower, strconv.Itoa(year)) || strings.Contains(lower, strconv.Itoa(year-1)) {
		return true
	}
	for _, kw := range newnessKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, tld := range modernTLDs {
		if strings.HasSuffix(lower, tld) {
			return true
		}
	}
	return false
}
