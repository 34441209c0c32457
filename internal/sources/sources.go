// Package sources harvests candidate domains from several independent
// public feeds plus synthetic generation, then merges, validates, and
// ranks them into a crawl queue.
package sources

import (
	"context"
	"net/url"
	"strings"
)

// Fetcher abstracts the relay-capable HTTP client the strategies share
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Strategy is one independent domain-harvesting source. Failures are
// isolated per strategy and never abort the others.
type Strategy interface {
	Name() string
	Discover(ctx context.Context) ([]string, error)
}

// hostnameFromURL extracts a bare lowercase hostname from a raw URL,
// dropping any port and a leading www label. Empty string when the URL
// does not parse or carries no host.
func hostnameFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
