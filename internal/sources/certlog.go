package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/webradar/webradar/pkg/logging"
)

const certLogSearchURL = "https://crt.sh/?q=%%25&output=json&exclude=expired&after=%s&limit=50"

// CertLogStrategy surfaces hostnames from freshly issued TLS
// certificates in public certificate transparency logs
type CertLogStrategy struct {
	fetcher Fetcher
	now     func() time.Time
}

// NewCertLogStrategy creates the certificate transparency strategy
func NewCertLogStrategy(fetcher Fetcher) *CertLogStrategy {
	return &CertLogStrategy{fetcher: fetcher, now: time.Now}
}

// Name implements Strategy
func (s *CertLogStrategy) Name() string { return "certlog" }

// Discover queries the log for certificates issued in the last day and
// extracts their subject names, skipping wildcard entries
func (s *CertLogStrategy) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetSourceLogger(s.Name())

	after := s.now().AddDate(0, 0, -1).Format("2006-01-02")
	body, err := s.fetcher.Fetch(ctx, fmt.Sprintf(certLogSearchURL, after))
	if err != nil {
		return nil, fmt.Errorf("querying certificate log: %w", err)
	}

	var entries []struct {
		NameValue string `json:"name_value"`
	}
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, fmt.Errorf("decoding log entries: %w", err)
	}

	var domains []string
	for _, entry := range entries {
		// name_value can hold several newline-separated SANs; the
		// first line is the primary name
		name, _, _ := strings.Cut(entry.NameValue, "\n")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || strings.HasPrefix(name, "*.") {
			continue
		}
		domains = append(domains, name)
	}

	logger.Debug().Int("domains", len(domains)).Msg("Certificate log discovery finished")
	return domains, nil
}
