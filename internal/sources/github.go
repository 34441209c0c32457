package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/webradar/webradar/pkg/logging"
)

const githubSearchURL = "https://api.github.com/search/repositories?q=created:>%s&sort=stars&order=desc&per_page=20"

// GitHubStrategy finds project homepages from repositories created in
// the last week
type GitHubStrategy struct {
	fetcher Fetcher
	now     func() time.Time
}

// NewGitHubStrategy creates the GitHub discovery strategy
func NewGitHubStrategy(fetcher Fetcher) *GitHubStrategy {
	return &GitHubStrategy{fetcher: fetcher, now: time.Now}
}

// Name implements Strategy
func (s *GitHubStrategy) Name() string { return "github" }

// Discover searches for recently created repositories and collects
// their homepage hostnames, falling back to dot-containing repo names
func (s *GitHubStrategy) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetSourceLogger(s.Name())

	since := s.now().AddDate(0, 0, -7).Format("2006-01-02")
	body, err := s.fetcher.Fetch(ctx, fmt.Sprintf(githubSearchURL, since))
	if err != nil {
		return nil, fmt.Errorf("searching repositories: %w", err)
	}

	var result struct {
		Items []struct {
			Name     string `json:"name"`
			Homepage string `json:"homepage"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}

	var domains []string
	for _, item := range result.Items {
		if item.Homepage != "" {
			if host := hostnameFromURL(item.Homepage); host != "" {
				domains = append(domains, host)
				continue
			}
		}
		// Some projects name the repo after the site itself
		if strings.Contains(item.Name, ".") {
			domains = append(domains, strings.ToLower(item.Name))
		}
	}

	logger.Debug().Int("domains", len(domains)).Msg("GitHub discovery finished")
	return domains, nil
}
