package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webradar/webradar/pkg/logging"
)

var redditSubreddits = []string{"startups", "SideProject", "webdev", "entrepreneur"}

const redditNewURL = "https://www.reddit.com/r/%s/new.json?limit=10"

// RedditStrategy collects outbound link hostnames from new posts in
// startup and maker subreddits
type RedditStrategy struct {
	fetcher    Fetcher
	subreddits []string
}

// NewRedditStrategy creates the Reddit discovery strategy
func NewRedditStrategy(fetcher Fetcher) *RedditStrategy {
	return &RedditStrategy{fetcher: fetcher, subreddits: redditSubreddits}
}

// Name implements Strategy
func (s *RedditStrategy) Name() string { return "reddit" }

// Discover fetches the newest posts from each subreddit and extracts
// linked hostnames, skipping self posts
func (s *RedditStrategy) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetSourceLogger(s.Name())

	var domains []string
	for _, sub := range s.subreddits {
		if err := ctx.Err(); err != nil {
			return domains, err
		}

		body, err := s.fetcher.Fetch(ctx, fmt.Sprintf(redditNewURL, sub))
		if err != nil {
			logger.Debug().Str("subreddit", sub).Err(err).Msg("Subreddit fetch failed")
			continue
		}

		var listing struct {
			Data struct {
				Children []struct {
					Data struct {
						URL    string `json:"url"`
						IsSelf bool   `json:"is_self"`
					} `json:"data"`
				} `json:"children"`
			} `json:"data"`
		}
		if err := json.Unmarshal([]byte(body), &listing); err != nil {
			logger.Debug().Str("subreddit", sub).Err(err).Msg("Listing decode failed")
			continue
		}

		for _, child := range listing.Data.Children {
			if child.Data.IsSelf || child.Data.URL == "" {
				continue
			}
			if host := hostnameFromURL(child.Data.URL); host != "" {
				domains = append(domains, host)
			}
		}
	}

	logger.Debug().Int("domains", len(domains)).Msg("Reddit discovery finished")
	return domains, nil
}
