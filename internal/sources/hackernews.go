package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webradar/webradar/pkg/logging"
)

const (
	hackerNewsNewStoriesURL = "https://hacker-news.firebaseio.com/v0/newstories.json"
	hackerNewsItemURL       = "https://hacker-news.firebaseio.com/v0/item/%d.json"
	hackerNewsStoryLimit    = 10
)

// HackerNewsStrategy extracts outbound link hostnames from the newest
// Hacker News submissions
type HackerNewsStrategy struct {
	fetcher Fetcher
}

// NewHackerNewsStrategy creates the Hacker News discovery strategy
func NewHackerNewsStrategy(fetcher Fetcher) *HackerNewsStrategy {
	return &HackerNewsStrategy{fetcher: fetcher}
}

// Name implements Strategy
func (s *HackerNewsStrategy) Name() string { return "hackernews" }

// Discover fetches the new-stories ID list and resolves the first few
// items to their outbound URLs
func (s *HackerNewsStrategy) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetSourceLogger(s.Name())

	body, err := s.fetcher.Fetch(ctx, hackerNewsNewStoriesURL)
	if err != nil {
		return nil, fmt.Errorf("fetching new stories: %w", err)
	}

	var storyIDs []int64
	if err := json.Unmarshal([]byte(body), &storyIDs); err != nil {
		return nil, fmt.Errorf("decoding story IDs: %w", err)
	}

	if len(storyIDs) > hackerNewsStoryLimit {
		storyIDs = storyIDs[:hackerNewsStoryLimit]
	}

	var domains []string
	for _, id := range storyIDs {
		if err := ctx.Err(); err != nil {
			return domains, err
		}

		itemBody, err := s.fetcher.Fetch(ctx, fmt.Sprintf(hackerNewsItemURL, id))
		if err != nil {
			logger.Debug().Int64("story_id", id).Err(err).Msg("Story fetch failed")
			continue
		}

		var story struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(itemBody), &story); err != nil || story.URL == "" {
			continue
		}

		if host := hostnameFromURL(story.URL); host != "" {
			domains = append(domains, host)
		}
	}

	logger.Debug().Int("domains", len(domains)).Msg("Hacker News discovery finished")
	return domains, nil
}
