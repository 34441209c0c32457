package sources

import (
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/webradar/webradar/pkg/logging"
)

var defaultFeedURLs = []string{
	"https://techcrunch.com/feed/",
	"https://www.theverge.com/rss/index.xml",
	"https://venturebeat.com/feed/",
}

// FeedStrategy pulls linked hostnames out of technology news RSS and
// Atom feeds
type FeedStrategy struct {
	fetcher Fetcher
	parser  *gofeed.Parser
	urls    []string
}

// NewFeedStrategy creates the RSS feed discovery strategy
func NewFeedStrategy(fetcher Fetcher) *FeedStrategy {
	return &FeedStrategy{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		urls:    defaultFeedURLs,
	}
}

// Name implements Strategy
func (s *FeedStrategy) Name() string { return "feeds" }

// Discover fetches each feed, parses it and collects item link
// hostnames
func (s *FeedStrategy) Discover(ctx context.Context) ([]string, error) {
	logger := logging.GetSourceLogger(s.Name())

	var domains []string
	for _, feedURL := range s.urls {
		if err := ctx.Err(); err != nil {
			return domains, err
		}

		body, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			logger.Debug().Str("feed", feedURL).Err(err).Msg("Feed fetch failed")
			continue
		}

		feed, err := s.parser.ParseString(body)
		if err != nil {
			logger.Debug().Str("feed", feedURL).Err(err).Msg("Feed parse failed")
			continue
		}

		for _, item := range feed.Items {
			if item.Link == "" {
				continue
			}
			if host := hostnameFromURL(item.Link); host != "" {
				domains = append(domains, host)
			}
		}
	}

	logger.Debug().Int("domains", len(domains)).Msg("Feed discovery finished")
	return domains, nil
}
