package harvest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/pulsesift/pulsesift/internal/platform/htmlutils"
	"github.com/pulsesift/pulsesift/internal/signal"
)

// rssHarvester collects items from RSS and Atom feeds.
type rssHarvester struct {
	feedURLs      []string
	expandContent bool
	maxContentLen int
	fetcher       *fetcher
	parser        *gofeed.Parser
	logger        *zerolog.Logger
}

func newRSS(feedURLs []string, expandContent bool, maxContentLen int, f *fetcher, logger *zerolog.Logger) *rssHarvester {
	return &rssHarvester{
		feedURLs:      feedURLs,
		expandContent: expandContent,
		maxContentLen: maxContentLen,
		fetcher:       f,
		parser:        gofeed.NewParser(),
		logger:        logger,
	}
}

func (h *rssHarvester) Source() signal.Source {
	return signal.SourceNewsAggregator
}

func (h *rssHarvester) Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error) {
	var signals []signal.Signal

	for _, feedURL := range h.feedURLs {
		items, err := h.harvestFeed(ctx, feedURL, since)
		if err != nil {
			// One broken feed must not starve the others.
			h.logger.Warn().Err(err).Str("feed", feedURL).Msg("skipping feed")
			continue
		}

		signals = append(signals, items...)
	}

	return signals, nil
}

func (h *rssHarvester) harvestFeed(ctx context.Context, feedURL string, since time.Time) ([]signal.Signal, error) {
	body, err := h.fetcher.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := h.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var signals []signal.Signal

	for _, item := range feed.Items {
		published := itemPublished(item)
		if !published.After(since) {
			continue
		}

		content := strings.TrimSpace(htmlutils.StripTags(firstNonEmpty(item.Content, item.Description, item.Title)))
		if h.expandContent && item.Link != "" {
			if expanded := h.expandItem(ctx, item.Link); expanded != "" {
				content = expanded
			}
		}

		if content == "" {
			continue
		}

		signals = append(signals, signal.Signal{
			ID:         uuid.NewString(),
			Source:     signal.SourceNewsAggregator,
			Content:    htmlutils.Truncate(content, h.maxContentLen),
			Author:     feedAuthor(item),
			URL:        item.Link,
			CapturedAt: published,
			Metadata: map[string]any{
				"feed":  feed.Title,
				"title": item.Title,
			},
			Tags: item.Categories,
		})
	}

	return signals, nil
}

// expandItem fetches the linked article and runs readability over it.
// Failures are non-fatal: the feed summary is kept instead.
func (h *rssHarvester) expandItem(ctx context.Context, link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}

	body, err := h.fetcher.get(ctx, link)
	if err != nil {
		h.logger.Debug().Err(err).Str("link", link).Msg("article fetch failed")
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		h.logger.Debug().Err(err).Str("link", link).Msg("readability extraction failed")
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}

func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}

	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	if item.Published != "" {
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			return t
		}
	}

	return time.Now().UTC()
}

func feedAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 {
		return item.Authors[0].Name
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
