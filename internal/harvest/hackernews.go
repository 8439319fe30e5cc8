package harvest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsesift/pulsesift/internal/platform/htmlutils"
	"github.com/pulsesift/pulsesift/internal/signal"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// hackerNewsHarvester collects stories matching a query from the Algolia
// Hacker News search API.
type hackerNewsHarvester struct {
	query   string
	fetcher *fetcher
	logger  *zerolog.Logger
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryText   string `json:"story_text"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
}

func newHackerNews(query string, f *fetcher, logger *zerolog.Logger) *hackerNewsHarvester {
	return &hackerNewsHarvester{query: query, fetcher: f, logger: logger}
}

func (h *hackerNewsHarvester) Source() signal.Source {
	return signal.SourceLinkAggregator
}

func (h *hackerNewsHarvester) Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error) {
	params := url.Values{}
	params.Set("query", h.query)
	params.Set("tags", "story")
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d", since.Unix()))

	var resp hnSearchResponse
	if err := h.fetcher.getJSON(ctx, hnSearchURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}

	signals := make([]signal.Signal, 0, len(resp.Hits))

	for _, hit := range resp.Hits {
		content := strings.TrimSpace(hit.Title)
		if text := strings.TrimSpace(htmlutils.StripTags(hit.StoryText)); text != "" {
			content = content + "\n\n" + text
		}

		if content == "" {
			continue
		}

		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		signals = append(signals, signal.Signal{
			ID:         uuid.NewString(),
			Source:     signal.SourceLinkAggregator,
			Content:    content,
			Author:     hit.Author,
			URL:        link,
			CapturedAt: time.Unix(hit.CreatedAtI, 0).UTC(),
			Metadata: map[string]any{
				"points":   hit.Points,
				"comments": hit.NumComments,
				"story_id": hit.ObjectID,
			},
		})
	}

	return signals, nil
}
