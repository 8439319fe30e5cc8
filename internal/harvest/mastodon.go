package harvest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsesift/pulsesift/internal/platform/htmlutils"
	"github.com/pulsesift/pulsesift/internal/signal"
)

// mastodonHarvester collects public posts for one hashtag from a
// Mastodon server's timeline API. The hashtag timeline is public, no
// token is needed.
type mastodonHarvester struct {
	server        string
	hashtag       string
	maxContentLen int
	fetcher       *fetcher
	logger        *zerolog.Logger
}

type mastodonStatus struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Favorites int    `json:"favourites_count"`
	Reblogs   int    `json:"reblogs_count"`
	Replies   int    `json:"replies_count"`
	Account   struct {
		Acct string `json:"acct"`
	} `json:"account"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func newMastodon(server, hashtag string, maxContentLen int, f *fetcher, logger *zerolog.Logger) *mastodonHarvester {
	return &mastodonHarvester{
		server:        strings.TrimRight(server, "/"),
		hashtag:       strings.TrimPrefix(hashtag, "#"),
		maxContentLen: maxContentLen,
		fetcher:       f,
		logger:        logger,
	}
}

func (h *mastodonHarvester) Source() signal.Source {
	return signal.SourceSocialPost
}

func (h *mastodonHarvester) Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error) {
	endpoint := fmt.Sprintf("%s/api/v1/timelines/tag/%s?limit=40", h.server, url.PathEscape(h.hashtag))

	var statuses []mastodonStatus
	if err := h.fetcher.getJSON(ctx, endpoint, &statuses); err != nil {
		return nil, fmt.Errorf("fetch hashtag timeline: %w", err)
	}

	signals := make([]signal.Signal, 0, len(statuses))

	for _, status := range statuses {
		createdAt, err := dateparse.ParseAny(status.CreatedAt)
		if err != nil {
			h.logger.Debug().Err(err).Str("status", status.ID).Msg("unparseable post timestamp")
			continue
		}

		if !createdAt.After(since) {
			continue
		}

		content := strings.TrimSpace(htmlutils.StripTags(status.Content))
		if content == "" {
			continue
		}

		tags := make([]string, 0, len(status.Tags))
		for _, tag := range status.Tags {
			tags = append(tags, tag.Name)
		}

		signals = append(signals, signal.Signal{
			ID:         uuid.NewString(),
			Source:     signal.SourceSocialPost,
			Content:    htmlutils.Truncate(content, h.maxContentLen),
			Author:     status.Account.Acct,
			URL:        status.URL,
			CapturedAt: createdAt.UTC(),
			Metadata: map[string]any{
				"likes":   status.Favorites,
				"reblogs": status.Reblogs,
				"replies": status.Replies,
			},
			Tags: tags,
		})
	}

	return signals, nil
}
