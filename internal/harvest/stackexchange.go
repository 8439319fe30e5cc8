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

const stackExchangeQuestionsURL = "https://api.stackexchange.com/2.3/questions"

// stackExchangeHarvester collects recent questions for one tag on one
// Stack Exchange site.
type stackExchangeHarvester struct {
	site          string
	tag           string
	maxContentLen int
	fetcher       *fetcher
	logger        *zerolog.Logger
}

type stackExchangeResponse struct {
	Items []stackExchangeQuestion `json:"items"`
}

type stackExchangeQuestion struct {
	QuestionID   int64    `json:"question_id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Link         string   `json:"link"`
	Score        int      `json:"score"`
	AnswerCount  int      `json:"answer_count"`
	ViewCount    int      `json:"view_count"`
	CreationDate int64    `json:"creation_date"`
	Tags         []string `json:"tags"`
	Owner        struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

func newStackExchange(site, tag string, maxContentLen int, f *fetcher, logger *zerolog.Logger) *stackExchangeHarvester {
	return &stackExchangeHarvester{
		site:          site,
		tag:           tag,
		maxContentLen: maxContentLen,
		fetcher:       f,
		logger:        logger,
	}
}

func (h *stackExchangeHarvester) Source() signal.Source {
	return signal.SourceQASite
}

func (h *stackExchangeHarvester) Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error) {
	params := url.Values{}
	params.Set("site", h.site)
	params.Set("tagged", h.tag)
	params.Set("fromdate", fmt.Sprintf("%d", since.Unix()))
	params.Set("sort", "creation")
	params.Set("order", "desc")
	params.Set("filter", "withbody")

	var resp stackExchangeResponse
	if err := h.fetcher.getJSON(ctx, stackExchangeQuestionsURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	signals := make([]signal.Signal, 0, len(resp.Items))

	for _, q := range resp.Items {
		body := strings.TrimSpace(htmlutils.StripTags(q.Body))

		content := strings.TrimSpace(q.Title)
		if body != "" {
			content = content + "\n\n" + body
		}

		if content == "" {
			continue
		}

		signals = append(signals, signal.Signal{
			ID:         uuid.NewString(),
			Source:     signal.SourceQASite,
			Content:    htmlutils.Truncate(content, h.maxContentLen),
			Author:     q.Owner.DisplayName,
			URL:        q.Link,
			CapturedAt: time.Unix(q.CreationDate, 0).UTC(),
			Metadata: map[string]any{
				"points":      q.Score,
				"answers":     q.AnswerCount,
				"views":       q.ViewCount,
				"question_id": q.QuestionID,
			},
			Tags: q.Tags,
		})
	}

	return signals, nil
}
