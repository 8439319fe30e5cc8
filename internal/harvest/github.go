package harvest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/pulsesift/pulsesift/internal/platform/htmlutils"
	"github.com/pulsesift/pulsesift/internal/signal"
)

const githubPageSize = 50

// githubHarvester collects recently updated issues from configured
// repositories. Pull requests are skipped.
type githubHarvester struct {
	client        *github.Client
	repos         []repoRef
	maxContentLen int
	logger        *zerolog.Logger
}

type repoRef struct {
	owner string
	name  string
}

func newGithub(token string, repos []string, maxContentLen int, logger *zerolog.Logger) (*githubHarvester, error) {
	refs := make([]repoRef, 0, len(repos))

	for _, full := range repos {
		owner, name, ok := strings.Cut(strings.TrimSpace(full), "/")
		if !ok || owner == "" || name == "" {
			return nil, fmt.Errorf("invalid repository %q, want owner/name", full)
		}

		refs = append(refs, repoRef{owner: owner, name: name})
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &githubHarvester{
		client:        github.NewClient(httpClient),
		repos:         refs,
		maxContentLen: maxContentLen,
		logger:        logger,
	}, nil
}

func (h *githubHarvester) Source() signal.Source {
	return signal.SourceCodeForge
}

func (h *githubHarvester) Harvest(ctx context.Context, since time.Time) ([]signal.Signal, error) {
	var signals []signal.Signal

	for _, repo := range h.repos {
		items, err := h.harvestRepo(ctx, repo, since)
		if err != nil {
			h.logger.Warn().Err(err).
				Str("repo", repo.owner+"/"+repo.name).
				Msg("skipping repository")

			continue
		}

		signals = append(signals, items...)
	}

	return signals, nil
}

func (h *githubHarvester) harvestRepo(ctx context.Context, repo repoRef, since time.Time) ([]signal.Signal, error) {
	opts := &github.IssueListByRepoOptions{
		State:     "all",
		Since:     since,
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: githubPageSize,
		},
	}

	issues, _, err := h.client.Issues.ListByRepo(ctx, repo.owner, repo.name, opts)
	if err != nil {
		return nil, fmt.Errorf("list issues %s/%s: %w", repo.owner, repo.name, err)
	}

	var signals []signal.Signal

	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}

		content := strings.TrimSpace(issue.GetTitle() + "\n\n" + issue.GetBody())
		if content == "" {
			continue
		}

		tags := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			tags = append(tags, label.GetName())
		}

		signals = append(signals, signal.Signal{
			ID:         uuid.NewString(),
			Source:     signal.SourceCodeForge,
			Content:    htmlutils.Truncate(content, h.maxContentLen),
			Author:     issue.GetUser().GetLogin(),
			URL:        issue.GetHTMLURL(),
			CapturedAt: issue.GetCreatedAt().Time,
			Metadata: map[string]any{
				"repo":      repo.owner + "/" + repo.name,
				"number":    issue.GetNumber(),
				"state":     issue.GetState(),
				"comments":  issue.GetComments(),
				"reactions": issue.GetReactions().GetTotalCount(),
			},
			Tags: tags,
		})
	}

	return signals, nil
}
