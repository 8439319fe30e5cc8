package filters

import (
	"testing"
	"time"

	"github.com/pulsesift/pulsesift/internal/quality"
	"github.com/pulsesift/pulsesift/internal/signal"
)

func testFilterer(now time.Time) *Filterer {
	return New(quality.NewWithClock(func() time.Time { return now }))
}

func TestByMinQualityPreservesOrder(t *testing.T) {
	now := time.Now()
	f := testFilterer(now)

	// "rich" scores well: sweet-spot length, attributed, high engagement,
	// fresh. "poor" has short anonymous content from months ago.
	rich := signal.Signal{
		ID:         "rich",
		Source:     signal.SourceQASite,
		Content:    "a detailed question about connection pooling, with reproduction steps, stack traces, and the output of the diagnostics command included",
		Author:     "alice",
		CapturedAt: now.Add(-24 * time.Hour),
		Metadata:   map[string]any{"points": 80, "answers": 5},
	}
	poor := signal.Signal{
		ID:         "poor",
		Source:     signal.SourceSocialPost,
		Content:    "help",
		CapturedAt: now.Add(-120 * 24 * time.Hour),
	}
	middle := signal.Signal{
		ID:         "middle",
		Source:     signal.SourceNewsAggregator,
		Content:    "a short news blurb about the latest framework release, published this morning by the wire service",
		Author:     "newsdesk",
		CapturedAt: now.Add(-2 * time.Hour),
	}

	got := f.ByMinQuality([]signal.Signal{rich, poor, middle}, 0.5)

	if len(got) != 2 || got[0].ID != "rich" || got[1].ID != "middle" {
		t.Fatalf("ByMinQuality kept %v, want [rich middle] in order", ids(got))
	}
}

func TestBySources(t *testing.T) {
	f := testFilterer(time.Now())

	signals := []signal.Signal{
		{ID: "a", Source: signal.SourceSocialPost},
		{ID: "b", Source: signal.SourceQASite},
		{ID: "c", Source: signal.SourceCodeForge},
	}

	got := f.BySources(signals, []signal.Source{signal.SourceQASite, signal.SourceCodeForge})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("BySources kept %v, want [b c]", ids(got))
	}

	if got := f.BySources(signals, nil); len(got) != 0 {
		t.Errorf("empty allow-list kept %v, want nothing", ids(got))
	}
}

func TestByDateRangeInclusive(t *testing.T) {
	f := testFilterer(time.Now())
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	signals := []signal.Signal{
		{ID: "before", CapturedAt: base.Add(-time.Hour)},
		{ID: "start", CapturedAt: base},
		{ID: "middle", CapturedAt: base.Add(30 * time.Minute)},
		{ID: "end", CapturedAt: base.Add(time.Hour)},
		{ID: "after", CapturedAt: base.Add(2 * time.Hour)},
	}

	got := f.ByDateRange(signals, base, base.Add(time.Hour))
	if len(got) != 3 || got[0].ID != "start" || got[2].ID != "end" {
		t.Errorf("ByDateRange kept %v, want [start middle end]", ids(got))
	}
}

func TestByKeywords(t *testing.T) {
	f := testFilterer(time.Now())

	signals := []signal.Signal{
		{ID: "a", Content: "The Database migration went smoothly"},
		{ID: "b", Content: "api latency regressions after deploy"},
		{ID: "c", Content: "database api gateway comparison"},
	}

	tests := []struct {
		name     string
		keywords []string
		mode     KeywordMode
		want     []string
	}{
		{"any matches either", []string{"database", "api"}, MatchAny, []string{"a", "b", "c"}},
		{"all requires both", []string{"database", "api"}, MatchAll, []string{"c"}},
		{"case folded", []string{"DATABASE"}, MatchAny, []string{"a", "c"}},
		{"no keywords keeps all", nil, MatchAny, []string{"a", "b", "c"}},
		{"no match", []string{"kafka"}, MatchAny, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(f.ByKeywords(signals, tt.keywords, tt.mode))
			if len(got) != len(tt.want) {
				t.Fatalf("kept %v, want %v", got, tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("kept %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestApplyCompositeOrder(t *testing.T) {
	now := time.Now()
	f := testFilterer(now)

	signals := []signal.Signal{
		{
			ID:         "keep",
			Source:     signal.SourceQASite,
			Content:    "a thorough answer describing how the database connection pool should be sized under sustained load",
			Author:     "alice",
			CapturedAt: now.Add(-time.Hour),
			Metadata:   map[string]any{"points": 90},
		},
		{
			ID:         "wrong-source",
			Source:     signal.SourceSocialPost,
			Content:    "a thorough answer describing how the database connection pool should be sized under sustained load",
			Author:     "bob",
			CapturedAt: now.Add(-time.Hour),
			Metadata:   map[string]any{"likes": 50},
		},
		{
			ID:         "too-old",
			Source:     signal.SourceQASite,
			Content:    "a thorough answer describing how the database connection pool should be sized under sustained load",
			Author:     "carol",
			CapturedAt: now.Add(-400 * 24 * time.Hour),
			Metadata:   map[string]any{"points": 90},
		},
		{
			ID:         "wrong-topic",
			Source:     signal.SourceQASite,
			Content:    "a thorough answer describing the best hiking trails and where to rent equipment for a weekend trip",
			Author:     "dave",
			CapturedAt: now.Add(-time.Hour),
			Metadata:   map[string]any{"points": 90},
		},
	}

	got := f.Apply(signals, Criteria{
		MinQuality: 0.3,
		Sources:    []signal.Source{signal.SourceQASite},
		From:       now.Add(-7 * 24 * time.Hour),
		Keywords:   []string{"database"},
		Mode:       MatchAny,
	})

	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("Apply kept %v, want [keep]", ids(got))
	}
}

func TestApplyEmptyCriteriaKeepsAll(t *testing.T) {
	f := testFilterer(time.Now())

	signals := []signal.Signal{{ID: "a"}, {ID: "b"}}

	if got := f.Apply(signals, Criteria{}); len(got) != 2 {
		t.Errorf("Apply with empty criteria kept %v, want all", ids(got))
	}
}

func ids(signals []signal.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.ID
	}

	return out
}
