// Package filters narrows signal collections with pure, side-effect-free
// predicates. Filtering is applied after deduplication; every operation
// is total, preserves input order, and may return an empty slice.
package filters

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/pulsesift/pulsesift/internal/quality"
	"github.com/pulsesift/pulsesift/internal/signal"
)

// KeywordMode selects how multiple keywords combine.
type KeywordMode string

const (
	// MatchAny keeps a signal when at least one keyword appears.
	MatchAny KeywordMode = "any"
	// MatchAll keeps a signal only when every keyword appears.
	MatchAll KeywordMode = "all"
)

// Criteria describes a composite filter. Zero-value fields are skipped.
// The composite applies in fixed order: quality, source, date range,
// keywords.
type Criteria struct {
	MinQuality float64
	Sources    []signal.Source
	From       time.Time
	To         time.Time
	Keywords   []string
	Mode       KeywordMode
}

// Filterer applies predicates over signal slices. Quality is recomputed
// through the scorer on every call rather than read from a cached score.
type Filterer struct {
	scorer *quality.Scorer
	caser  cases.Caser
}

func New(scorer *quality.Scorer) *Filterer {
	return &Filterer{
		scorer: scorer,
		caser:  cases.Fold(),
	}
}

// ByMinQuality keeps signals whose recomputed overall quality meets min.
func (f *Filterer) ByMinQuality(signals []signal.Signal, min float64) []signal.Signal {
	return keep(signals, func(s signal.Signal) bool {
		return f.scorer.Score(s).Overall >= min
	})
}

// BySources keeps signals whose source appears in the allow-list.
// An empty allow-list keeps nothing: it is an explicit list, not a wildcard.
func (f *Filterer) BySources(signals []signal.Signal, sources []signal.Source) []signal.Signal {
	allowed := make(map[signal.Source]struct{}, len(sources))
	for _, s := range sources {
		allowed[s] = struct{}{}
	}

	return keep(signals, func(s signal.Signal) bool {
		_, ok := allowed[s.Source]

		return ok
	})
}

// ByDateRange keeps signals captured within [from, to], inclusive.
func (f *Filterer) ByDateRange(signals []signal.Signal, from, to time.Time) []signal.Signal {
	return keep(signals, func(s signal.Signal) bool {
		return !s.CapturedAt.Before(from) && !s.CapturedAt.After(to)
	})
}

// ByKeywords keeps signals whose case-folded content matches the
// keywords under the given mode. An empty keyword list keeps everything.
func (f *Filterer) ByKeywords(signals []signal.Signal, keywords []string, mode KeywordMode) []signal.Signal {
	if len(keywords) == 0 {
		return keep(signals, func(signal.Signal) bool { return true })
	}

	folded := make([]string, len(keywords))
	for i, kw := range keywords {
		folded[i] = f.caser.String(kw)
	}

	return keep(signals, func(s signal.Signal) bool {
		content := f.caser.String(s.Content)

		if mode == MatchAll {
			for _, kw := range folded {
				if !strings.Contains(content, kw) {
					return false
				}
			}

			return true
		}

		for _, kw := range folded {
			if strings.Contains(content, kw) {
				return true
			}
		}

		return false
	})
}

// Apply runs the composite filter. Unset criteria fields are skipped;
// set ones apply in the fixed order quality, source, date range, keywords.
func (f *Filterer) Apply(signals []signal.Signal, c Criteria) []signal.Signal {
	result := signals

	if c.MinQuality > 0 {
		result = f.ByMinQuality(result, c.MinQuality)
	}

	if len(c.Sources) > 0 {
		result = f.BySources(result, c.Sources)
	}

	if !c.From.IsZero() || !c.To.IsZero() {
		from := c.From
		to := c.To

		if to.IsZero() {
			// Open-ended upper bound.
			to = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
		}

		result = f.ByDateRange(result, from, to)
	}

	if len(c.Keywords) > 0 {
		result = f.ByKeywords(result, c.Keywords, c.Mode)
	}

	return result
}

func keep(signals []signal.Signal, pred func(signal.Signal) bool) []signal.Signal {
	result := make([]signal.Signal, 0, len(signals))

	for _, s := range signals {
		if pred(s) {
			result = append(result, s)
		}
	}

	return result
}
