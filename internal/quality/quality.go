// Package quality computes composite quality scores for signals.
//
// The overall score is a weighted blend of five independent factors:
// content length, metadata richness, source-specific engagement, recency,
// and author authority. Each factor formula bounds its own output to
// [0,1]; there is no central clamp, so any new factor must bound itself.
// Scores are recomputed fresh on every call and never cached here.
package quality

import (
	"time"

	"github.com/pulsesift/pulsesift/internal/signal"
)

const (
	lengthWeight     = 0.2
	metadataWeight   = 0.15
	engagementWeight = 0.30
	recencyWeight    = 0.15
	authorityWeight  = 0.20

	// neutralEngagement is used when a source is unrecognized or the
	// engagement field is absent.
	neutralEngagement = 0.5

	metadataFieldCap = 10.0

	qaPointsScale   = 100.0
	linkPointsScale = 50.0
	socialLikeScale = 50.0
	reactionScale   = 20.0
)

// Scorer computes quality scores. The zero Scorer is not usable; call New.
type Scorer struct {
	now func() time.Time
}

// New returns a Scorer using the wall clock for recency.
func New() *Scorer {
	return &Scorer{now: time.Now}
}

// NewWithClock returns a Scorer with an injected clock, used in tests.
func NewWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the composite quality of one signal.
func (s *Scorer) Score(sig signal.Signal) signal.QualityScore {
	length := lengthScore(sig.Content)
	metadata := metadataScore(sig.Metadata)
	engagement := engagementScore(sig)
	recency := recencyScore(s.now().Sub(sig.CapturedAt))
	authority := authorityScore(sig.Author)

	return signal.QualityScore{
		Overall: lengthWeight*length +
			metadataWeight*metadata +
			engagementWeight*engagement +
			recencyWeight*recency +
			authorityWeight*authority,
		Length:     length,
		Metadata:   metadata,
		Engagement: engagement,
		Recency:    recency,
		Authority:  authority,
	}
}

// lengthScore bands character count. The 100-500 range is the sweet
// spot: long enough to carry substance, short enough to stay focused.
func lengthScore(content string) float64 {
	switch n := len(content); {
	case n < 50:
		return 0.2
	case n <= 100:
		return 0.6
	case n <= 500:
		return 1.0
	case n <= 2000:
		return 0.9
	default:
		return 0.8
	}
}

func metadataScore(metadata map[string]any) float64 {
	score := float64(len(metadata)) / metadataFieldCap
	if score > 1.0 {
		return 1.0
	}

	return score
}

// engagementScore normalizes source-specific engagement counts. Each
// source has its own field and scale; unknown sources and missing fields
// score neutral.
func engagementScore(sig signal.Signal) float64 {
	switch sig.Source {
	case signal.SourceQASite:
		return scaledMetadata(sig.Metadata, "points", qaPointsScale)
	case signal.SourceLinkAggregator:
		return scaledMetadata(sig.Metadata, "points", linkPointsScale)
	case signal.SourceSocialPost:
		return scaledMetadata(sig.Metadata, "likes", socialLikeScale)
	case signal.SourceCodeForge:
		reactions, ok := reactionTotal(sig.Metadata)
		if !ok {
			return neutralEngagement
		}

		return capUnit(reactions / reactionScale)
	case signal.SourceNewsAggregator:
		return neutralEngagement
	default:
		return neutralEngagement
	}
}

func scaledMetadata(metadata map[string]any, key string, scale float64) float64 {
	value, ok := signal.MetadataNumber(metadata, key)
	if !ok {
		return neutralEngagement
	}

	return capUnit(value / scale)
}

// reactionTotal reads code-forge reactions, accepting either a flat
// numeric "reactions" field or a per-emoji breakdown map that gets summed.
func reactionTotal(metadata map[string]any) (float64, bool) {
	if total, ok := signal.MetadataNumber(metadata, "reactions"); ok {
		return total, true
	}

	breakdown, ok := metadata["reactions"].(map[string]any)
	if !ok {
		return 0, false
	}

	var total float64

	for key := range breakdown {
		if v, ok := signal.MetadataNumber(breakdown, key); ok {
			total += v
		}
	}

	return total, true
}

func recencyScore(age time.Duration) float64 {
	switch days := age.Hours() / 24; {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	default:
		return 0.4
	}
}

// authorityScore is a placeholder heuristic: attributed content scores
// slightly above anonymous content. Extension point for real author
// reputation once sources expose it.
func authorityScore(author string) float64 {
	if author != "" {
		return 0.7
	}

	return 0.5
}

func capUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}

	if v < 0 {
		return 0
	}

	return v
}
