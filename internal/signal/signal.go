// Package signal defines the domain model shared by the harvesting,
// deduplication, and scoring layers.
//
// A Signal is one unit of harvested text content plus source-specific
// metadata. Signals are produced by the harvest collaborators and treated
// as immutable by the core: factual fields are never rewritten, the core
// only attaches a derived quality score.
package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Source identifies the platform a signal was harvested from.
// The set is closed: engagement scoring dispatches over it with an
// explicit default arm for anything unrecognized.
type Source string

const (
	SourceSocialPost     Source = "social-post"
	SourceCodeForge      Source = "code-forge"
	SourceQASite         Source = "qa-site"
	SourceNewsAggregator Source = "news-aggregator"
	SourceLinkAggregator Source = "link-aggregator"
)

// KnownSources lists every source the engagement scorer has a formula for,
// in a stable order.
func KnownSources() []Source {
	return []Source{
		SourceSocialPost,
		SourceCodeForge,
		SourceQASite,
		SourceNewsAggregator,
		SourceLinkAggregator,
	}
}

// Signal is one harvested text record.
type Signal struct {
	ID         string
	Source     Source
	Content    string
	Author     string
	URL        string
	CapturedAt time.Time

	// Metadata holds open-ended source-specific fields such as engagement
	// counts, reaction breakdowns, or points.
	Metadata map[string]any

	Sentiment string
	Tags      []string

	// Quality is attached by the quality scorer during deduplication.
	// Nil until scored.
	Quality *QualityScore
}

// QualityScore is the composite quality of one signal plus its factor
// breakdown. All values lie in [0,1]. Scores are recomputed fresh on
// every call and never cached by the core.
type QualityScore struct {
	Overall    float64
	Length     float64
	Metadata   float64
	Engagement float64
	Recency    float64
	Authority  float64
}

// DuplicateGroup is a set of signals judged to represent the same
// underlying content. Canonical is always a member of Members. Groups
// exist only for the duration of one deduplication call.
type DuplicateGroup struct {
	Canonical Signal
	Members   []Signal
}

// DeduplicationStats summarizes one deduplication run.
type DeduplicationStats struct {
	InputCount        int
	OutputCount       int
	DuplicatesRemoved int
	// DedupRate is the share of input removed as duplicates, in percent.
	DedupRate float64
}

// DeduplicationResult is the output of one deduplication run.
//
// Canonical holds exactly one signal per group, including singleton
// groups. Duplicates maps a canonical signal's ID to the full membership
// of its group and contains only groups of size two or more.
type DeduplicationResult struct {
	Canonical  []Signal
	Duplicates map[string][]Signal
	Stats      DeduplicationStats
}

// NormalizeContent lower-cases content, trims it, and collapses runs of
// whitespace to single spaces. Two signals with equal normalized content
// are exact duplicates.
func NormalizeContent(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

// CanonicalHash returns the hex sha256 of the normalized content. Used as
// the exact-duplicate grouping key and as the idempotency key in storage.
func CanonicalHash(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])
}

// MetadataNumber reads a numeric metadata field, tolerating the integer
// and float shapes JSON decoding produces.
func MetadataNumber(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}

	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
