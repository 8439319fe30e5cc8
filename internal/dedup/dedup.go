// Package dedup clusters near-duplicate signals and selects one canonical
// representative per cluster.
//
// Deduplication runs three sequential passes, each only over signals not
// yet grouped by an earlier pass:
//
//  1. Exact: group by sha256 of normalized content. O(N).
//  2. High similarity: greedy single-linkage at a fixed 0.90 combined
//     similarity, catching close paraphrases.
//  3. Medium similarity: the same algorithm at the configured threshold.
//
// The similarity passes are quadratic in the size of the set remaining at
// that point, not the full batch; the exact pass typically removes a large
// share first. Grouping is greedy single-linkage seeded in input order: a
// signal joins a group if it is similar enough to the seed, not to every
// member. This is order-dependent in adversarial chains (A~B, B~C, A≁C),
// which is an accepted property of the algorithm, and it is what makes
// results deterministic for a given input order.
package dedup

import (
	"fmt"

	"github.com/pulsesift/pulsesift/internal/quality"
	"github.com/pulsesift/pulsesift/internal/signal"
	"github.com/pulsesift/pulsesift/internal/similarity"
)

const (
	// DefaultThreshold is the medium-pass similarity threshold.
	DefaultThreshold = 0.85

	// highPassThreshold is fixed in this version; extension point for
	// future configurability.
	highPassThreshold = 0.90
)

// ErrInvalidThreshold is returned by New for thresholds outside (0,1].
var ErrInvalidThreshold = fmt.Errorf("similarity threshold must be in (0,1]")

// Deduplicator clusters a batch of signals. It holds no state across
// calls: every invocation is a pure function of its input and the
// threshold, so concurrent calls over disjoint batches are safe.
type Deduplicator struct {
	scorer    *quality.Scorer
	threshold float64
}

// New creates a Deduplicator with the given medium-pass threshold.
func New(scorer *quality.Scorer, threshold float64) (*Deduplicator, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}

	return &Deduplicator{scorer: scorer, threshold: threshold}, nil
}

// Deduplicate clusters the batch into duplicate groups and picks the
// highest-quality member of each as canonical. Every input signal lands
// in exactly one group; the duplicates map holds only groups of size two
// or more, keyed by canonical signal ID.
func (d *Deduplicator) Deduplicate(signals []signal.Signal) signal.DeduplicationResult {
	if len(signals) == 0 {
		return signal.DeduplicationResult{
			Duplicates: map[string][]signal.Signal{},
		}
	}

	grouped := make([]bool, len(signals))

	groups := d.exactPass(signals, grouped)
	groups = append(groups, d.similarityPass(signals, grouped, highPassThreshold, false)...)
	groups = append(groups, d.similarityPass(signals, grouped, d.threshold, true)...)

	return d.buildResult(signals, groups)
}

// exactPass groups signals whose normalized content hashes collide.
// Only groups of size >= 2 are finalized; unique signals stay available
// for the similarity passes.
func (d *Deduplicator) exactPass(signals []signal.Signal, grouped []bool) [][]int {
	byHash := make(map[string][]int, len(signals))
	order := make([]string, 0, len(signals))

	for i, sig := range signals {
		hash := signal.CanonicalHash(sig.Content)
		if _, seen := byHash[hash]; !seen {
			order = append(order, hash)
		}

		byHash[hash] = append(byHash[hash], i)
	}

	var groups [][]int

	for _, hash := range order {
		members := byHash[hash]
		if len(members) < 2 {
			continue
		}

		for _, idx := range members {
			grouped[idx] = true
		}

		groups = append(groups, members)
	}

	return groups
}

// similarityPass runs greedy single-linkage clustering over the not yet
// grouped signals. Each ungrouped signal, in input order, seeds a group
// and absorbs every later ungrouped signal whose combined similarity to
// the seed meets the threshold. When keepSingletons is false, seeds that
// absorbed nothing remain ungrouped for the next pass.
func (d *Deduplicator) similarityPass(signals []signal.Signal, grouped []bool, threshold float64, keepSingletons bool) [][]int {
	var groups [][]int

	for i := range signals {
		if grouped[i] {
			continue
		}

		members := []int{i}

		for j := i + 1; j < len(signals); j++ {
			if grouped[j] {
				continue
			}

			if similarity.Combined(signals[i].Content, signals[j].Content) >= threshold {
				members = append(members, j)
				grouped[j] = true
			}
		}

		if len(members) < 2 && !keepSingletons {
			continue
		}

		for _, idx := range members {
			grouped[idx] = true
		}

		groups = append(groups, members)
	}

	return groups
}

// buildResult selects canonicals and assembles the output. The canonical
// copy carries its computed quality score; member order inside each group
// follows input order.
func (d *Deduplicator) buildResult(signals []signal.Signal, groups [][]int) signal.DeduplicationResult {
	result := signal.DeduplicationResult{
		Canonical:  make([]signal.Signal, 0, len(groups)),
		Duplicates: make(map[string][]signal.Signal),
	}

	for _, members := range groups {
		group := signal.DuplicateGroup{
			Canonical: d.selectCanonical(signals, members),
			Members:   make([]signal.Signal, len(members)),
		}
		for i, idx := range members {
			group.Members[i] = signals[idx]
		}

		result.Canonical = append(result.Canonical, group.Canonical)

		if len(group.Members) >= 2 {
			result.Duplicates[group.Canonical.ID] = group.Members
		}
	}

	input := len(signals)
	output := len(result.Canonical)

	result.Stats = signal.DeduplicationStats{
		InputCount:        input,
		OutputCount:       output,
		DuplicatesRemoved: input - output,
		DedupRate:         float64(input-output) / float64(input) * 100,
	}

	return result
}

// selectCanonical returns the highest-quality member with its score
// attached. Ties keep the first-encountered maximum, so selection is
// stable across runs.
func (d *Deduplicator) selectCanonical(signals []signal.Signal, members []int) signal.Signal {
	best := signals[members[0]]
	bestScore := d.scorer.Score(best)

	for _, idx := range members[1:] {
		score := d.scorer.Score(signals[idx])
		if score.Overall > bestScore.Overall {
			best = signals[idx]
			bestScore = score
		}
	}

	best.Quality = &bestScore

	return best
}
