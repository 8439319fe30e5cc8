// Package similarity provides normalized text similarity metrics in [0,1].
//
// Three metrics are exposed: cosine similarity over per-pair TF-IDF
// vectors, Jaccard similarity over word sets, and normalized Levenshtein
// distance. The production metric used for deduplication is Combined,
// a fixed weighted blend of cosine and Jaccard. Levenshtein is exported
// as a utility but deliberately excluded from the blend: edit distance
// penalizes word reordering far more harshly than the other two, which
// hurts recall on paraphrased duplicates.
//
// Every metric is total: degenerate inputs (empty strings, disjoint
// vocabularies) resolve to a defined value, never an error.
package similarity

import (
	"math"
	"sort"
	"strings"
)

const (
	cosineWeight  = 0.7
	jaccardWeight = 0.3
)

// Combined is the default production similarity: 0.7·cosine + 0.3·jaccard.
func Combined(a, b string) float64 {
	return cosineWeight*Cosine(a, b) + jaccardWeight*Jaccard(a, b)
}

// Cosine computes cosine similarity between TF-IDF vectors built from a
// two-document corpus consisting of just the two inputs. IDF is computed
// relative only to this pair, which biases weight toward terms that are
// distinctive between these two texts rather than globally rare.
// Returns 0 if either vector has zero magnitude.
func Cosine(a, b string) float64 {
	termsA := termCounts(tokenize(a))
	termsB := termCounts(tokenize(b))

	vocab := vocabulary(termsA, termsB)
	if len(vocab) == 0 {
		return 0
	}

	var dot, normA, normB float64

	for _, term := range vocab {
		idf := pairIDF(termsA[term] > 0, termsB[term] > 0)
		wa := float64(termsA[term]) * idf
		wb := float64(termsB[term]) * idf

		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// pairIDF returns the smoothed inverse document frequency of a term in
// the two-document corpus: ln((1+N)/(1+df)) + 1 with N = 2.
func pairIDF(inA, inB bool) float64 {
	df := 0
	if inA {
		df++
	}

	if inB {
		df++
	}

	return math.Log(3.0/float64(1+df)) + 1
}

// Jaccard computes word-set similarity: intersection size over union
// size of the lower-cased, whitespace-tokenized word sets.
// Returns 1 when both sets are empty.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	intersection := 0

	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Levenshtein computes normalized edit-distance similarity:
// 1 − distance/max(len(a), len(b)) over runes.
// Returns 1 when both strings are empty.
func Levenshtein(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}

	distance := editDistance(ra, rb)
	longest := len(ra)

	if len(rb) > longest {
		longest = len(rb)
	}

	return 1.0 - float64(distance)/float64(longest)
}

// editDistance is the classic dynamic program, kept to two rows.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	return counts
}

// vocabulary returns the sorted union of both term sets. Sorting keeps
// floating-point accumulation order, and therefore results, deterministic.
func vocabulary(a, b map[string]int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for t := range a {
		seen[t] = struct{}{}
	}

	for t := range b {
		seen[t] = struct{}{}
	}

	vocab := make([]string, 0, len(seen))
	for t := range seen {
		vocab = append(vocab, t)
	}

	sort.Strings(vocab)

	return vocab
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(s) {
		set[w] = struct{}{}
	}

	return set
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}

	return m
}
