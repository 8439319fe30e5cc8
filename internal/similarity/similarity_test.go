package similarity

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical texts",
			a:    "the new api is great",
			b:    "the new api is great",
			want: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 0.0,
		},
		{
			name: "one empty",
			a:    "hello world",
			b:    "",
			want: 0.0,
		},
		{
			name: "disjoint vocabularies",
			a:    "alpha beta",
			b:    "gamma delta",
			want: 0.0,
		},
		{
			name: "case insensitive",
			a:    "Hello World",
			b:    "hello world",
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosinePartialOverlap(t *testing.T) {
	got := Cosine("the api is great", "the api is terrible")
	if got <= 0 || got >= 1 {
		t.Fatalf("Cosine() = %v, want value strictly between 0 and 1", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical word sets",
			a:    "great new api",
			b:    "api new great",
			want: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "one empty",
			a:    "hello",
			b:    "",
			want: 0.0,
		},
		{
			name: "half overlap",
			a:    "alpha beta",
			b:    "alpha gamma",
			want: 1.0 / 3.0,
		},
		{
			name: "disjoint",
			a:    "alpha beta",
			b:    "gamma delta",
			want: 0.0,
		},
		{
			name: "repeated words count once",
			a:    "go go go",
			b:    "go",
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "kitten",
			b:    "kitten",
			want: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "one empty",
			a:    "abc",
			b:    "",
			want: 0.0,
		},
		{
			name: "classic kitten sitting",
			a:    "kitten",
			b:    "sitting",
			want: 1.0 - 3.0/7.0,
		},
		{
			name: "single substitution",
			a:    "cat",
			b:    "bat",
			want: 1.0 - 1.0/3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levenshtein(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Levenshtein() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSymmetryAndBounds(t *testing.T) {
	pairs := [][2]string{
		{"the new api is great", "the api is really great"},
		{"database scaling problems", "the new api is great"},
		{"", "something"},
		{"one two three", "three two one"},
		{"a", "a b c d e f g"},
	}

	metrics := map[string]func(string, string) float64{
		"cosine":      Cosine,
		"jaccard":     Jaccard,
		"levenshtein": Levenshtein,
		"combined":    Combined,
	}

	for name, fn := range metrics {
		for _, p := range pairs {
			ab := fn(p[0], p[1])
			ba := fn(p[1], p[0])

			if math.Abs(ab-ba) > epsilon {
				t.Errorf("%s(%q, %q) = %v but reversed = %v", name, p[0], p[1], ab, ba)
			}

			if ab < 0 || ab > 1+epsilon {
				t.Errorf("%s(%q, %q) = %v, out of [0,1]", name, p[0], p[1], ab)
			}
		}
	}
}

func TestCombinedSelfSimilarity(t *testing.T) {
	if got := Combined("the new api is great", "the new api is great"); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Combined(a, a) = %v, want 1.0", got)
	}
}

func TestCombinedIsWeightedBlend(t *testing.T) {
	a := "the new api is great"
	b := "the api is really great"

	want := 0.7*Cosine(a, b) + 0.3*Jaccard(a, b)
	if got := Combined(a, b); math.Abs(got-want) > epsilon {
		t.Errorf("Combined() = %v, want %v", got, want)
	}
}

func TestCombinedFavorsReorderingOverLevenshtein(t *testing.T) {
	// Word reordering should barely affect the combined metric while
	// heavily degrading edit distance.
	a := "breaking news about the framework release"
	b := "the framework release news about breaking"

	if combined := Combined(a, b); combined < 0.9 {
		t.Errorf("Combined() = %v, want >= 0.9 for reordered words", combined)
	}

	if lev := Levenshtein(a, b); lev > 0.7 {
		t.Errorf("Levenshtein() = %v, expected reordering to degrade it below 0.7", lev)
	}
}
