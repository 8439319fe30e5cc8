package htmlutils

import (
	"testing"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Hello World",
			expected: "Hello World",
		},
		{
			name:     "simple tags removed",
			input:    "<p>Hello <b>World</b></p>",
			expected: "Hello World",
		},
		{
			name:     "scripts dropped entirely",
			input:    "<p>visible</p><script>var hidden = 1;</script><p>also visible</p>",
			expected: "visible also visible",
		},
		{
			name:     "styles dropped entirely",
			input:    "<style>.a { color: red }</style>text",
			expected: "text",
		},
		{
			name:     "entities decoded",
			input:    "a &amp; b",
			expected: "a & b",
		},
		{
			name:     "whitespace collapsed",
			input:    "<div>\n  first\n\n  second  </div>",
			expected: "first second",
		},
		{
			name:     "unclosed tag tolerated",
			input:    "<p>dangling <b>bold",
			expected: "dangling bold",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.input); got != tt.expected {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "short",
			max:      10,
			expected: "short",
		},
		{
			name:     "cuts at word boundary",
			input:    "the quick brown fox jumps",
			max:      12,
			expected: "the quick",
		},
		{
			name:     "single long word hard cut",
			input:    "abcdefghijklmnop",
			max:      5,
			expected: "abcde",
		},
		{
			name:     "zero limit keeps text",
			input:    "anything",
			max:      0,
			expected: "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.max); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
