// Package htmlutils extracts plain text from the HTML fragments that
// feed items and API payloads carry.
package htmlutils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// skippedElements hold no user-visible text.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"iframe":   {},
}

// StripTags parses the fragment and returns its text content with
// whitespace collapsed. Malformed HTML never fails: the tokenizer
// recovers where it can and the remainder is treated as text.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseWhitespace(fragment)
	}

	var sb strings.Builder

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if _, skip := skippedElements[string(name)]; skip {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if _, skip := skippedElements[string(name)]; skip && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

// Truncate cuts text to at most maxChars runes, breaking at the last
// word boundary when one exists.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxChars])

	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimRight(cut, " ")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
