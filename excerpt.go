package main

import (
	"strings"
	"unicode"
)

const ellipsis = "..."

// makeExcerpt collapses whitespace in text and truncates it to at most limit
// runes on a word boundary, appending "..." when anything was cut. A word is
// only split when the text has no space within the limit.
func makeExcerpt(text string, limit int) string {
	t := []rune(collapseSpace(text))
	if len(t) <= limit {
		return string(t)
	}
	// The rune after the cut is whitespace: the last word is whole.
	if unicode.IsSpace(t[limit]) {
		return string(t[:limit]) + ellipsis
	}
	head := string(t[:limit])
	if i := strings.LastIndexByte(head, ' '); i > 0 {
		head = head[:i]
	}
	return head + ellipsis
}
