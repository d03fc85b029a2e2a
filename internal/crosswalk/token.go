// Package crosswalk builds a canonical OCC→SOC mapping from a messy
// workbook: it detects which sheet and columns hold the codes by cell
// content, normalizes the values, and resolves one-to-many mappings by
// policy.
package crosswalk

import (
	"regexp"
	"strings"
)

// delimRe matches the separators used for multi-value cells: the usual
// punctuation plus the word "and" between spaces.
var delimRe = regexp.MustCompile(`(?i)[;,/|&]|\s+and\s+`)

// SplitTokens splits a raw cell value into trimmed tokens. A blank cell
// yields nil; a cell without delimiters yields a single token.
func SplitTokens(value string) []string {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	parts := delimRe.Split(s, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
