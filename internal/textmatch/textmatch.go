// Package textmatch decides whether a free-text answer is close enough to
// the expected one, tolerating typos proportional to the answer length.
package textmatch

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Tolerance is the share of the expected answer's length that may differ.
const Tolerance = 0.3

// Distance returns the Levenshtein edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// maxEdits is floor(len(expected) * Tolerance).
func maxEdits(expected string) int {
	return int(float64(utf8.RuneCountInString(expected)) * Tolerance)
}

// IsAcceptable reports whether answer matches expected within the allowed
// number of edits. Comparison is case-insensitive and ignores surrounding space.
func IsAcceptable(answer, expected string) bool {
	a, e := normalize(answer), normalize(expected)
	return levenshtein.ComputeDistance(a, e) <= maxEdits(e)
}

// Variants splits a comma-separated list into normalized, non-empty terms.
func Variants(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AnyAcceptable compares a comma-separated answer against a comma-separated
// canonical definition. Every term the user typed must match at least one
// canonical variant; the user does not have to name all of them.
func AnyAcceptable(canonical, answer string) bool {
	want := Variants(canonical)
	got := Variants(answer)
	if len(got) == 0 || len(want) == 0 {
		return false
	}

	for _, g := range got {
		matched := false
		for _, w := range want {
			if levenshtein.ComputeDistance(g, w) <= maxEdits(w) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
