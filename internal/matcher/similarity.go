// SPDX-License-Identifier: MIT

package matcher

import "strings"

// similarityThreshold is the minimum token similarity accepted by fuzzy
// session and location matching.
const similarityThreshold = 0.85

// NormalizeToken lowercases a token and strips everything that is not a
// letter or digit, so "Practice 1", "practice.1", and "PRACTICE-1" all
// normalize to "practice1".
func NormalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TokensClose reports whether two normalized tokens are close enough to be
// treated as the same session or location. Requirements: both at least four
// characters, length difference at most one, identical first character, and
// either a single adjacent transposition or similarity at or above the
// threshold.
func TokensClose(a, b string) bool {
	if a == b {
		return a != ""
	}
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	diff := len(a) - len(b)
	if diff < -1 || diff > 1 {
		return false
	}
	if a[0] != b[0] {
		return false
	}
	if isTransposition(a, b) {
		return true
	}
	return TokenSimilarity(a, b) >= similarityThreshold
}

// TokenSimilarity returns 1 - editDistance/maxLen in [0, 1].
func TokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

// isTransposition reports whether b is a with exactly one pair of adjacent
// characters swapped.
func isTransposition(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) || a[i] != b[i+1] || a[i+1] != b[i] {
		return false
	}
	return a[i+2:] == b[i+2:]
}

// editDistance is the Levenshtein distance over bytes (tokens are already
// normalized to ASCII).
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
