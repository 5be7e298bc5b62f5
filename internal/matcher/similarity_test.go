// SPDX-License-Identifier: MIT

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Practice 1", "practice1"},
		{"practice.1", "practice1"},
		{"PRACTICE-1", "practice1"},
		{"Qualifying", "qualifying"},
		{"  ", ""},
		{"St. Louis Blues", "stlouisblues"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeToken(tt.in), "input %q", tt.in)
	}
}

func TestTokensClose(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"qualifying", "qualifying", true},
		{"qualifying", "qualifyng", true},   // one deletion
		{"qualifying", "quailfying", true},  // adjacent transposition
		{"race", "rcae", true},              // transposition at minimum length
		{"race", "pace", false},             // first char differs
		{"fp1", "fp2", false},               // too short
		{"monaco", "austria", false},
		{"qualifying", "practice", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TokensClose(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSessionLookupIndexDirect(t *testing.T) {
	index := NewSessionLookupIndex()
	index.Add("FP1", "Practice 1")
	index.Add("quali", "Qualifying")

	canonical, ok := index.GetDirect("fp1")
	assert.True(t, ok)
	assert.Equal(t, "Practice 1", canonical)

	_, ok = index.GetDirect("fp9")
	assert.False(t, ok)
}

// GetCandidates must return a superset of every token that would pass
// TokensClose against the query.
func TestSessionLookupIndexCandidateSuperset(t *testing.T) {
	tokens := []string{
		"qualifying", "qualifyng", "practice1", "practice2", "race",
		"sprint", "sprintrace", "warmup", "highlights", "prerace",
	}
	index := NewSessionLookupIndex()
	for _, token := range tokens {
		index.Add(token, token)
	}

	queries := append([]string{"qualifing", "sprnt", "practise1", "rase"}, tokens...)
	for _, query := range queries {
		candidates := make(map[string]bool)
		for _, c := range index.GetCandidates(query) {
			candidates[c] = true
		}
		for _, token := range tokens {
			if TokensClose(NormalizeToken(query), token) {
				assert.True(t, candidates[token],
					"candidates for %q must include close token %q", query, token)
			}
		}
	}
}

func TestStripNoise(t *testing.T) {
	assert.Equal(t, "Formula 1 Monaco Race",
		StripNoise("Formula 1 Monaco Race 1080p WEB x264 SkySports"))
	assert.Equal(t, "", StripNoise("2160p HEVC"))
}
