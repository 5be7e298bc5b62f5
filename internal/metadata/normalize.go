// SPDX-License-Identifier: MIT

package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrNormalization is wrapped by all normalization failures.
var ErrNormalization = errors.New("metadata normalization failed")

// Normalize converts raw provider metadata into the canonical model and
// derives alias indices and per-episode session tokens. Normalizing an
// already-normalized payload yields the same result.
func Normalize(id string, raw *RawShow, injectedSessionAliases map[string][]string) (*Show, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrNormalization)
	}
	if raw.Show == "" {
		return nil, fmt.Errorf("%w: show has no title", ErrNormalization)
	}

	show := &Show{
		ID:           id,
		Title:        TitleCase(raw.Show),
		DisplayTitle: raw.Show,
		Aliases:      foldAliases(raw.Aliases),
	}

	seasons := append([]RawSeason(nil), raw.Seasons...)
	sort.SliceStable(seasons, func(i, j int) bool { return seasons[i].Number < seasons[j].Number })

	for _, rs := range seasons {
		if rs.Number < 0 {
			return nil, fmt.Errorf("%w: season %q has negative number %d", ErrNormalization, rs.Title, rs.Number)
		}
		season := Season{
			Key:         rs.Key,
			Number:      rs.Number,
			Title:       TitleCase(rs.Title),
			RoundNumber: rs.Round,
			Year:        rs.Year,
			Aliases:     foldAliases(rs.Aliases),
		}
		if season.Key == "" {
			season.Key = fmt.Sprintf("%d", rs.Number)
		}
		if season.RoundNumber == 0 {
			season.RoundNumber = rs.Number
		}

		episodes := append([]RawEpisode(nil), rs.Episodes...)
		sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })

		seen := make(map[int]bool, len(episodes))
		for idx, re := range episodes {
			number := idx + 1
			if seen[number] {
				return nil, fmt.Errorf("%w: season %d has duplicate episode number %d",
					ErrNormalization, rs.Number, number)
			}
			seen[number] = true

			ep := Episode{
				Number:              number,
				DisplayNumber:       re.Number,
				Title:               re.Title,
				Summary:             re.Summary,
				OriginallyAvailable: re.OriginallyAvailable,
				Aliases:             foldAliases(re.Aliases),
			}
			if ep.DisplayNumber == 0 {
				ep.DisplayNumber = number
			}
			ep.SessionTokens = sessionTokens(ep, injectedSessionAliases)
			season.Episodes = append(season.Episodes, ep)
		}
		show.Seasons = append(show.Seasons, season)
	}
	return show, nil
}

// sessionTokens unions the episode title, its aliases, and any injected
// session aliases whose canonical name matches the title, all case-folded.
func sessionTokens(ep Episode, injected map[string][]string) []string {
	set := make(map[string]bool)
	add := func(s string) {
		folded := strings.ToLower(strings.TrimSpace(s))
		if folded != "" {
			set[folded] = true
		}
	}
	add(ep.Title)
	for _, alias := range ep.Aliases {
		add(alias)
	}
	for canonical, aliases := range injected {
		if !strings.EqualFold(canonical, ep.Title) {
			continue
		}
		add(canonical)
		for _, alias := range aliases {
			add(alias)
		}
	}
	tokens := make([]string, 0, len(set))
	for token := range set {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// foldAliases case-folds and deduplicates alias lists, preserving first-seen
// order of the folded forms.
func foldAliases(aliases []string) []string {
	if len(aliases) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		folded := strings.ToLower(strings.TrimSpace(alias))
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, folded)
	}
	return out
}

// TitleCase capitalizes lower-case words while leaving tokens that are fully
// upper-case in the source untouched, so acronyms like "NTT" or "NHL" keep
// their casing. Applying it twice is a no-op.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word == strings.ToUpper(word) {
			continue // acronym or symbol, leave as-is
		}
		runes := []rune(word)
		if unicode.IsLower(runes[0]) {
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		}
	}
	return strings.Join(words, " ")
}
