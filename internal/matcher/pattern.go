// SPDX-License-Identifier: MIT

// Package matcher selects (season, episode) for release filenames using
// declarative pattern rules with structured and fuzzy fallbacks.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/metadata"
)

// ErrPatternCompile marks rules that cannot be turned into a matcher.
var ErrPatternCompile = errors.New("pattern compile failed")

// GenericSessionAliases are the session synonyms injected for every sport
// on top of per-rule session_aliases.
var GenericSessionAliases = map[string][]string{
	"Race":       {"race", "grand prix", "gp", "feature race"},
	"Sprint":     {"sprint", "sprint race"},
	"Qualifying": {"qualifying", "quali", "qualy", "qualification"},
	"Sprint Qualifying": {"sprint qualifying", "sprint shootout", "shootout"},
	"Practice 1": {"fp1", "practice 1", "free practice 1", "practice one"},
	"Practice 2": {"fp2", "practice 2", "free practice 2", "practice two"},
	"Practice 3": {"fp3", "practice 3", "free practice 3", "practice three"},
	"Warm Up":    {"warm up", "warmup"},
	"Highlights": {"highlights", "extended highlights"},
	"Pre-Race":   {"pre race", "prerace", "pre race show"},
	"Post-Race":  {"post race", "postrace", "post race show"},
}

// CompiledPattern is an executable matching rule. Immutable after
// compilation.
type CompiledPattern struct {
	Rule     config.PatternRule
	ID       string
	Regex    *regexp.Regexp
	Sessions *SessionLookupIndex
}

// CompilePatterns turns a sport's rules into executable patterns, sorted
// ascending by priority (lower wins). Selector group references are checked
// against the regex's named groups.
func CompilePatterns(sport *config.Sport, show *metadata.Show) ([]*CompiledPattern, error) {
	patterns := make([]*CompiledPattern, 0, len(sport.Patterns))
	for i, rule := range sport.Patterns {
		compiled, err := compileRule(sport.ID, i, rule, show)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, compiled)
	}
	sort.SliceStable(patterns, func(a, b int) bool {
		return patterns[a].Rule.Priority < patterns[b].Rule.Priority
	})
	return patterns, nil
}

func compileRule(sportID string, index int, rule config.PatternRule, show *metadata.Show) (*CompiledPattern, error) {
	expr := rule.Regex
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: sport %s rule %d: %v", ErrPatternCompile, sportID, index, err)
	}

	groups := make(map[string]bool)
	for _, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = true
		}
	}
	if g := rule.SeasonSelector.Group; g != "" && !groups[g] {
		return nil, fmt.Errorf("%w: sport %s rule %d: season selector references missing group %q",
			ErrPatternCompile, sportID, index, g)
	}
	// Matchup rules resolve the episode from teams and date, so a missing
	// session group is fine there.
	if g := rule.EpisodeSelector.Group; g != "" && !groups[g] &&
		rule.EpisodeSelector.DefaultValue == "" && !rule.FallbackMatchupSeason &&
		rule.SeasonSelector.Mode != config.SeasonByDate && rule.SeasonSelector.Mode != config.SeasonByWeek {
		return nil, fmt.Errorf("%w: sport %s rule %d: episode selector references missing group %q",
			ErrPatternCompile, sportID, index, g)
	}
	if rule.SeasonSelector.Mode == config.SeasonByDate && rule.SeasonSelector.ValueTemplate == "" {
		return nil, fmt.Errorf("%w: sport %s rule %d: date selector requires value_template",
			ErrPatternCompile, sportID, index)
	}
	for _, name := range templateGroupRefs(rule.SeasonSelector.ValueTemplate) {
		if !groups[name] {
			return nil, fmt.Errorf("%w: sport %s rule %d: value_template references missing group %q",
				ErrPatternCompile, sportID, index, name)
		}
	}

	id := rule.Description
	if id == "" {
		id = fmt.Sprintf("%s/pattern-%d", sportID, index)
	}

	return &CompiledPattern{
		Rule:     rule,
		ID:       id,
		Regex:    re,
		Sessions: buildSessionIndex(show, rule.SessionAliases),
	}, nil
}

// buildSessionIndex indexes every session token the sport's metadata knows
// about, plus rule-level and generic aliases. Canonical values are the
// episode titles the tokens resolve to.
func buildSessionIndex(show *metadata.Show, ruleAliases map[string][]string) *SessionLookupIndex {
	index := NewSessionLookupIndex()
	if show != nil {
		for _, season := range show.Seasons {
			for _, ep := range season.Episodes {
				index.Add(ep.Title, ep.Title)
				for _, token := range ep.SessionTokens {
					index.Add(token, ep.Title)
				}
			}
		}
	}
	addAliases := func(aliases map[string][]string) {
		for canonical, tokens := range aliases {
			index.Add(canonical, canonical)
			for _, token := range tokens {
				index.Add(token, canonical)
			}
		}
	}
	addAliases(GenericSessionAliases)
	addAliases(ruleAliases)
	return index
}

var templateRefPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?::(0?\d+))?\}`)

// templateGroupRefs lists the group names a value_template references.
func templateGroupRefs(template string) []string {
	var names []string
	for _, m := range templateRefPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}
