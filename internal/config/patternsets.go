// SPDX-License-Identifier: MIT

package config

import "fmt"

// Built-in pattern sets cover the common release-naming shapes so most sports
// need no hand-written regexes. Sports reference them by name via
// pattern_sets and may layer file_patterns on top.
var builtinPatternSets = map[string][]PatternRule{
	// Motorsport releases named by round and session, e.g.
	// "Formula.1.2025.Round05.Monaco.Race.mkv".
	"motorsport_round": {
		{
			Regex:       `(?i)(?P<year>\d{4})[ ._-]*(?:round|rd|r)[ ._]?(?P<round>\d{1,2})[ ._-]+(?:(?P<location>[a-z ._-]+?)[ ._-]+)?(?P<session>[a-z0-9 ._-]+?)\.(?:mkv|mp4|ts|m4v|avi)$`,
			Description: "Round-numbered motorsport release",
			Priority:    50,
			SeasonSelector: SeasonSelector{
				Mode:  SeasonByRound,
				Group: "round",
			},
			EpisodeSelector: EpisodeSelector{
				Group:              "session",
				AllowTitleFallback: true,
			},
		},
	},

	// Two-team matchups with a trailing partial date, e.g.
	// "NBA RS 2025 Indiana Pacers vs Boston Celtics 22 12.mkv".
	"matchup_date": {
		{
			Regex:       `(?i)(?P<competition>[a-z0-9]+)[ ._](?:(?P<stage>rs|po|fin)[ ._])?(?P<year>\d{4})[ ._](?P<away>[a-z0-9 .]+?)[ ._](?P<separator>vs|at|@)[ ._](?P<home>[a-z0-9 .]+?)[ ._](?P<day>\d{1,2})[ ._](?P<month>\d{1,2})\.(?:mkv|mp4|ts|m4v|avi)$`,
			Description: "Team matchup with trailing day/month",
			Priority:    60,
			SeasonSelector: SeasonSelector{
				Mode:  SeasonBySequential,
				Group: "",
			},
			EpisodeSelector: EpisodeSelector{
				Group:              "session",
				AllowTitleFallback: true,
			},
			FallbackMatchupSeason: true,
		},
	},

	// ISO-dated releases, e.g. "NHL-2025-11-22_NJD@PHI.mkv".
	"calendar_date": {
		{
			Regex:       `(?i)(?P<competition>[a-z0-9]+)[ ._-](?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})[ ._-](?P<away>[a-z0-9 .]+?)(?P<separator>vs|at|@)(?P<home>[a-z0-9 .]+?)\.(?:mkv|mp4|ts|m4v|avi)$`,
			Description: "Calendar-dated matchup",
			Priority:    40,
			SeasonSelector: SeasonSelector{
				Mode:          SeasonByDate,
				ValueTemplate: "{year}-{month:02}-{day:02}",
			},
			EpisodeSelector: EpisodeSelector{
				Group:              "session",
				AllowTitleFallback: true,
			},
			FallbackMatchupSeason: true,
		},
	},

	// Weekly league releases, e.g. "NFL.2025.Week04.Packers.at.Bears.mkv".
	"weekly": {
		{
			Regex:       `(?i)(?P<competition>[a-z0-9]+)[ ._](?P<year>\d{4})[ ._](?:week|wk)[ ._]?(?P<week>\d{1,2})[ ._](?P<session>[a-z0-9 ._@]+?)\.(?:mkv|mp4|ts|m4v|avi)$`,
			Description: "Week-numbered league release",
			Priority:    55,
			SeasonSelector: SeasonSelector{
				Mode:  SeasonByWeek,
				Group: "week",
			},
			EpisodeSelector: EpisodeSelector{
				Group:              "session",
				AllowTitleFallback: true,
			},
		},
	},
}

// ExpandPatternSets resolves pattern set names into their rules, in order.
func ExpandPatternSets(names []string) ([]PatternRule, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rules []PatternRule
	for _, name := range names {
		set, ok := builtinPatternSets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPatternSet, name)
		}
		rules = append(rules, set...)
	}
	return rules, nil
}

// PatternSetNames lists the available built-in sets (for validate-config).
func PatternSetNames() []string {
	names := make([]string, 0, len(builtinPatternSets))
	for name := range builtinPatternSets {
		names = append(names, name)
	}
	return names
}
