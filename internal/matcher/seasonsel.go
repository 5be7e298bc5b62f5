// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/metadata"
)

// selectSeason resolves the season a pattern match refers to. A nil season
// with a nil failure means the rule defers season choice to matchup
// resolution (fallback_matchup_season).
func selectSeason(show *metadata.Show, rule config.PatternRule, groups map[string]string) (*metadata.Season, *Failure) {
	sel := rule.SeasonSelector
	switch sel.Mode {
	case config.SeasonByRound:
		return seasonByRound(show, sel, groups)
	case config.SeasonByKey:
		return seasonByKey(show, sel, groups)
	case config.SeasonByTitle:
		return seasonByTitle(show, sel, groups)
	case config.SeasonByWeek:
		return seasonByYearOrOnly(show, rule, groups)
	case config.SeasonBySequential:
		return seasonByYearOrOnly(show, rule, groups)
	case config.SeasonByDate:
		return seasonByDate(show, sel, groups)
	default:
		return nil, failf(SeasonNotFound, "unsupported season selector mode %q", sel.Mode)
	}
}

func seasonByRound(show *metadata.Show, sel config.SeasonSelector, groups map[string]string) (*metadata.Season, *Failure) {
	group := sel.Group
	if group == "" {
		group = "round"
	}
	raw := strings.TrimSpace(groups[group])
	round, err := strconv.Atoi(strings.TrimLeft(raw, "0 "))
	if err != nil {
		// "05" trims to "5"; a fully-zero capture is round 0.
		if strings.Trim(raw, "0") == "" && raw != "" {
			round = 0
		} else {
			return nil, failf(SeasonNotFound, "round group %q captured non-numeric %q", group, raw)
		}
	}
	round += sel.Offset

	for i := range show.Seasons {
		if show.Seasons[i].RoundNumber == round {
			return &show.Seasons[i], nil
		}
	}
	for i := range show.Seasons {
		if show.Seasons[i].Number == round {
			return &show.Seasons[i], nil
		}
	}
	return nil, failf(SeasonNotFound, "no season with round %d", round)
}

func seasonByKey(show *metadata.Show, sel config.SeasonSelector, groups map[string]string) (*metadata.Season, *Failure) {
	raw := strings.TrimSpace(groups[sel.Group])
	key := raw
	if mapped, ok := sel.Aliases[strings.ToLower(raw)]; ok {
		key = mapped
	}
	for i := range show.Seasons {
		if show.Seasons[i].Key == key {
			return &show.Seasons[i], nil
		}
	}
	if number, ok := sel.Mapping[strings.ToLower(raw)]; ok {
		for i := range show.Seasons {
			if show.Seasons[i].Number == number {
				return &show.Seasons[i], nil
			}
		}
	}
	return nil, failf(SeasonNotFound, "no season with key %q", key)
}

func seasonByTitle(show *metadata.Show, sel config.SeasonSelector, groups map[string]string) (*metadata.Season, *Failure) {
	raw := strings.TrimSpace(groups[sel.Group])
	if mapped, ok := sel.Aliases[strings.ToLower(raw)]; ok {
		raw = mapped
	}
	if season := seasonByTitleToken(show, raw); season != nil {
		return season, nil
	}
	return nil, failf(SeasonNotFound, "no season titled like %q", raw)
}

// seasonByTitleToken finds a season whose title or aliases match the token,
// exact first, then fuzzy with exact > highest similarity > lowest number.
func seasonByTitleToken(show *metadata.Show, raw string) *metadata.Season {
	token := NormalizeToken(raw)
	if token == "" {
		return nil
	}
	for i := range show.Seasons {
		if seasonTitleExact(&show.Seasons[i], token) {
			return &show.Seasons[i]
		}
	}
	var best *metadata.Season
	bestSim := 0.0
	for i := range show.Seasons {
		sim := seasonTitleSimilarity(&show.Seasons[i], token)
		if sim >= similarityThreshold && (sim > bestSim || (sim == bestSim && best != nil && show.Seasons[i].Number < best.Number)) {
			best = &show.Seasons[i]
			bestSim = sim
		}
	}
	return best
}

func seasonTitleExact(season *metadata.Season, token string) bool {
	if NormalizeToken(season.Title) == token {
		return true
	}
	for _, alias := range season.Aliases {
		if NormalizeToken(alias) == token {
			return true
		}
	}
	// Location tokens often name only part of the title, e.g. "Monaco"
	// within "Monaco Grand Prix".
	for _, word := range strings.Fields(season.Title) {
		if NormalizeToken(word) == token {
			return true
		}
	}
	return false
}

func seasonTitleSimilarity(season *metadata.Season, token string) float64 {
	best := TokenSimilarity(NormalizeToken(season.Title), token)
	for _, word := range strings.Fields(season.Title) {
		if sim := TokenSimilarity(NormalizeToken(word), token); sim > best {
			best = sim
		}
	}
	for _, alias := range season.Aliases {
		if sim := TokenSimilarity(NormalizeToken(alias), token); sim > best {
			best = sim
		}
	}
	return best
}

// seasonByYearOrOnly picks the season by a captured year when present, or
// the only season. Rules with fallback_matchup_season defer instead of
// failing so matchup resolution can search all seasons.
func seasonByYearOrOnly(show *metadata.Show, rule config.PatternRule, groups map[string]string) (*metadata.Season, *Failure) {
	if raw := strings.TrimSpace(groups["year"]); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			for i := range show.Seasons {
				if show.Seasons[i].Year == year {
					return &show.Seasons[i], nil
				}
			}
		}
	}
	if len(show.Seasons) == 1 {
		return &show.Seasons[0], nil
	}
	if rule.FallbackMatchupSeason {
		return nil, nil
	}
	return nil, failf(SeasonNotFound, "cannot pick among %d seasons without a year", len(show.Seasons))
}

func seasonByDate(show *metadata.Show, sel config.SeasonSelector, groups map[string]string) (*metadata.Season, *Failure) {
	rendered, err := renderValueTemplate(sel.ValueTemplate, groups)
	if err != nil {
		return nil, failf(SeasonNotFound, "date template: %v", err)
	}
	date, err := metadata.ParseDate(rendered)
	if err != nil {
		return nil, failf(SeasonNotFound, "date template produced %q", rendered)
	}
	for i := range show.Seasons {
		for _, ep := range show.Seasons[i].Episodes {
			if !ep.OriginallyAvailable.IsZero() && ep.OriginallyAvailable == date {
				return &show.Seasons[i], nil
			}
		}
	}
	return nil, failf(SeasonNotFound, "no season has an episode on %s", date)
}

// renderValueTemplate substitutes {name} and {name:02} placeholders with
// capture group values, zero-padding numeric values to the declared width.
func renderValueTemplate(template string, groups map[string]string) (string, error) {
	out := template
	for _, m := range templateRefPattern.FindAllStringSubmatch(template, -1) {
		value, ok := groups[m[1]]
		if !ok || value == "" {
			return "", fmt.Errorf("group %q not captured", m[1])
		}
		if m[2] != "" {
			width, _ := strconv.Atoi(strings.TrimPrefix(m[2], "0"))
			if n, err := strconv.Atoi(value); err == nil {
				value = fmt.Sprintf("%0*d", width, n)
			}
		}
		out = strings.Replace(out, m[0], value, 1)
	}
	return out, nil
}
