// SPDX-License-Identifier: MIT

package matcher

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/metadata"
)

// selectEpisode resolves the episode within a season from the captured
// episode group. Resolution order: numeric capture, exact session token,
// fuzzy session token, then title fallback when the rule allows it.
// The second return value reports whether the match was exact (non-fuzzy),
// which feeds overwrite specificity.
func selectEpisode(season *metadata.Season, pattern *CompiledPattern, groups map[string]string) (*metadata.Episode, bool, *Failure) {
	sel := pattern.Rule.EpisodeSelector
	raw := strings.TrimSpace(groups[sel.Group])
	if raw == "" {
		raw = sel.DefaultValue
	}
	if raw == "" {
		return nil, false, failf(EpisodeNotFound, "episode group %q captured nothing", sel.Group)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if ep := episodeByNumber(season, n); ep != nil {
			return ep, true, nil
		}
		return nil, false, failf(EpisodeNotFound, "season %d has no episode %d", season.Number, n)
	}

	for _, attempt := range lookupAttempts(raw) {
		if ep := episodeBySessionExact(season, attempt); ep != nil {
			return ep, true, nil
		}
	}
	for _, attempt := range lookupAttempts(raw) {
		if ep := episodeBySessionFuzzy(season, pattern.Sessions, attempt); ep != nil {
			return ep, false, nil
		}
	}
	if sel.AllowTitleFallback {
		if ep := episodeByTitle(season, raw); ep != nil {
			return ep, false, nil
		}
	}
	return nil, false, failf(EpisodeNotFound, "no episode in season %d matches session %q", season.Number, raw)
}

// selectEpisodeWeek resolves the week episode selector: the captured week
// number indexes the season's episode space directly.
func selectEpisodeWeek(season *metadata.Season, rule config.PatternRule, groups map[string]string) (*metadata.Episode, *Failure) {
	group := rule.SeasonSelector.Group
	if group == "" {
		group = "week"
	}
	raw := strings.TrimSpace(groups[group])
	week, err := strconv.Atoi(strings.TrimLeft(raw, "0"))
	if err != nil {
		return nil, failf(EpisodeNotFound, "week group captured non-numeric %q", raw)
	}
	if ep := episodeByNumber(season, week); ep != nil {
		return ep, nil
	}
	return nil, failf(EpisodeNotFound, "season %d has no week %d", season.Number, week)
}

// selectEpisodeByDate resolves the episode on a selected date, using teams
// to disambiguate multi-game days. Seasons where only some episodes carry
// dates are rejected rather than guessed at.
func selectEpisodeByDate(season *metadata.Season, date metadata.Date, teams []string, aliases *AliasLookup) (*metadata.Episode, *Failure) {
	dated := 0
	for i := range season.Episodes {
		if !season.Episodes[i].OriginallyAvailable.IsZero() {
			dated++
		}
	}
	if dated > 0 && dated < len(season.Episodes) {
		return nil, failf(EpisodeNotFound,
			"season %d has air dates on only %d of %d episodes", season.Number, dated, len(season.Episodes))
	}

	var onDate []*metadata.Episode
	for i := range season.Episodes {
		ep := &season.Episodes[i]
		if !ep.OriginallyAvailable.IsZero() && ep.OriginallyAvailable == date {
			onDate = append(onDate, ep)
		}
	}
	if len(onDate) == 0 {
		return nil, failf(EpisodeNotFound, "season %d has no episode on %s", season.Number, date)
	}
	if len(teams) == 0 {
		if len(onDate) == 1 {
			return onDate[0], nil
		}
		return nil, failf(Ambiguous, "%d episodes on %s and no teams to disambiguate", len(onDate), date)
	}
	for _, ep := range onDate {
		if TeamSetsEqual(teams, ExtractTeams(ep.Title, aliases)) {
			return ep, nil
		}
	}
	return nil, failf(EpisodeNotFound, "no episode on %s involves %s", date, strings.Join(teams, " and "))
}

// lookupAttempts builds the candidate strings tried against session tokens,
// longest first so "Practice 1" beats "Practice".
func lookupAttempts(raw string) []string {
	spaced := strings.Join(strings.Fields(separatorReplacer.Replace(raw)), " ")
	attempts := []string{spaced}
	if stripped := StripNoise(spaced); stripped != spaced && stripped != "" {
		attempts = append(attempts, stripped)
	}
	sort.SliceStable(attempts, func(i, j int) bool { return len(attempts[i]) > len(attempts[j]) })
	return attempts
}

func episodeByNumber(season *metadata.Season, n int) *metadata.Episode {
	for i := range season.Episodes {
		if season.Episodes[i].Number == n {
			return &season.Episodes[i]
		}
	}
	for i := range season.Episodes {
		if season.Episodes[i].DisplayNumber == n {
			return &season.Episodes[i]
		}
	}
	return nil
}

func episodeBySessionExact(season *metadata.Season, attempt string) *metadata.Episode {
	token := NormalizeToken(attempt)
	if token == "" {
		return nil
	}
	for i := range season.Episodes {
		ep := &season.Episodes[i]
		if NormalizeToken(ep.Title) == token {
			return ep
		}
		for _, session := range ep.SessionTokens {
			if NormalizeToken(session) == token {
				return ep
			}
		}
	}
	return nil
}

// episodeBySessionFuzzy narrows candidates through the session index, then
// picks by highest similarity with lowest episode number breaking ties.
func episodeBySessionFuzzy(season *metadata.Season, index *SessionLookupIndex, attempt string) *metadata.Episode {
	token := NormalizeToken(attempt)
	if token == "" || index == nil {
		return nil
	}
	bestCanonical := ""
	bestSim := 0.0
	for _, candidate := range index.GetCandidates(token) {
		if !TokensClose(token, candidate) {
			continue
		}
		if sim := TokenSimilarity(token, candidate); sim > bestSim {
			canonical, ok := index.Canonical(candidate)
			if !ok {
				continue
			}
			bestCanonical = canonical
			bestSim = sim
		}
	}
	if bestCanonical == "" {
		return nil
	}
	return episodeBySessionExact(season, bestCanonical)
}

func episodeByTitle(season *metadata.Season, raw string) *metadata.Episode {
	token := NormalizeToken(StripNoise(raw))
	if token == "" {
		return nil
	}
	var best *metadata.Episode
	bestSim := 0.0
	for i := range season.Episodes {
		ep := &season.Episodes[i]
		title := NormalizeToken(ep.Title)
		if title == token {
			return ep
		}
		if sim := TokenSimilarity(title, token); sim >= similarityThreshold && sim > bestSim {
			best = ep
			bestSim = sim
		}
	}
	return best
}
