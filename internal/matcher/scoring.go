// SPDX-License-Identifier: MIT

package matcher

import "github.com/sportarr/sportarr/internal/metadata"

// Scoring weights for the structured pass. Team-set equality dominates,
// date proximity confirms, session tokens refine.
const (
	scoreTeamsExact   = 0.55
	scoreDateClose    = 0.4
	scoreSessionExact = 0.2
	scoreSessionFuzzy = 0.1
	scoreThreshold    = 0.6
	dateToleranceDays = 2
)

type candidate struct {
	season       *metadata.Season
	episode      *metadata.Episode
	score        float64
	sessionExact bool
}

// pickCandidate scores every episode in the candidate seasons against the
// parse and returns the best one at or above the selection threshold. Ties
// on score resolve to the lowest episode number, then the lowest season
// number.
func pickCandidate(seasons []*metadata.Season, parsed *StructuredName, aliases *AliasLookup) (*candidate, *Failure) {
	var best *candidate
	for _, season := range seasons {
		for i := range season.Episodes {
			ep := &season.Episodes[i]
			score, sessionExact := scoreEpisode(parsed, ep, aliases)
			if score < scoreThreshold {
				continue
			}
			c := &candidate{season: season, episode: ep, score: score, sessionExact: sessionExact}
			if best == nil || c.score > best.score ||
				(c.score == best.score && (c.episode.Number < best.episode.Number ||
					(c.episode.Number == best.episode.Number && c.season.Number < best.season.Number))) {
				best = c
			}
		}
	}
	if best == nil {
		return nil, failf(EpisodeNotFound, "no episode scored above %.2f", scoreThreshold)
	}
	return best, nil
}

// scoreEpisode applies the structured-pass scoring rules to one episode.
// Two-team matchups require the unordered team sets to be equal; any
// partial overlap is a hard reject.
func scoreEpisode(parsed *StructuredName, ep *metadata.Episode, aliases *AliasLookup) (float64, bool) {
	score := 0.0
	sessionExact := false

	epTeams := ExtractTeams(ep.Title, aliases)
	twoTeam := len(parsed.Teams) == 2 || len(epTeams) == 2
	switch {
	case len(parsed.Teams) > 0 && len(epTeams) > 0:
		if TeamSetsEqual(parsed.Teams, epTeams) {
			score += scoreTeamsExact
		} else if twoTeam && TeamOverlap(parsed.Teams, epTeams) > 0 {
			return 0, false
		}
	case len(parsed.Teams) > 0 && twoTeam:
		// The parse names teams but the episode is not a matchup.
		return 0, false
	}

	if !parsed.Date.IsZero() && !ep.OriginallyAvailable.IsZero() {
		if parsed.Date.DaysApart(ep.OriginallyAvailable) > dateToleranceDays {
			return 0, false
		}
		score += scoreDateClose
	}

	if parsed.Session != "" {
		token := NormalizeToken(parsed.Session)
		if sessionTokenExact(ep, token) {
			score += scoreSessionExact
			sessionExact = true
		} else if sessionTokenFuzzy(ep, token) {
			score += scoreSessionFuzzy
		}
	}
	return score, sessionExact
}

func sessionTokenExact(ep *metadata.Episode, token string) bool {
	if NormalizeToken(ep.Title) == token {
		return true
	}
	for _, session := range ep.SessionTokens {
		if NormalizeToken(session) == token {
			return true
		}
	}
	return false
}

func sessionTokenFuzzy(ep *metadata.Episode, token string) bool {
	if TokensClose(token, NormalizeToken(ep.Title)) {
		return true
	}
	for _, session := range ep.SessionTokens {
		if TokensClose(token, NormalizeToken(session)) {
			return true
		}
	}
	return false
}
