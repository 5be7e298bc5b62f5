// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/metadata"
)

// structuredPriority orders structured-pass matches behind every pattern
// rule when destinations contend.
const structuredPriority = 1000

// Runtime is the immutable per-pass matching state for one sport: its
// configuration, normalized metadata, compiled patterns, and alias lookup.
type Runtime struct {
	Sport               *config.Sport
	Show                *metadata.Show
	Patterns            []*CompiledPattern
	Aliases             *AliasLookup
	MetadataFingerprint string

	// structuredSessions merges every pattern's session index for the
	// structured fallback pass. Built once; the inputs never change
	// within a pass.
	structuredSessions *SessionLookupIndex
}

// NewRuntime compiles the sport's patterns against its metadata and builds
// the team alias lookup.
func NewRuntime(sport *config.Sport, show *metadata.Show, metadataFingerprint string) (*Runtime, error) {
	var aliasMaps []map[string]string
	if sport.TeamAliasMap != "" {
		m, err := TeamAliasMap(sport.TeamAliasMap)
		if err != nil {
			return nil, fmt.Errorf("sport %s: %w", sport.ID, err)
		}
		aliasMaps = append(aliasMaps, m)
	}
	if len(sport.TeamAliases) > 0 {
		aliasMaps = append(aliasMaps, sport.TeamAliases)
	}
	patterns, err := CompilePatterns(sport, show)
	if err != nil {
		return nil, err
	}
	sessions := NewSessionLookupIndex()
	for _, pattern := range patterns {
		for token, canonical := range pattern.Sessions.direct {
			sessions.Add(token, canonical)
		}
	}
	if sessions.Len() == 0 {
		sessions = buildSessionIndex(show, nil)
	}
	return &Runtime{
		Sport:               sport,
		Show:                show,
		Patterns:            patterns,
		Aliases:             NewAliasLookup(aliasMaps...),
		MetadataFingerprint: metadataFingerprint,
		structuredSessions:  sessions,
	}, nil
}

// Match is a successful (season, episode) selection for a file.
type Match struct {
	Season       *metadata.Season
	Episode      *metadata.Episode
	PatternID    string
	Priority     int
	Groups       map[string]string
	SessionExact bool
	Score        float64
}

// Match selects the season and episode for a source file path, relative to
// the source root. Pattern rules run first in priority order; the
// structured parser is the fallback.
func (r *Runtime) Match(relPath string) (*Match, *Failure) {
	if !r.Sport.IsEnabled() {
		return nil, failf(SportDisabled, "sport %s is disabled", r.Sport.ID)
	}
	if fail := r.filter(relPath); fail != nil {
		return nil, fail
	}

	base := filepath.Base(relPath)
	var lastFail *Failure
	for _, pattern := range r.Patterns {
		m, fail := r.matchPattern(pattern, base)
		if m != nil {
			return m, nil
		}
		if fail != nil && fail.Kind != NoPatternMatched {
			lastFail = fail
		}
	}

	if m := r.matchStructured(base); m != nil {
		return m, nil
	}
	if lastFail != nil {
		return nil, lastFail
	}
	return nil, failf(NoPatternMatched, "no pattern or structured parse matched %q", base)
}

func (r *Runtime) filter(relPath string) *Failure {
	ext := strings.ToLower(filepath.Ext(relPath))
	extOK := len(r.Sport.SourceExtensions) == 0
	for _, allowed := range r.Sport.SourceExtensions {
		if strings.EqualFold(allowed, ext) {
			extOK = true
			break
		}
	}
	if !extOK {
		return failf(IgnoredByFilter, "extension %s not in source_extensions", ext)
	}
	if len(r.Sport.SourceGlobs) == 0 {
		return nil
	}
	slashed := filepath.ToSlash(relPath)
	for _, glob := range r.Sport.SourceGlobs {
		if ok, err := doublestar.Match(glob, slashed); err == nil && ok {
			return nil
		}
	}
	return failf(IgnoredByFilter, "no source_glob matches %s", slashed)
}

func (r *Runtime) matchPattern(pattern *CompiledPattern, base string) (*Match, *Failure) {
	groups := captureGroups(pattern.Regex, base)
	if groups == nil {
		return nil, nil
	}
	if fail := r.checkVariantYear(groups["year"]); fail != nil {
		return nil, fail
	}

	season, fail := selectSeason(r.Show, pattern.Rule, groups)
	if fail != nil {
		return nil, fail
	}

	switch {
	case season == nil:
		// Deferred to matchup resolution across all seasons.
		return r.resolveMatchup(pattern, groups, allSeasons(r.Show))

	case pattern.Rule.SeasonSelector.Mode == config.SeasonByDate:
		rendered, err := renderValueTemplate(pattern.Rule.SeasonSelector.ValueTemplate, groups)
		if err != nil {
			return nil, failf(SeasonNotFound, "date template: %v", err)
		}
		date, err := metadata.ParseDate(rendered)
		if err != nil {
			return nil, failf(SeasonNotFound, "date template produced %q", rendered)
		}
		episode, fail := selectEpisodeByDate(season, date, r.matchupTeams(groups), r.Aliases)
		if fail != nil {
			return nil, fail
		}
		return r.success(pattern, season, episode, groups, true, 0), nil

	case pattern.Rule.SeasonSelector.Mode == config.SeasonByWeek:
		episode, fail := selectEpisodeWeek(season, pattern.Rule, groups)
		if fail != nil {
			return nil, fail
		}
		return r.success(pattern, season, episode, groups, true, 0), nil

	default:
		if teams := r.matchupTeams(groups); len(teams) == 2 {
			return r.resolveMatchup(pattern, groups, []*metadata.Season{season})
		}
		season = r.verifyLocation(pattern.Rule, season, groups)
		episode, exact, fail := selectEpisode(season, pattern, groups)
		if fail != nil {
			return nil, fail
		}
		return r.success(pattern, season, episode, groups, exact, 0), nil
	}
}

// checkVariantYear rejects releases carrying a different year than the
// sport variant is pinned to, so season-per-year sports do not claim each
// other's files.
func (r *Runtime) checkVariantYear(yearGroup string) *Failure {
	if r.Sport.VariantYear == 0 {
		return nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearGroup))
	if err != nil || year == 0 {
		return nil
	}
	if year != r.Sport.VariantYear {
		return failf(IgnoredByFilter, "year %d belongs to another variant of %s (want %d)",
			year, r.Sport.ID, r.Sport.VariantYear)
	}
	return nil
}

// verifyLocation cross-checks a round-selected season against a captured
// location group. When the location clearly names a different round's
// event, the location wins; otherwise the round stands.
func (r *Runtime) verifyLocation(rule config.PatternRule, season *metadata.Season, groups map[string]string) *metadata.Season {
	location := strings.TrimSpace(groups["location"])
	if location == "" || rule.SeasonSelector.Mode != config.SeasonByRound {
		return season
	}
	token := NormalizeToken(strings.Join(strings.Fields(separatorReplacer.Replace(location)), " "))
	if seasonTitleExact(season, token) || seasonTitleSimilarity(season, token) >= similarityThreshold {
		return season
	}
	if other := seasonByTitleToken(r.Show, location); other != nil {
		return other
	}
	return season
}

// resolveMatchup resolves a two-team pattern match by scoring episodes the
// same way the structured pass does.
func (r *Runtime) resolveMatchup(pattern *CompiledPattern, groups map[string]string, seasons []*metadata.Season) (*Match, *Failure) {
	parsed := &StructuredName{
		Teams:   r.matchupTeams(groups),
		Date:    r.matchupDate(groups),
		Session: strings.TrimSpace(groups[pattern.Rule.EpisodeSelector.Group]),
	}
	if len(parsed.Teams) < 2 {
		return nil, failf(EpisodeNotFound, "matchup pattern captured no resolvable teams")
	}
	best, fail := pickCandidate(seasons, parsed, r.Aliases)
	if fail != nil {
		return nil, fail
	}
	return r.success(pattern, best.season, best.episode, groups, best.sessionExact, best.score), nil
}

func (r *Runtime) matchStructured(base string) *Match {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parsed := ParseStructured(stem, r.Aliases, r.structuredSessions)
	if !parsed.HasSignal() {
		return nil
	}
	if r.Sport.VariantYear > 0 && parsed.Year > 0 && parsed.Year != r.Sport.VariantYear {
		return nil
	}

	seasons := r.structuredSeasons(parsed)
	if len(seasons) == 0 {
		return nil
	}

	// Week short-circuit: the week number indexes the episode directly.
	if parsed.Week > 0 && len(seasons) == 1 {
		if ep := episodeByNumber(seasons[0], parsed.Week); ep != nil {
			return &Match{
				Season:    seasons[0],
				Episode:   ep,
				PatternID: "structured",
				Priority:  structuredPriority,
				Score:     1,
			}
		}
		return nil
	}

	best, fail := pickCandidate(seasons, parsed, r.Aliases)
	if fail != nil {
		return nil
	}
	return &Match{
		Season:       best.season,
		Episode:      best.episode,
		PatternID:    "structured",
		Priority:     structuredPriority,
		SessionExact: best.sessionExact,
		Score:        best.score,
	}
}

// structuredSeasons derives the candidate seasons for the structured pass:
// round, then week (via year), then date, then everything.
func (r *Runtime) structuredSeasons(parsed *StructuredName) []*metadata.Season {
	if parsed.Round > 0 {
		for i := range r.Show.Seasons {
			if r.Show.Seasons[i].RoundNumber == parsed.Round {
				return []*metadata.Season{&r.Show.Seasons[i]}
			}
		}
		return nil
	}
	if parsed.Week > 0 || parsed.Year > 0 {
		for i := range r.Show.Seasons {
			if r.Show.Seasons[i].Year == parsed.Year {
				return []*metadata.Season{&r.Show.Seasons[i]}
			}
		}
		if len(r.Show.Seasons) == 1 {
			return allSeasons(r.Show)
		}
		if parsed.Week > 0 {
			return nil
		}
	}
	if !parsed.Date.IsZero() {
		var out []*metadata.Season
		for i := range r.Show.Seasons {
			for _, ep := range r.Show.Seasons[i].Episodes {
				if !ep.OriginallyAvailable.IsZero() && ep.OriginallyAvailable.DaysApart(parsed.Date) <= 2 {
					out = append(out, &r.Show.Seasons[i])
					break
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return allSeasons(r.Show)
}

func (r *Runtime) matchupTeams(groups map[string]string) []string {
	away := strings.TrimSpace(groups["away"])
	home := strings.TrimSpace(groups["home"])
	if away == "" || home == "" {
		return nil
	}
	clean := func(s string) string {
		return strings.Join(strings.Fields(separatorReplacer.Replace(s)), " ")
	}
	return []string{r.Aliases.Resolve(clean(away)), r.Aliases.Resolve(clean(home))}
}

func (r *Runtime) matchupDate(groups map[string]string) metadata.Date {
	year, _ := strconv.Atoi(groups["year"])
	month, _ := strconv.Atoi(groups["month"])
	day, _ := strconv.Atoi(groups["day"])
	if year == 0 || !validDayMonth(day, month) {
		return metadata.Date{}
	}
	return metadata.NewDate(year, time.Month(month), day)
}

func (r *Runtime) success(pattern *CompiledPattern, season *metadata.Season, episode *metadata.Episode, groups map[string]string, exact bool, score float64) *Match {
	return &Match{
		Season:       season,
		Episode:      episode,
		PatternID:    pattern.ID,
		Priority:     pattern.Rule.Priority,
		Groups:       groups,
		SessionExact: exact,
		Score:        score,
	}
}

func captureGroups(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}
	return groups
}

func allSeasons(show *metadata.Show) []*metadata.Season {
	out := make([]*metadata.Season, len(show.Seasons))
	for i := range show.Seasons {
		out[i] = &show.Seasons[i]
	}
	return out
}
