// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"
	"sort"
	"strings"
)

// noiseTokens are release-name artifacts stripped before team and session
// resolution: resolutions, codecs, source tags, and broadcast providers.
var noiseTokens = map[string]bool{
	"2160p": true, "1080p": true, "1080i": true, "720p": true, "480p": true,
	"4k": true, "uhd": true, "hdr": true, "hdr10": true, "sdr": true,
	"x264": true, "x265": true, "h264": true, "h265": true, "hevc": true,
	"avc": true, "aac": true, "ac3": true, "eac3": true, "dts": true,
	"dd5": true, "ddp5": true, "atmos": true,
	"web": true, "webrip": true, "webdl": true, "web-dl": true,
	"hdtv": true, "bluray": true, "remux": true,
	"repack": true, "proper": true, "internal": true, "multi": true,
	"french": true, "german": true, "spanish": true,
	"sky": true, "skysports": true, "espn": true, "espn2": true,
	"tnt": true, "tsn": true, "fox": true, "fs1": true, "nbc": true,
	"abc": true, "cbs": true, "btsport": true, "dazn": true,
	"viaplay": true, "f1tv": true, "nbatv": true,
}

// StripNoise removes noise tokens from a space-separated string.
func StripNoise(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !noiseTokens[strings.ToLower(f)] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// AliasLookup maps normalized aliases to canonical entity names.
type AliasLookup struct {
	aliases map[string]string
}

// NewAliasLookup merges alias maps (alias -> canonical); later maps win.
func NewAliasLookup(maps ...map[string]string) *AliasLookup {
	merged := make(map[string]string)
	for _, m := range maps {
		for alias, canonical := range m {
			merged[NormalizeToken(alias)] = canonical
			// Canonical names resolve to themselves.
			merged[NormalizeToken(canonical)] = canonical
		}
	}
	delete(merged, "")
	return &AliasLookup{aliases: merged}
}

// Canonical returns the canonical name for a token, if known.
func (l *AliasLookup) Canonical(token string) (string, bool) {
	if l == nil {
		return "", false
	}
	canonical, ok := l.aliases[NormalizeToken(token)]
	return canonical, ok
}

// Resolve returns the canonical name for raw, or raw cleaned up when no
// alias applies.
func (l *AliasLookup) Resolve(raw string) string {
	cleaned := strings.TrimSpace(StripNoise(raw))
	if canonical, ok := l.Canonical(cleaned); ok {
		return canonical
	}
	// Team names in release titles often drop the city or the nickname;
	// try the individual words before giving up.
	for _, word := range strings.Fields(cleaned) {
		if canonical, ok := l.Canonical(word); ok {
			return canonical
		}
	}
	return cleaned
}

// TeamAliasMap returns a built-in league alias map by name.
func TeamAliasMap(name string) (map[string]string, error) {
	m, ok := builtinTeamAliasMaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown team alias map %q (have %s)",
			name, strings.Join(TeamAliasMapNames(), ", "))
	}
	return m, nil
}

// TeamAliasMapNames lists the built-in league alias maps.
func TeamAliasMapNames() []string {
	names := make([]string, 0, len(builtinTeamAliasMaps))
	for name := range builtinTeamAliasMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractTeams pulls the canonical team names out of a matchup string such
// as "Indiana Pacers vs Boston Celtics" or "NJD@PHI". Returns nil when no
// separator is present.
func ExtractTeams(s string, aliases *AliasLookup) []string {
	away, home, ok := splitMatchup(s)
	if !ok {
		return nil
	}
	teams := make([]string, 0, 2)
	if t := aliases.Resolve(away); t != "" {
		teams = append(teams, t)
	}
	if t := aliases.Resolve(home); t != "" {
		teams = append(teams, t)
	}
	if len(teams) < 2 {
		return nil
	}
	return teams
}

// TeamSetsEqual compares two team lists as unordered, normalized sets.
func TeamSetsEqual(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[NormalizeToken(t)] = true
	}
	for _, t := range b {
		if !set[NormalizeToken(t)] {
			return false
		}
	}
	return true
}

// TeamOverlap counts how many teams the two lists share.
func TeamOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[NormalizeToken(t)] = true
	}
	n := 0
	for _, t := range b {
		if set[NormalizeToken(t)] {
			n++
		}
	}
	return n
}

// splitMatchup splits on the first "vs", "at", or "@" separator.
func splitMatchup(s string) (away, home string, ok bool) {
	if i := strings.Index(s, "@"); i > 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
	}
	fields := strings.Fields(s)
	for i, f := range fields {
		lower := strings.ToLower(strings.Trim(f, "."))
		if (lower == "vs" || lower == "v" || lower == "at") && i > 0 && i < len(fields)-1 {
			return strings.Join(fields[:i], " "), strings.Join(fields[i+1:], " "), true
		}
	}
	return "", "", false
}
