// SPDX-License-Identifier: MIT

// Package metadata fetches, caches, and normalizes per-sport show metadata
// into the canonical show/season/episode model used by the matcher.
package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date without a time component, serialized as
// YYYY-MM-DD. Episode air dates are in the sport's nominal timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the given calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC, for arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysApart returns the absolute difference between two dates in days.
func (d Date) DaysApart(other Date) int {
	delta := d.Time().Sub(other.Time())
	if delta < 0 {
		delta = -delta
	}
	return int(delta / (24 * time.Hour))
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON emits "YYYY-MM-DD" or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// Episode is one entry in a season's episode space. For sports this is
// typically a session (practice, race) or a single game.
type Episode struct {
	Number              int      // canonical index within the season, unique
	DisplayNumber       int      // provider numbering, may differ from Number
	Title               string
	Summary             string
	OriginallyAvailable Date     // zero when the provider supplied none
	Aliases             []string
	SessionTokens       []string // case-folded union of title, aliases, injected aliases
}

// Season groups episodes. (show, Number) uniquely identifies a season.
type Season struct {
	Key         string // opaque identifier used by "key" selectors
	Number      int    // canonical season index
	Title       string
	RoundNumber int // sport-specific round; equals Number when the source has none
	Year        int
	Aliases     []string
	Episodes    []Episode
}

// Show is the normalized top-level entity for one sport.
type Show struct {
	ID           string
	Title        string
	DisplayTitle string // original casing preserved (acronyms stay upper-case)
	Aliases      []string
	Seasons      []Season
}

// RawEpisode is the provider wire format for an episode.
type RawEpisode struct {
	Number              int      `json:"number"`
	Title               string   `json:"title"`
	Summary             string   `json:"summary,omitempty"`
	OriginallyAvailable Date     `json:"originally_available,omitempty"`
	Aliases             []string `json:"aliases,omitempty"`
}

// RawSeason is the provider wire format for a season.
type RawSeason struct {
	Key      string       `json:"key"`
	Number   int          `json:"number"`
	Title    string       `json:"title"`
	Round    int          `json:"round,omitempty"`
	Year     int          `json:"year,omitempty"`
	Aliases  []string     `json:"aliases,omitempty"`
	Episodes []RawEpisode `json:"episodes"`
}

// RawShow is the provider wire format for a show.
type RawShow struct {
	Show    string      `json:"show"`
	Slug    string      `json:"slug,omitempty"`
	Aliases []string    `json:"aliases,omitempty"`
	Seasons []RawSeason `json:"seasons"`
}

// DecodeRaw parses provider payload bytes.
func DecodeRaw(payload []byte) (*RawShow, error) {
	var raw RawShow
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode metadata payload: %w", err)
	}
	return &raw, nil
}
