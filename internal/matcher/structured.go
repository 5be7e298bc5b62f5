// SPDX-License-Identifier: MIT

package matcher

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sportarr/sportarr/internal/metadata"
)

// StructuredName is the heuristic parse of a filename that no pattern
// matched: whatever combination of teams, date, round, week, session, and
// year could be extracted.
type StructuredName struct {
	Teams   []string
	Date    metadata.Date
	Round   int
	Week    int
	Session string
	Year    int
}

// HasSignal reports whether the parse carries enough information to
// attempt scoring.
func (s *StructuredName) HasSignal() bool {
	return s != nil && (len(s.Teams) > 0 || !s.Date.IsZero() || s.Round > 0 || s.Week > 0)
}

var (
	isoDatePattern    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDatePattern     = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	yearPattern       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	roundPattern      = regexp.MustCompile(`(?i)\b(?:round|rd)[ ._]?(\d{1,2})\b`)
	weekPattern       = regexp.MustCompile(`(?i)\b(?:week|wk)[ ._]?(\d{1,2})\b`)
	trailingDayMonth  = regexp.MustCompile(`\b(\d{1,2})[ ._-](\d{1,2})\s*$`)
	separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ")
)

// ParseStructured extracts a StructuredName from a filename stem. Returns
// nil when there is not enough signal to score candidates.
func ParseStructured(stem string, aliases *AliasLookup, sessions *SessionLookupIndex) *StructuredName {
	parsed := &StructuredName{}
	remainder := stem

	// ISO dates first: unambiguous and easy to cut out.
	if m := isoDatePattern.FindStringSubmatch(remainder); m != nil {
		parsed.Date = mustDate(m[1], m[2], m[3])
		parsed.Year = parsed.Date.Year
		remainder = strings.Replace(remainder, m[0], " ", 1)
	}

	if m := roundPattern.FindStringSubmatch(remainder); m != nil {
		parsed.Round, _ = strconv.Atoi(m[1])
		remainder = strings.Replace(remainder, m[0], " ", 1)
	}
	if m := weekPattern.FindStringSubmatch(remainder); m != nil {
		parsed.Week, _ = strconv.Atoi(m[1])
		remainder = strings.Replace(remainder, m[0], " ", 1)
	}

	if parsed.Year == 0 {
		if m := yearPattern.FindStringSubmatch(remainder); m != nil {
			parsed.Year, _ = strconv.Atoi(m[1])
		}
	}

	spaced := strings.Join(strings.Fields(separatorReplacer.Replace(remainder)), " ")
	spaced = StripNoise(spaced)

	// Trailing "DD MM" after team names, anchored by a standalone year
	// elsewhere in the name. Checked before MM-DD-YYYY since the trailing
	// form is the common release convention.
	if parsed.Date.IsZero() && parsed.Year > 0 {
		if m := trailingDayMonth.FindStringSubmatch(spaced); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			if validDayMonth(day, month) {
				parsed.Date = metadata.NewDate(parsed.Year, time.Month(month), day)
				spaced = strings.TrimSpace(spaced[:len(spaced)-len(m[0])])
			}
		}
	}
	if parsed.Date.IsZero() {
		if m := usDatePattern.FindStringSubmatch(remainder); m != nil {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			if validDayMonth(day, month) {
				parsed.Date = mustDate(m[3], m[1], m[2])
				parsed.Year = parsed.Date.Year
			}
		}
	}

	// A standalone year used for the date is noise for team extraction.
	if parsed.Year > 0 {
		spaced = strings.Join(strings.Fields(strings.Replace(spaced, strconv.Itoa(parsed.Year), " ", 1)), " ")
	}

	parsed.Teams = ExtractTeams(spaced, aliases)

	// Session: the trailing token(s) when they resolve through the index.
	if sessions != nil {
		fields := strings.Fields(spaced)
		for width := 2; width >= 1 && parsed.Session == ""; width-- {
			if len(fields) < width {
				continue
			}
			tail := strings.Join(fields[len(fields)-width:], " ")
			if canonical, ok := sessions.GetDirect(tail); ok {
				parsed.Session = canonical
			}
		}
	}

	if !parsed.HasSignal() {
		return nil
	}
	return parsed
}

func mustDate(y, m, d string) metadata.Date {
	date, err := metadata.ParseDate(y + "-" + pad2(m) + "-" + pad2(d))
	if err != nil {
		return metadata.Date{}
	}
	return date
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func validDayMonth(day, month int) bool {
	return day >= 1 && day <= 31 && month >= 1 && month <= 12
}
