// SPDX-License-Identifier: MIT

// Package dest renders destination paths from templates and a match
// context, with sanitization and traversal protection.
package dest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/fsutil"
	"github.com/sportarr/sportarr/internal/matcher"
	"github.com/sportarr/sportarr/internal/metadata"
)

// Builder failure kinds.
var (
	ErrTemplate    = errors.New("template error")
	ErrUnsafePath  = errors.New("unsafe destination path")
	ErrNameTooLong = errors.New("destination name too long")
)

// Context is the fully resolved dictionary templates render against. Keys
// are fixed plus any capture group from the matching regex.
type Context map[string]string

// NewContext builds the template context for a successful match.
func NewContext(sport *config.Sport, show *metadata.Show, m *matcher.Match, relSource string) Context {
	base := filepath.Base(relSource)
	ext := filepath.Ext(base)
	ctx := Context{
		"sport_id":   sport.ID,
		"sport_name": sport.Name,

		"show_title":         show.Title,
		"show_display_title": show.DisplayTitle,

		"season_title":  m.Season.Title,
		"season_number": strconv.Itoa(m.Season.Number),
		"season_round":  strconv.Itoa(m.Season.RoundNumber),
		"season_year":   strconv.Itoa(m.Season.Year),

		"episode_title":          m.Episode.Title,
		"episode_number":         strconv.Itoa(m.Episode.Number),
		"episode_display_number": strconv.Itoa(m.Episode.DisplayNumber),
		"episode_summary":        m.Episode.Summary,

		"source_filename": base,
		"source_stem":     strings.TrimSuffix(base, ext),
		"extension":       strings.TrimPrefix(ext, "."),
		"suffix":          ext,
		"relative_source": filepath.ToSlash(relSource),
	}
	if !m.Episode.OriginallyAvailable.IsZero() {
		ctx["episode_originally_available"] = m.Episode.OriginallyAvailable.String()
	} else {
		ctx["episode_originally_available"] = ""
	}
	for name, value := range m.Groups {
		if _, taken := ctx[name]; !taken {
			ctx[name] = value
		}
	}
	return ctx
}

// Destination is a rendered, validated destination path.
type Destination struct {
	RootSegment   string
	SeasonSegment string
	Filename      string
	// Path is the absolute destination path under the destination dir.
	Path string
	// RelPath is Path relative to the destination dir.
	RelPath string
}

// Build renders the sport's templates (or the rule's overrides) against the
// context and confines the result to destDir.
func Build(destDir string, sport *config.Sport, m *matcher.Match, ctx Context) (*Destination, error) {
	templates := sport.Destination
	if m != nil {
		if overrides := overridesFor(sport, m.PatternID); overrides != nil {
			if overrides.RootTemplate != "" {
				templates.RootTemplate = overrides.RootTemplate
			}
			if overrides.SeasonTemplate != "" {
				templates.SeasonTemplate = overrides.SeasonTemplate
			}
			if overrides.FilenameTemplate != "" {
				templates.FilenameTemplate = overrides.FilenameTemplate
			}
		}
	}

	root, err := renderSegment(templates.RootTemplate, ctx)
	if err != nil {
		return nil, err
	}
	season, err := renderSegment(templates.SeasonTemplate, ctx)
	if err != nil {
		return nil, err
	}
	rawFilename, err := renderTemplate(templates.FilenameTemplate, ctx)
	if err != nil {
		return nil, err
	}
	// The limit matches the sanitizer's clamp, so a filename that passes
	// here never loses its extension to truncation below.
	if len(rawFilename) > fsutil.MaxSegmentLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(rawFilename))
	}
	filename := fsutil.SanitizeSegment(rawFilename)
	if filename == "" || filename == ".." || filename == "." {
		return nil, fmt.Errorf("%w: filename template rendered empty or unsafe segment", ErrUnsafePath)
	}

	rel := filepath.Join(root, season, filename)
	confined, err := fsutil.ConfineRelPath(destDir, rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	return &Destination{
		RootSegment:   root,
		SeasonSegment: season,
		Filename:      filename,
		Path:          confined,
		RelPath:       rel,
	}, nil
}

func overridesFor(sport *config.Sport, patternID string) *config.DestinationOverrides {
	for _, rule := range sport.Patterns {
		if rule.Description == patternID && rule.DestinationOverrides != nil {
			return rule.DestinationOverrides
		}
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?::(0?\d+))?\}`)

// renderSegment substitutes placeholders, then sanitizes the result. An
// empty rendered segment is unsafe.
func renderSegment(template string, ctx Context) (string, error) {
	rendered, err := renderTemplate(template, ctx)
	if err != nil {
		return "", err
	}
	cleaned := fsutil.SanitizeSegment(rendered)
	if cleaned == "" || cleaned == ".." || cleaned == "." {
		return "", fmt.Errorf("%w: template %q rendered empty or unsafe segment", ErrUnsafePath, template)
	}
	return cleaned, nil
}

// renderTemplate substitutes {key} and {key:02} placeholders. Missing keys
// are template errors.
func renderTemplate(template string, ctx Context) (string, error) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		parts := placeholderPattern.FindStringSubmatch(m)
		value, ok := ctx[parts[1]]
		if !ok {
			missing = append(missing, parts[1])
			return ""
		}
		if parts[2] != "" {
			width, _ := strconv.Atoi(strings.TrimPrefix(parts[2], "0"))
			if n, err := strconv.Atoi(value); err == nil {
				return fmt.Sprintf("%0*d", width, n)
			}
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing keys %s in %q", ErrTemplate, strings.Join(missing, ", "), template)
	}
	return rendered, nil
}
