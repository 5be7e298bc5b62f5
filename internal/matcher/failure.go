// SPDX-License-Identifier: MIT

package matcher

import "fmt"

// FailureKind is the closed set of per-file match failure reasons.
type FailureKind string

const (
	NoPatternMatched FailureKind = "no_pattern_matched"
	SeasonNotFound   FailureKind = "season_not_found"
	EpisodeNotFound  FailureKind = "episode_not_found"
	Ambiguous        FailureKind = "ambiguous"
	SportDisabled    FailureKind = "sport_disabled"
	IgnoredByFilter  FailureKind = "ignored_by_filter"
)

// Failure is a reason-coded match failure. It is reported, not raised: a
// failing file never aborts the pass.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func failf(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
