// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/dest"
	"github.com/sportarr/sportarr/internal/fingerprint"
	"github.com/sportarr/sportarr/internal/linker"
	applog "github.com/sportarr/sportarr/internal/log"
	"github.com/sportarr/sportarr/internal/matcher"
	"github.com/sportarr/sportarr/internal/metrics"
	"github.com/sportarr/sportarr/internal/notify"
	"github.com/sportarr/sportarr/internal/processed"
	"github.com/sportarr/sportarr/internal/trace"
)

// passState carries the mutable state of one pass shared across file
// workers. The mutex guards the destination claims and the processed
// cache's pending writes.
type passState struct {
	processor *Processor
	report    *Report
	runtimes  []*matcher.Runtime
	tracer    *trace.Writer

	mu           sync.Mutex
	destinations map[string]string // destination path -> source rel path
}

// processFile runs one source file through the full pipeline: sample
// filter, match, destination build, link, record. Failures are counted
// and traced; they never abort the pass.
func (ps *passState) processFile(ctx context.Context, relPath string) {
	p := ps.processor
	base := filepath.Base(relPath)

	if isSample(base) {
		ps.skip(relPath, "", "sample", "filter")
		return
	}

	rt, m, fail, allowUnmatched := ps.match(relPath)
	if m == nil {
		sportID := ""
		kind := string(matcher.NoPatternMatched)
		if fail != nil {
			kind = string(fail.Kind)
			if rt != nil {
				sportID = rt.Sport.ID
			}
		}
		if hardFailure(fail) && !allowUnmatched {
			ps.fail(relPath, sportID, kind, "match", fail.Error())
			return
		}
		ps.skip(relPath, sportID, kind, "match")
		return
	}

	sport := rt.Sport
	source := filepath.Join(p.cfg.SourceDir, relPath)

	tctx := dest.NewContext(sport, rt.Show, m, relPath)
	d, err := dest.Build(p.cfg.DestinationDir, sport, m, tctx)
	if err != nil {
		ps.fail(relPath, sport.ID, buildFailureReason(err), "build", err.Error())
		return
	}

	fp, err := fingerprint.File(source)
	if err != nil {
		ps.fail(relPath, sport.ID, "source_unreadable", "build", err.Error())
		return
	}

	ps.mu.Lock()
	if prev, taken := ps.destinations[d.Path]; taken && prev != relPath {
		ps.mu.Unlock()
		ps.fail(relPath, sport.ID, "destination_conflict", "link",
			"destination already claimed by "+prev)
		return
	}
	ps.destinations[d.Path] = relPath
	rec, hasRecord := p.processed.Get(fp)
	ps.mu.Unlock()

	if hasRecord && rec.DestinationPath == d.Path && p.cfg.SkipExisting && !p.Reprocess {
		if _, err := os.Lstat(d.Path); err == nil {
			ps.skipLinked(relPath, sport.ID, "already_processed", d.Path, m)
			return
		}
		// Destination disappeared since the record was written; relink.
	}

	req := linker.Request{
		Source:              source,
		Destination:         d.Path,
		Mode:                ps.linkMode(sport),
		Priority:            m.Priority,
		SessionExact:        m.SessionExact,
		Overwrite:           hasOverwriteToken(base),
		CrossDeviceFallback: p.cfg.CrossDeviceFallback,
	}
	if hasRecord && rec.DestinationPath == d.Path {
		req.ExistingPriority = rec.Priority
		req.ExistingSessionExact = rec.SessionExact
		req.HasExistingRecord = true
	}

	outcome, err := p.linker.Link(req)
	if err != nil {
		ps.fail(relPath, sport.ID, linkFailureReason(err), "link", err.Error())
		return
	}

	if p.cfg.DryRun {
		switch outcome {
		case linker.OutcomeLinked, linker.OutcomeReplaced:
			ps.report.addWouldWrite(d.RelPath)
			ps.trace(trace.FileTrace{
				Source:      relPath,
				SportID:     sport.ID,
				Step:        "link",
				Outcome:     "would_" + string(outcome),
				PatternID:   m.PatternID,
				Groups:      m.Groups,
				Score:       m.Score,
				Destination: d.RelPath,
			})
		default:
			ps.skipLinked(relPath, sport.ID, string(outcome), d.Path, m)
		}
		return
	}

	switch outcome {
	case linker.OutcomeLinked, linker.OutcomeReplaced:
		ps.recordLink(ctx, relPath, fp, d.Path, sport, m, outcome)
		if hasRecord && rec.DestinationPath != d.Path {
			ps.removeOrphan(sport.ID, rec.DestinationPath)
		}
	case linker.OutcomeNoop:
		// Destination already carries this content; refresh the record so
		// later passes can make overwrite decisions against it.
		ps.putRecord(fp, d.Path, sport, m)
		ps.skipLinked(relPath, sport.ID, "already_linked", d.Path, m)
	case linker.OutcomeKept:
		ps.skipLinked(relPath, sport.ID, "kept_existing", d.Path, m)
	}
}

// match tries every loaded sport in order and returns the first match.
// When none matches it returns the most specific failure seen, preferring
// hard kinds over filter noise, plus the failing sport's allow_unmatched.
func (ps *passState) match(relPath string) (*matcher.Runtime, *matcher.Match, *matcher.Failure, bool) {
	var (
		bestRT    *matcher.Runtime
		bestFail  *matcher.Failure
		allowSoft bool
	)
	for _, rt := range ps.runtimes {
		m, fail := rt.Match(relPath)
		if m != nil {
			return rt, m, nil, false
		}
		if fail == nil {
			continue
		}
		if bestFail == nil || (hardFailure(fail) && !hardFailure(bestFail)) {
			bestFail = fail
			bestRT = rt
			allowSoft = rt.Sport.AllowUnmatched
		}
	}
	return bestRT, nil, bestFail, allowSoft
}

// hardFailure reports whether the failure names a concrete mismatch
// against loaded metadata rather than a file this sport never claimed.
func hardFailure(fail *matcher.Failure) bool {
	if fail == nil {
		return false
	}
	switch fail.Kind {
	case matcher.SeasonNotFound, matcher.EpisodeNotFound, matcher.Ambiguous:
		return true
	default:
		return false
	}
}

func (ps *passState) linkMode(sport *config.Sport) config.LinkMode {
	if sport.LinkMode != "" {
		return sport.LinkMode
	}
	if ps.processor.cfg.LinkMode != "" {
		return ps.processor.cfg.LinkMode
	}
	return config.LinkModeHardlink
}

func (ps *passState) recordLink(ctx context.Context, relPath, fp, destPath string, sport *config.Sport, m *matcher.Match, outcome linker.Outcome) {
	p := ps.processor
	ps.putRecord(fp, destPath, sport, m)
	ps.report.addLinked(sport.ID, outcome == linker.OutcomeReplaced)
	metrics.FilesLinked.WithLabelValues(sport.ID).Inc()

	p.logger.Info().
		Str("event", "file."+string(outcome)).
		Str(applog.FieldSportID, sport.ID).
		Str(applog.FieldSource, relPath).
		Str(applog.FieldDestination, destPath).
		Str(applog.FieldPattern, m.PatternID).
		Msg("file materialized")

	ps.trace(trace.FileTrace{
		Source:      relPath,
		SportID:     sport.ID,
		Step:        "link",
		Outcome:     string(outcome),
		PatternID:   m.PatternID,
		Groups:      m.Groups,
		Score:       m.Score,
		Destination: destPath,
	})
	p.notifier.Emit(ctx, notify.Event{
		Type:    notify.PerFileLinked,
		PassID:  ps.report.PassID,
		SportID: sport.ID,
		Source:  relPath,
		Dest:    destPath,
		At:      time.Now().UTC(),
	})
}

func (ps *passState) putRecord(fp, destPath string, sport *config.Sport, m *matcher.Match) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.processor.processed.Put(processed.Record{
		SourceFingerprint: fp,
		DestinationPath:   destPath,
		LinkMode:          string(ps.linkMode(sport)),
		PatternID:         m.PatternID,
		Priority:          m.Priority,
		SessionExact:      m.SessionExact,
		SportID:           sport.ID,
		CreatedAt:         time.Now().UTC(),
	})
}

// removeOrphan deletes the previous destination after the same source was
// relinked elsewhere, so renames do not leave duplicates behind.
func (ps *passState) removeOrphan(sportID, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		ps.processor.logger.Warn().
			Str("event", "file.orphan_remove_failed").
			Str(applog.FieldSportID, sportID).
			Str(applog.FieldDestination, path).
			Err(err).
			Msg("could not remove superseded destination")
		return
	}
	ps.processor.logger.Info().
		Str("event", "file.orphan_removed").
		Str(applog.FieldSportID, sportID).
		Str(applog.FieldDestination, path).
		Msg("removed superseded destination")
}

func (ps *passState) skip(relPath, sportID, reason, step string) {
	ps.report.addSkipped(sportID, reason)
	metrics.FilesSkipped.WithLabelValues(reason).Inc()
	ps.processor.logger.Debug().
		Str("event", "file.skipped").
		Str(applog.FieldSource, relPath).
		Str(applog.FieldReason, reason).
		Msg("file skipped")
	ps.trace(trace.FileTrace{
		Source:      relPath,
		SportID:     sportID,
		Step:        step,
		Outcome:     "skipped",
		FailureKind: reason,
	})
}

// skipLinked counts a skip for a file whose destination is already in the
// desired state, keeping the match context in the trace.
func (ps *passState) skipLinked(relPath, sportID, reason, destPath string, m *matcher.Match) {
	ps.report.addSkipped(sportID, reason)
	metrics.FilesSkipped.WithLabelValues(reason).Inc()
	ps.processor.logger.Debug().
		Str("event", "file.skipped").
		Str(applog.FieldSportID, sportID).
		Str(applog.FieldSource, relPath).
		Str(applog.FieldDestination, destPath).
		Str(applog.FieldReason, reason).
		Msg("file skipped")
	ps.trace(trace.FileTrace{
		Source:      relPath,
		SportID:     sportID,
		Step:        "link",
		Outcome:     reason,
		PatternID:   m.PatternID,
		Groups:      m.Groups,
		Score:       m.Score,
		Destination: destPath,
	})
}

func (ps *passState) fail(relPath, sportID, reason, step, detail string) {
	ps.report.addFailed(sportID, reason)
	metrics.FilesFailed.WithLabelValues(reason).Inc()
	ps.processor.logger.Warn().
		Str("event", "file.failed").
		Str(applog.FieldSportID, sportID).
		Str(applog.FieldSource, relPath).
		Str(applog.FieldReason, reason).
		Str("detail", detail).
		Msg("file failed")
	ps.trace(trace.FileTrace{
		Source:        relPath,
		SportID:       sportID,
		Step:          step,
		Outcome:       "failed",
		FailureKind:   reason,
		FailureDetail: detail,
	})
}

func (ps *passState) trace(t trace.FileTrace) {
	t.At = time.Now().UTC()
	if err := ps.tracer.Write(t); err != nil {
		ps.processor.logger.Warn().
			Str("event", "trace.write_failed").
			Str(applog.FieldSource, t.Source).
			Err(err).
			Msg("trace write failed")
	}
}

func buildFailureReason(err error) string {
	switch {
	case errors.Is(err, dest.ErrTemplate):
		return "template_error"
	case errors.Is(err, dest.ErrUnsafePath):
		return "unsafe_path"
	case errors.Is(err, dest.ErrNameTooLong):
		return "name_too_long"
	default:
		return "destination_build"
	}
}

func linkFailureReason(err error) string {
	switch {
	case errors.Is(err, linker.ErrSourceVanished):
		return "source_vanished"
	case errors.Is(err, linker.ErrCrossDeviceLink):
		return "cross_device"
	case errors.Is(err, linker.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, linker.ErrDestinationConflict):
		return "destination_conflict"
	default:
		return "link_error"
	}
}
