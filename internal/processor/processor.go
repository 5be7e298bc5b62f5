// SPDX-License-Identifier: MIT

// Package processor orchestrates processing passes: discover sources, load
// metadata, match, build destinations, link, and emit post-run events.
package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/linker"
	applog "github.com/sportarr/sportarr/internal/log"
	"github.com/sportarr/sportarr/internal/matcher"
	"github.com/sportarr/sportarr/internal/metadata"
	"github.com/sportarr/sportarr/internal/metrics"
	"github.com/sportarr/sportarr/internal/notify"
	"github.com/sportarr/sportarr/internal/processed"
	"github.com/sportarr/sportarr/internal/trace"
)

// Processor runs passes. All collaborators are injected at construction
// and shared across passes; per-pass state lives in the pass itself.
type Processor struct {
	cfg       *config.Config
	store     *metadata.Store
	ledger    *metadata.FingerprintLedger
	processed *processed.Store
	linker    *linker.Linker
	notifier  *notify.Dispatcher
	refresh   *notify.RefreshTrigger
	logger    zerolog.Logger

	// Reprocess disables the processed-cache skip for the next pass.
	Reprocess bool

	mu         sync.Mutex
	lastReport *Report
}

// New wires a processor from configuration.
func New(cfg *config.Config, store *metadata.Store, ledger *metadata.FingerprintLedger, procStore *processed.Store) *Processor {
	return &Processor{
		cfg:       cfg,
		store:     store,
		ledger:    ledger,
		processed: procStore,
		linker:    linker.New(cfg.DryRun),
		notifier:  notify.NewDispatcher(cfg.PostRun.Notifications),
		refresh:   notify.NewRefreshTrigger(cfg.PostRun.RefreshTriggerURL),
		logger:    applog.WithComponent("processor"),
	}
}

// LastReport returns the most recent pass report, if any.
func (p *Processor) LastReport() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReport
}

// MetadataStats exposes the metadata store counters for the status server.
func (p *Processor) MetadataStats() metadata.Snapshot {
	return p.store.Stats().Snapshot()
}

// ProcessedDestinations lists every recorded destination by source
// fingerprint for the status server.
func (p *Processor) ProcessedDestinations() (map[string]string, error) {
	return p.processed.Destinations()
}

// RunPass executes one full pass and returns its report. Per-file and
// per-sport failures are captured in the report; only setup errors (cache
// dir unreachable) are returned.
func (p *Processor) RunPass(ctx context.Context, reason string) (*Report, error) {
	passID := uuid.NewString()
	ctx = applog.ContextWithPassID(ctx, passID)
	report := newReport(passID, reason)
	logger := p.logger.With().Str(applog.FieldPassID, passID).Logger()

	started := time.Now()
	logger.Info().
		Str("event", "pass.start").
		Str("reason", reason).
		Msg("pass started")

	tracer, err := trace.NewWriter(p.cfg.CacheDir, passID, p.cfg.Trace.Enabled)
	if err != nil {
		return nil, err
	}

	runtimes := p.loadRuntimes(ctx, report, logger)
	files, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}
	report.Discovered = len(files)

	if err := os.MkdirAll(p.cfg.DestinationDir, 0o750); err != nil {
		return nil, err
	}

	pass := &passState{
		processor:    p,
		report:       report,
		runtimes:     runtimes,
		tracer:       tracer,
		destinations: make(map[string]string),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pass.processFile(gctx, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	p.postRun(ctx, report, logger)

	report.Duration = time.Since(started)
	metrics.PassesTotal.WithLabelValues(reason).Inc()
	metrics.PassDuration.Observe(report.Duration.Seconds())
	logger.Info().
		Str("event", "pass.complete").
		Int("discovered", report.Discovered).
		Int("linked", report.Linked).
		Int("replaced", report.Replaced).
		Dur("duration", report.Duration).
		Msg("pass complete")

	p.mu.Lock()
	p.lastReport = report
	p.mu.Unlock()
	return report, nil
}

// loadRuntimes fetches, normalizes, and compiles every enabled sport in
// parallel. A failing sport is skipped for this pass; the others proceed.
func (p *Processor) loadRuntimes(ctx context.Context, report *Report, logger zerolog.Logger) []*matcher.Runtime {
	type result struct {
		index   int
		runtime *matcher.Runtime
	}
	results := make([]result, 0, len(p.cfg.Sports))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(p.cfg.Sports) + 1)
	for i := range p.cfg.Sports {
		i := i
		sport := &p.cfg.Sports[i]
		if !sport.IsEnabled() {
			continue
		}
		g.Go(func() error {
			rt, stale, err := p.loadSport(gctx, sport)
			mu.Lock()
			defer mu.Unlock()
			sr := report.sport(sport.ID)
			if err != nil {
				logger.Warn().
					Str("event", "pass.sport_skipped").
					Str(applog.FieldSportID, sport.ID).
					Err(err).
					Msg("metadata unavailable, sport skipped this pass")
				return nil
			}
			sr.Loaded = true
			sr.Stale = stale
			results = append(results, result{index: i, runtime: rt})
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	runtimes := make([]*matcher.Runtime, 0, len(results))
	for _, r := range results {
		runtimes = append(runtimes, r.runtime)
	}
	return runtimes
}

func (p *Processor) loadSport(ctx context.Context, sport *config.Sport) (*matcher.Runtime, bool, error) {
	aliases := sessionAliasesFor(sport)

	show, stale, err := p.store.Get(ctx, sport.ID, sport.ShowRef, aliases)
	if err != nil {
		return nil, false, err
	}
	digest := p.store.PayloadDigest(sport.ShowRef)

	if p.ledger.Changed(sport.ShowRef, digest) {
		p.cleanupStaleDestinations(sport.ID)
	}
	p.ledger.Record(sport.ShowRef, digest)

	rt, err := matcher.NewRuntime(sport, show, digest)
	if err != nil {
		return nil, false, err
	}
	return rt, stale, nil
}

// cleanupStaleDestinations removes destinations recorded for a sport whose
// metadata changed; the current pass will relink them under the new names.
func (p *Processor) cleanupStaleDestinations(sportID string) {
	stale, err := p.processed.PruneSport(sportID)
	if err != nil {
		p.logger.Warn().
			Str("event", "pass.prune_failed").
			Str(applog.FieldSportID, sportID).
			Err(err).
			Msg("could not prune stale records")
		return
	}
	for _, rec := range stale {
		if p.cfg.DryRun {
			continue
		}
		if err := os.Remove(rec.DestinationPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn().
				Str("event", "pass.stale_remove_failed").
				Str(applog.FieldDestination, rec.DestinationPath).
				Err(err).
				Msg("could not remove stale destination")
			continue
		}
		p.logger.Info().
			Str("event", "pass.stale_removed").
			Str(applog.FieldSportID, sportID).
			Str(applog.FieldDestination, rec.DestinationPath).
			Msg("removed destination invalidated by metadata change")
	}
}

// discover walks the source tree and returns relative paths of candidate
// files, sorted for deterministic tie-breaking.
func (p *Processor) discover(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(p.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == p.cfg.SourceDir {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.cfg.SourceDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (p *Processor) postRun(ctx context.Context, report *Report, logger zerolog.Logger) {
	if err := p.processed.Commit(); err != nil {
		logger.Error().Str("event", "pass.commit_failed").Err(err).Msg("processed cache commit failed")
	}
	if err := p.ledger.Save(); err != nil {
		logger.Warn().Str("event", "pass.ledger_failed").Err(err).Msg("fingerprint ledger save failed")
	}
	if p.cfg.Trace.Enabled {
		if err := trace.Prune(p.cfg.CacheDir, p.cfg.Trace.Keep); err != nil {
			logger.Warn().Str("event", "pass.trace_prune_failed").Err(err).Msg("trace prune failed")
		}
	}

	p.notifier.Emit(ctx, notify.Event{
		Type:    notify.PassSummary,
		PassID:  report.PassID,
		Summary: report.Summary(),
		At:      time.Now().UTC(),
	})
	if report.Linked > 0 && !p.cfg.DryRun {
		p.refresh.Trigger(ctx, report.PassID, report.Summary())
		p.notifier.Emit(ctx, notify.Event{
			Type:   notify.RefreshRequested,
			PassID: report.PassID,
			At:     time.Now().UTC(),
		})
	}
}

// sessionAliasesFor merges the generic session aliases with every rule's
// session_aliases for metadata normalization.
func sessionAliasesFor(sport *config.Sport) map[string][]string {
	merged := make(map[string][]string, len(matcher.GenericSessionAliases))
	for canonical, aliases := range matcher.GenericSessionAliases {
		merged[canonical] = append([]string(nil), aliases...)
	}
	for _, rule := range sport.Patterns {
		for canonical, aliases := range rule.SessionAliases {
			merged[canonical] = append(merged[canonical], aliases...)
		}
	}
	return merged
}

// overwriteTokens force replacement of an existing destination when they
// appear in the source name: repacks, propers, and 4K upgrades.
var overwriteTokens = []string{"repack", "proper", "2160p"}

func hasOverwriteToken(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range overwriteTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// isSample suppresses sample files shipped alongside releases.
func isSample(name string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, field := range strings.FieldsFunc(stem, func(r rune) bool {
		return r == '.' || r == ' ' || r == '-' || r == '_'
	}) {
		if field == "sample" {
			return true
		}
	}
	return false
}
