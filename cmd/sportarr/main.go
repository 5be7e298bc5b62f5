// SPDX-License-Identifier: MIT

// sportarr organizes sports video files into a metadata-driven library
// layout. It runs a single pass by default and stays resident in watch
// mode.
//
// Usage:
//
//	sportarr [flags]                  run a pass (or watch, per config)
//	sportarr validate-config -config config.yaml
//	sportarr trigger-refresh -config config.yaml
//
// Exit codes:
//   - 0: success
//   - 1: pass completed with failures
//   - 2: configuration error
//   - 3: fatal I/O error
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportarr/sportarr/internal/config"
	applog "github.com/sportarr/sportarr/internal/log"
	"github.com/sportarr/sportarr/internal/metadata"
	"github.com/sportarr/sportarr/internal/notify"
	"github.com/sportarr/sportarr/internal/processed"
	"github.com/sportarr/sportarr/internal/processor"
	"github.com/sportarr/sportarr/internal/watch"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
	exitFatal  = 3
)

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "run":
		os.Exit(runCommand(args))
	case "validate-config":
		os.Exit(validateCommand(args))
	case "trigger-refresh":
		os.Exit(refreshCommand(args))
	case "version":
		fmt.Printf("sportarr %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		fmt.Fprintln(os.Stderr, "commands: run (default), validate-config, trigger-refresh, version")
		os.Exit(exitConfig)
	}
}

func runCommand(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	sourceDir := fs.String("source", "", "source directory (overrides config)")
	destDir := fs.String("dest", "", "destination directory (overrides config)")
	cacheDir := fs.String("cache", "", "cache directory (overrides config)")
	dryRun := fs.Bool("dry-run", false, "render decisions without touching the filesystem")
	watchMode := fs.Bool("watch", false, "stay resident and process on filesystem events")
	reprocess := fs.Bool("reprocess", false, "ignore the processed cache for this run")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	applog.Configure(applog.Config{Level: "info", Service: "sportarr", Version: version})
	logger := applog.WithComponent("main")

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger.Error().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
		return exitConfig
	}

	// Flags win over every other layer, but only when actually set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.SourceDir = *sourceDir
		case "dest":
			cfg.DestinationDir = *destDir
		case "cache":
			cfg.CacheDir = *cacheDir
		case "dry-run":
			cfg.DryRun = *dryRun
		case "watch":
			cfg.Watch.Enabled = *watchMode
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	applog.Configure(applog.Config{Level: cfg.LogLevel, Service: "sportarr", Version: version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := buildProcessor(cfg)
	if err != nil {
		logger.Error().Err(err).Str("event", "startup.failed").Msg("could not initialize")
		return exitFatal
	}
	defer cleanup()
	p.Reprocess = *reprocess

	if !cfg.Watch.Enabled {
		report, err := p.RunPass(ctx, "manual")
		if err != nil {
			logger.Error().Err(err).Str("event", "pass.fatal").Msg("pass aborted")
			return exitFatal
		}
		if report.HasFailures() {
			return exitFailed
		}
		return exitOK
	}

	return watchLoop(ctx, cfg, p, logger)
}

// watchLoop runs an initial pass, then serves triggers from the watcher
// until the context is canceled. The status server runs alongside.
func watchLoop(ctx context.Context, cfg *config.Config, p *processor.Processor, logger zerolog.Logger) int {
	status := processor.NewStatusServer(cfg.Watch.StatusAddr, p)
	go func() {
		if err := status.Run(ctx); err != nil {
			logger.Error().Err(err).Str("event", "status.failed").Msg("status server stopped")
		}
	}()

	watcher := watch.New(cfg.SourceDir, cfg.Watch)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Str("event", "watch.failed").Msg("watcher stopped")
		}
	}()

	if _, err := p.RunPass(ctx, "startup"); err != nil {
		logger.Error().Err(err).Str("event", "pass.fatal").Msg("startup pass aborted")
		return exitFatal
	}
	p.Reprocess = false

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("event", "shutdown").Msg("shutting down")
			return exitOK
		case trigger := <-watcher.Triggers():
			if _, err := p.RunPass(ctx, string(trigger.Reason)); err != nil {
				logger.Error().Err(err).Str("event", "pass.fatal").Msg("pass aborted")
				return exitFatal
			}
		}
	}
}

// buildProcessor wires the metadata store, ledgers, and processed cache.
// The returned cleanup flushes and closes the processed cache.
func buildProcessor(cfg *config.Config) (*processor.Processor, func(), error) {
	provider := metadata.NewHTTPProvider(cfg.Provider)
	store, err := metadata.NewStore(cfg.CacheDir, provider, time.Duration(cfg.Provider.TTLHours)*time.Hour)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := metadata.LoadFingerprintLedger(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	procStore, err := processed.Open(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := procStore.Close(); err != nil {
			lg := applog.WithComponent("main")
			lg.Warn().Err(err).
				Str("event", "shutdown.close_failed").
				Msg("processed cache close failed")
		}
	}
	return processor.New(cfg, store, ledger, procStore), cleanup, nil
}

func validateCommand(args []string) int {
	fs := flag.NewFlagSet("validate-config", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "validate-config: -config is required")
		return exitConfig
	}
	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error in %s:\n  %v\n", *configPath, err)
		return exitConfig
	}
	fmt.Printf("configuration valid: %d sport(s), link mode %s\n", len(cfg.Sports), cfg.LinkMode)
	return exitOK
}

func refreshCommand(args []string) int {
	fs := flag.NewFlagSet("trigger-refresh", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}
	applog.Configure(applog.Config{Level: "info", Service: "sportarr", Version: version})

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitConfig
	}
	if cfg.PostRun.RefreshTriggerURL == "" {
		fmt.Fprintln(os.Stderr, "trigger-refresh: no post_run.refresh_trigger configured")
		return exitConfig
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	notify.NewRefreshTrigger(cfg.PostRun.RefreshTriggerURL).Trigger(ctx, "manual", map[string]any{
		"reason": "cli",
	})
	return exitOK
}
