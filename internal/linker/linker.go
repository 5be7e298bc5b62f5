// SPDX-License-Identifier: MIT

// Package linker materializes matched files at their destinations as
// hardlinks, copies, or symlinks, under explicit overwrite rules.
package linker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/fingerprint"
	"github.com/sportarr/sportarr/internal/fsutil"
	applog "github.com/sportarr/sportarr/internal/log"
)

// Linker failure kinds.
var (
	ErrDestinationConflict = errors.New("destination conflict")
	ErrCrossDeviceLink     = errors.New("cross-device hardlink")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrSourceVanished      = errors.New("source vanished")
)

// Request describes one link action.
type Request struct {
	Source      string
	Destination string
	Mode        config.LinkMode

	// Priority and SessionExact carry the incoming match's specificity for
	// the overwrite decision against an existing destination.
	Priority     int
	SessionExact bool

	// Overwrite forces replacement regardless of specificity, used for
	// repack/proper releases and quality upgrades.
	Overwrite bool

	// CrossDeviceFallback switches hardlink to copy on EXDEV.
	CrossDeviceFallback bool

	// ExistingPriority and ExistingSessionExact describe the match that
	// produced the current destination, when known from the processed
	// cache. Zero ExistingPriority with no record means unknown.
	ExistingPriority     int
	ExistingSessionExact bool
	HasExistingRecord    bool
}

// Outcome reports what the linker did.
type Outcome string

const (
	OutcomeLinked   Outcome = "linked"
	OutcomeReplaced Outcome = "replaced"
	OutcomeNoop     Outcome = "noop"
	OutcomeKept     Outcome = "kept_existing"
)

// Linker performs link actions. DryRun renders decisions without touching
// the filesystem.
type Linker struct {
	DryRun bool
	logger zerolog.Logger
}

// New returns a Linker.
func New(dryRun bool) *Linker {
	return &Linker{DryRun: dryRun, logger: applog.WithComponent("linker")}
}

// Link materializes req.Source at req.Destination. Existing destinations
// with identical content are a no-op; differing destinations are replaced
// only when the incoming match is more specific or Overwrite is set.
func (l *Linker) Link(req Request) (Outcome, error) {
	if err := checkSource(req.Source); err != nil {
		return "", err
	}

	if _, err := os.Lstat(req.Destination); err == nil {
		same, err := l.sameContent(req)
		if err != nil {
			return "", err
		}
		if same {
			return OutcomeNoop, nil
		}
		if !l.shouldReplace(req) {
			return OutcomeKept, nil
		}
		if l.DryRun {
			return OutcomeReplaced, nil
		}
		if err := l.materialize(req, true); err != nil {
			return "", err
		}
		return OutcomeReplaced, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", classify(err)
	}

	if l.DryRun {
		return OutcomeLinked, nil
	}
	if err := os.MkdirAll(filepath.Dir(req.Destination), 0o750); err != nil {
		return "", classify(err)
	}
	if err := l.materialize(req, false); err != nil {
		return "", err
	}
	return OutcomeLinked, nil
}

// shouldReplace applies the overwrite policy: keep existing by default;
// replace when forced, when the incoming pattern has strictly higher
// priority (lower value), or when it supplies an exact session token where
// the existing one was fuzzy.
func (l *Linker) shouldReplace(req Request) bool {
	if req.Overwrite {
		return true
	}
	if !req.HasExistingRecord {
		return false
	}
	if req.Priority < req.ExistingPriority {
		return true
	}
	if req.Priority == req.ExistingPriority && req.SessionExact && !req.ExistingSessionExact {
		return true
	}
	return false
}

// sameContent reports whether the destination already carries the source's
// content: device+inode identity for hardlinks, digest equality otherwise.
func (l *Linker) sameContent(req Request) (bool, error) {
	switch req.Mode {
	case config.LinkModeHardlink:
		return sameInode(req.Source, req.Destination)
	case config.LinkModeSymlink:
		target, err := os.Readlink(req.Destination)
		if err != nil {
			return false, nil // regular file where a symlink was expected
		}
		return target == req.Source, nil
	default:
		srcDigest, err := fingerprint.File(req.Source)
		if err != nil {
			return false, classify(err)
		}
		dstDigest, err := fingerprint.File(req.Destination)
		if err != nil {
			return false, nil
		}
		return srcDigest == dstDigest, nil
	}
}

func (l *Linker) materialize(req Request, replace bool) error {
	switch req.Mode {
	case config.LinkModeHardlink:
		err := l.hardlink(req, replace)
		if isCrossDevice(err) {
			if !req.CrossDeviceFallback {
				return fmt.Errorf("%w: %s", ErrCrossDeviceLink, req.Destination)
			}
			l.logger.Warn().
				Str("event", "link.exdev_fallback").
				Str("destination", req.Destination).
				Msg("hardlink crossed filesystems, copying instead")
			return l.copy(req)
		}
		return err
	case config.LinkModeSymlink:
		return l.symlink(req, replace)
	case config.LinkModeCopy:
		return l.copy(req)
	default:
		return fmt.Errorf("unsupported link mode %q", req.Mode)
	}
}

// hardlink links atomically: when replacing, link to a temp name in the
// destination directory and rename over the target.
func (l *Linker) hardlink(req Request, replace bool) error {
	if !replace {
		if err := os.Link(req.Source, req.Destination); err != nil {
			return classify(err)
		}
		return nil
	}
	tmp := req.Destination + ".tmp-link"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return classify(err)
	}
	if err := os.Link(req.Source, tmp); err != nil {
		return classify(err)
	}
	if err := os.Rename(tmp, req.Destination); err != nil {
		_ = os.Remove(tmp)
		return classify(err)
	}
	return nil
}

func (l *Linker) symlink(req Request, replace bool) error {
	if !replace {
		if err := os.Symlink(req.Source, req.Destination); err != nil {
			return classify(err)
		}
		return nil
	}
	tmp := req.Destination + ".tmp-link"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return classify(err)
	}
	if err := os.Symlink(req.Source, tmp); err != nil {
		return classify(err)
	}
	if err := os.Rename(tmp, req.Destination); err != nil {
		_ = os.Remove(tmp)
		return classify(err)
	}
	return nil
}

// copy streams the source into a temp file and renames it into place, so
// readers never observe a partial destination.
func (l *Linker) copy(req Request) error {
	src, err := os.Open(req.Source) // #nosec G304 -- discovered source path
	if err != nil {
		return classify(err)
	}
	defer src.Close()

	pending, err := renameio.TempFile(filepath.Dir(req.Destination), req.Destination)
	if err != nil {
		return classify(err)
	}
	defer pending.Cleanup() //nolint:errcheck

	if _, err := io.Copy(pending, src); err != nil {
		return classify(err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return classify(err)
	}
	return nil
}

func checkSource(path string) error {
	err := fsutil.IsRegularFile(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist), errors.Is(err, fsutil.ErrNotRegular):
		return fmt.Errorf("%w: %s", ErrSourceVanished, path)
	default:
		return classify(err)
	}
}

func sameInode(a, b string) (bool, error) {
	sa, err := os.Stat(a)
	if err != nil {
		return false, classify(err)
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false, nil
	}
	return os.SameFile(sa, sb), nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV) || errors.Is(err, ErrCrossDeviceLink)
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrSourceVanished, err)
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%w: %v", ErrDestinationConflict, err)
	case strings.Contains(err.Error(), "cross-device"):
		return fmt.Errorf("%w: %v", ErrCrossDeviceLink, err)
	default:
		return err
	}
}
