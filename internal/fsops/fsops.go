// Package fsops performs the validated filesystem mutations the reconciler
// decides on. Every mutation goes through the collision and name-safety
// gates, honors dry-run, and is journaled; filesystem failures are logged
// and reported to the caller, never propagated as panics.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/journal"
	"github.com/renamarr/renamarr/internal/render"
)

// Executor applies renames and moves under a dry-run flag.
type Executor struct {
	dryRun  bool
	journal *journal.Journal
	log     zerolog.Logger
}

// New constructs an executor. The journal may be nil in tests.
func New(dryRun bool, j *journal.Journal, log zerolog.Logger) *Executor {
	return &Executor{dryRun: dryRun, journal: j, log: log}
}

// DryRun reports whether the executor is in dry-run mode.
func (e *Executor) DryRun() bool { return e.dryRun }

// TryRename renames the entry at path to desiredName inside the same parent
// directory. It returns true when a rename occurred (or would have occurred
// under dry-run). Failures are logged and journaled, and reported as a
// non-fatal error to the caller.
func (e *Executor) TryRename(path, desiredName string) (bool, error) {
	if !render.ValidName(desiredName) {
		err := fmt.Errorf("desired name %q failed filesystem-safety validation", desiredName)
		e.record(journal.OpRename, path, "", false, err)
		return false, err
	}
	if render.FilenamesMatch(filepath.Base(path), desiredName) {
		return false, nil
	}

	newPath := filepath.Join(filepath.Dir(path), desiredName)
	if path == newPath {
		return false, nil
	}
	if _, err := os.Stat(newPath); err == nil {
		err := fmt.Errorf("destination already exists: %s", newPath)
		e.record(journal.OpRename, path, newPath, false, err)
		return false, err
	}

	if e.dryRun {
		e.log.Info().Str("from", path).Str("to", newPath).Msg("would rename")
		if e.journal != nil {
			e.journal.Record(journal.OpRename, path, newPath, true, true, nil)
		}
		return true, nil
	}

	if err := os.Rename(path, newPath); err != nil {
		e.record(journal.OpRename, path, newPath, false, err)
		return false, fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	e.record(journal.OpRename, path, newPath, true, nil)
	return true, nil
}

// TryRenameEpisode renames an episode file after verifying that the
// season/episode tokens embedded in desiredName equal the metadata numbers.
// A mismatch is a hard abort: metadata is authoritative and a disagreement
// signals a misidentification this system must not silently fix.
func (e *Executor) TryRenameEpisode(path, desiredName string, season, episode int) (bool, error) {
	if !render.VerifyEpisodeTokens(desiredName, season, episode) {
		err := fmt.Errorf("rendered name %q disagrees with metadata S%02dE%02d", desiredName, season, episode)
		e.log.Error().Str("path", path).Str("desired", desiredName).
			Int("season", season).Int("episode", episode).
			Msg("episode token mismatch, rename aborted")
		e.record(journal.OpRename, path, "", false, err)
		return false, err
	}
	return e.TryRename(path, desiredName)
}

// MoveInto relocates the file at path into destDir, keeping its base name.
// Returns the destination path and whether a move occurred.
func (e *Executor) MoveInto(path, destDir string) (string, bool, error) {
	destPath := filepath.Join(destDir, filepath.Base(path))
	if destPath == path {
		return destPath, false, nil
	}
	if _, err := os.Stat(destPath); err == nil {
		err := fmt.Errorf("destination already exists: %s", destPath)
		e.record(journal.OpMove, path, destPath, false, err)
		return "", false, err
	}

	if e.dryRun {
		e.log.Info().Str("from", path).Str("to", destPath).Msg("would move")
		if e.journal != nil {
			e.journal.Record(journal.OpMove, path, destPath, true, true, nil)
		}
		return destPath, true, nil
	}

	if err := os.Rename(path, destPath); err != nil {
		e.record(journal.OpMove, path, destPath, false, err)
		return "", false, fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}
	e.record(journal.OpMove, path, destPath, true, nil)
	return destPath, true, nil
}

// EnsureDir creates a directory (and parents) unless running dry.
func (e *Executor) EnsureDir(path string) error {
	if e.dryRun {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			e.log.Info().Str("path", path).Msg("would create directory")
			if e.journal != nil {
				e.journal.Record(journal.OpCreateDir, "", path, true, true, nil)
			}
		}
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		e.record(journal.OpCreateDir, "", path, false, err)
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	e.record(journal.OpCreateDir, "", path, true, nil)
	return nil
}

// RemoveEmptyDir removes path when it is an empty directory. Non-empty or
// missing directories are left alone.
func (e *Executor) RemoveEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil || len(entries) > 0 {
		return false
	}
	if e.dryRun {
		e.log.Info().Str("path", path).Msg("would remove empty directory")
		if e.journal != nil {
			e.journal.Record(journal.OpRemoveDir, path, "", true, true, nil)
		}
		return true
	}
	if err := os.Remove(path); err != nil {
		e.record(journal.OpRemoveDir, path, "", false, err)
		return false
	}
	e.record(journal.OpRemoveDir, path, "", true, nil)
	return true
}

func (e *Executor) record(op journal.OperationType, src, dest string, success bool, err error) {
	if success {
		e.log.Info().Str("op", string(op)).Str("from", src).Str("to", dest).Msg("filesystem operation")
	} else {
		e.log.Warn().Str("op", string(op)).Str("from", src).Str("to", dest).Err(err).Msg("filesystem operation failed")
	}
	if e.journal != nil {
		e.journal.Record(op, src, dest, success, false, err)
	}
}
