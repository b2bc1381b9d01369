// Package layout repairs known-bad on-disk show folder shapes before any
// per-episode rename is attempted: nested season folders are flattened and
// loose episode files are migrated into a season folder. It relocates files
// only; season and episode numbers are never fabricated here beyond the
// flat-show season-1 rule.
package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/treeview"
	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/fsops"
	"github.com/renamarr/renamarr/internal/render"
)

// SeasonNamer renders the canonical folder name for a season number.
type SeasonNamer func(season int) string

// Moves records the relocations one Normalize call applied, keyed by the
// original path, so catalog paths recorded before the normalization can be
// translated to where the files actually live now. Dry-run moves nothing
// and records nothing.
type Moves struct {
	files map[string]string
	dirs  map[string]string
}

func newMoves() *Moves {
	return &Moves{files: make(map[string]string), dirs: make(map[string]string)}
}

// Len returns the number of files relocated.
func (m *Moves) Len() int {
	if m == nil {
		return 0
	}
	return len(m.files)
}

// Rebase translates a path recorded before normalization to its current
// location. Paths the normalizer did not touch come back unchanged.
func (m *Moves) Rebase(path string) string {
	if m == nil || path == "" {
		return path
	}
	if to, ok := m.files[path]; ok {
		path = to
	}
	// Season folder renames relocate everything beneath them.
	for from, to := range m.dirs {
		if path == from {
			path = to
		} else if rest, ok := strings.CutPrefix(path, from+string(os.PathSeparator)); ok {
			path = filepath.Join(to, rest)
		}
	}
	return path
}

// Normalizer flattens duplicate season folders and relocates stray files.
type Normalizer struct {
	exec *fsops.Executor
	log  zerolog.Logger
}

func New(exec *fsops.Executor, log zerolog.Logger) *Normalizer {
	return &Normalizer{exec: exec, log: log}
}

// Normalize repairs the folder structure under showPath. It returns the
// relocations it applied so callers can follow the files it moved.
// Individual move failures are logged and skipped; only a failed folder
// scan is an error.
func (n *Normalizer) Normalize(ctx context.Context, showPath string, nameFor SeasonNamer) (*Moves, error) {
	root, err := n.scan(ctx, showPath)
	if err != nil {
		return nil, err
	}

	moves := newMoves()
	hasSeasonFolder := false
	for _, child := range root.Children() {
		if !child.Data().IsDir() {
			continue
		}
		if !render.IsSeasonFolderName(child.Name()) {
			continue
		}
		hasSeasonFolder = true
		n.flattenNested(child, nameFor, moves)
	}

	n.migrateLooseFiles(root, showPath, hasSeasonFolder, nameFor, moves)
	return moves, nil
}

func (n *Normalizer) scan(ctx context.Context, showPath string) (*treeview.Node[treeview.FileInfo], error) {
	t, err := treeview.NewTreeFromFileSystem(ctx, showPath, false,
		treeview.WithMaxDepth[treeview.FileInfo](3),
		treeview.WithFilterFunc(func(fi treeview.FileInfo) bool {
			if strings.HasPrefix(fi.Name(), ".") {
				return false
			}
			return fi.IsDir() || render.IsVideo(fi.Name()) || render.IsSubtitle(fi.Name())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("scan show folder %s: %w", showPath, err)
	}
	nodes := t.Nodes()
	if len(nodes) != 1 || !nodes[0].Data().IsDir() {
		return nil, fmt.Errorf("show folder %s did not scan as a directory", showPath)
	}
	return nodes[0], nil
}

// flattenNested repairs the "season folder inside a season folder" shape:
// inner files move up one level, the emptied inner folder is removed, and
// the outer folder is renamed to its canonical season name.
func (n *Normalizer) flattenNested(seasonDir *treeview.Node[treeview.FileInfo], nameFor SeasonNamer, moves *Moves) {
	for _, inner := range seasonDir.Children() {
		if !inner.Data().IsDir() || !render.IsSeasonFolderName(inner.Name()) {
			continue
		}
		n.log.Info().Str("outer", seasonDir.Data().Path).Str("inner", inner.Data().Path).
			Msg("flattening nested season folder")
		for _, file := range inner.Children() {
			if file.Data().IsDir() {
				continue
			}
			if dest, ok, err := n.exec.MoveInto(file.Data().Path, seasonDir.Data().Path); err != nil {
				n.log.Warn().Err(err).Str("file", file.Data().Path).Msg("failed to flatten file")
			} else if ok && !n.exec.DryRun() {
				moves.files[file.Data().Path] = dest
			}
		}
		n.exec.RemoveEmptyDir(inner.Data().Path)
	}

	if season, ok := render.ExtractSeasonNumber(seasonDir.Name()); ok && nameFor != nil {
		canonical := nameFor(season)
		if canonical != "" && !render.FilenamesMatch(seasonDir.Name(), canonical) {
			oldPath := seasonDir.Data().Path
			if renamed, err := n.exec.TryRename(oldPath, canonical); err != nil {
				n.log.Warn().Err(err).Str("folder", oldPath).
					Msg("failed to rename season folder to canonical name")
			} else if renamed && !n.exec.DryRun() {
				moves.dirs[oldPath] = filepath.Join(filepath.Dir(oldPath), canonical)
			}
		}
	}
}

// migrateLooseFiles moves video files sitting directly under the show folder
// into a season folder. Files whose names carry a season token go to that
// season; with no season folder present at all, the rest go to season 1.
func (n *Normalizer) migrateLooseFiles(root *treeview.Node[treeview.FileInfo], showPath string, hasSeasonFolder bool, nameFor SeasonNamer, moves *Moves) {
	for _, child := range root.Children() {
		if child.Data().IsDir() {
			continue
		}
		season, _, found := render.ParseSeasonEpisode(child.Name(), "")
		if !found {
			if hasSeasonFolder {
				// Mixed layout and no season token: moving would be a guess.
				n.log.Debug().Str("file", child.Data().Path).
					Msg("loose file without season token left in place")
				continue
			}
			season = 1
		}
		folderName := ""
		if nameFor != nil {
			folderName = nameFor(season)
		}
		if folderName == "" {
			continue
		}
		destDir := filepath.Join(showPath, folderName)
		if err := n.exec.EnsureDir(destDir); err != nil {
			n.log.Warn().Err(err).Str("dir", destDir).Msg("failed to create season folder")
			continue
		}
		if dest, ok, err := n.exec.MoveInto(child.Data().Path, destDir); err != nil {
			n.log.Warn().Err(err).Str("file", child.Data().Path).Msg("failed to migrate loose file")
		} else if ok && !n.exec.DryRun() {
			moves.files[child.Data().Path] = dest
		}
	}
}
