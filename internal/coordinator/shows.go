package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/render"
)

// handleShow runs the show decision path: cooldown gate, identity/bulk
// gate, folder rename, then a cascade over every known season and episode.
// The cascade covers all descendants because the host does not reliably
// emit a change notification for each one.
func (c *Coordinator) handleShow(ctx context.Context, show *catalog.Show) {
	log := c.log.With().Str("show", show.ID).Str("name", show.Name).Logger()

	if c.underCooldown(show.ID) {
		log.Debug().Msg("skipped: cooldown active")
		return
	}
	if show.Path == "" {
		log.Info().Msg("skipped: show has no folder path")
		return
	}
	if _, err := os.Stat(show.Path); err != nil {
		log.Info().Str("path", show.Path).Msg("skipped: show folder missing on disk")
		return
	}
	if show.Name == "" {
		log.Info().Msg("skipped: show has no name")
		return
	}

	state := c.identity.Compute(show.ID, show.ProviderIDs)
	if !state.FirstTime && !state.Changed {
		// Routine update; only interesting as a bulk refresh signal.
		if c.bulkDetect.Observe(c.clock()) {
			log.Info().Msg("bulk refresh detected, dispatching full-catalog sweep")
			c.startBulkSweep()
		} else {
			log.Debug().Msg("skipped: provider identity unchanged")
		}
		return
	}
	if state.Changed {
		log.Info().Str("provider", state.ChangedProvider).
			Msg("provider identity changed, show was re-identified")
	}

	showPath := c.renameShowFolder(show, state.ChangedProvider, log)
	c.cascadeShow(ctx, show, showPath)
}

// renameShowFolder renders and applies the canonical show folder name,
// returning the (possibly updated) folder path.
func (c *Coordinator) renameShowFolder(show *catalog.Show, changedProvider string, log zerolog.Logger) string {
	provider, providerID := c.providerField(show.ProviderIDs, changedProvider)
	desired := render.Render(c.cfg.ShowFolder, render.Fields{
		Show:       show.Name,
		Title:      show.Name,
		Year:       show.DisplayYear(),
		Season:     catalog.NumberUnset,
		Episode:    catalog.NumberUnset,
		Provider:   provider,
		ProviderID: providerID,
	})
	if desired == "" {
		log.Warn().Msg("show folder template rendered empty, folder left alone")
		return show.Path
	}
	if render.FilenamesMatch(filepath.Base(show.Path), desired) {
		return show.Path
	}

	renamed, err := c.exec.TryRename(show.Path, desired)
	if err != nil {
		log.Warn().Err(err).Msg("show folder rename failed")
		return show.Path
	}
	if renamed && !c.exec.DryRun() {
		return filepath.Join(filepath.Dir(show.Path), desired)
	}
	return show.Path
}

// cascadeShow normalizes the folder structure then processes every season
// and episode of the show. Each show cascades at most once per session.
func (c *Coordinator) cascadeShow(ctx context.Context, show *catalog.Show, showPath string) {
	if !c.markCascaded(show.ID) {
		c.log.Debug().Str("show", show.ID).Msg("descendants already swept this session")
		return
	}

	moves, err := c.normalizer.Normalize(ctx, showPath, func(season int) string {
		return c.renderSeasonFolder(show, season)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("show", show.ID).Msg("folder normalization failed")
	} else if moves.Len() > 0 {
		c.log.Info().Str("show", show.ID).Int("files_moved", moves.Len()).
			Msg("folder structure normalized")
	}

	// Catalog paths predate both the show folder rename and the
	// normalizer's relocations; follow the files to where they are now.
	for _, s := range c.lib.SeasonsForShow(show.ID) {
		season := *s
		season.Path = moves.Rebase(rebasePath(s.Path, show.Path, showPath))
		c.processSeason(show, &season)
	}
	for _, e := range c.lib.EpisodesForShow(show.ID) {
		ep := *e
		ep.Path = moves.Rebase(rebasePath(e.Path, show.Path, showPath))
		c.processEpisode(show, &ep, showPath)
	}
}

// rebasePath translates a catalog path recorded under the show's old
// folder to the renamed folder.
func rebasePath(path, oldRoot, newRoot string) string {
	if oldRoot == newRoot || path == "" {
		return path
	}
	if path == oldRoot {
		return newRoot
	}
	prefix := oldRoot + string(os.PathSeparator)
	if strings.HasPrefix(path, prefix) {
		return filepath.Join(newRoot, strings.TrimPrefix(path, prefix))
	}
	return path
}
