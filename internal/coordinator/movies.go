package coordinator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/render"
)

// handleMovie processes a movie notification: cooldown and identity gates,
// then the file rename.
func (c *Coordinator) handleMovie(ctx context.Context, movie *catalog.Movie) {
	log := c.log.With().Str("movie", movie.ID).Str("name", movie.Name).Logger()

	if c.underCooldown(movie.ID) {
		log.Debug().Msg("skipped: cooldown active")
		return
	}

	state := c.identity.Compute(movie.ID, movie.ProviderIDs)
	if !state.FirstTime && !state.Changed {
		log.Debug().Msg("skipped: provider identity unchanged")
		return
	}
	if state.Changed {
		log.Info().Str("provider", state.ChangedProvider).
			Msg("provider identity changed, movie was re-identified")
	}

	c.processMovie(movie, state.ChangedProvider)
}

// processMovie renames a movie file (and its subtitle sidecars) to the
// canonical template name. Used by both the event path and the bulk sweep.
func (c *Coordinator) processMovie(movie *catalog.Movie, changedProvider string) {
	log := c.log.With().Str("movie", movie.ID).Str("name", movie.Name).Logger()

	if movie.Path == "" {
		log.Info().Msg("skipped: movie has no file path")
		return
	}
	if _, err := os.Stat(movie.Path); err != nil {
		log.Info().Str("path", movie.Path).Msg("skipped: movie file missing on disk")
		return
	}
	if movie.Name == "" {
		log.Info().Msg("skipped: movie has no name")
		return
	}
	base := filepath.Base(movie.Path)
	if !render.IsVideo(base) && !render.IsSubtitle(base) {
		log.Info().Str("path", movie.Path).Msg("skipped: not a recognized media file")
		return
	}

	provider, providerID := c.providerField(movie.ProviderIDs, changedProvider)
	name := render.Render(c.cfg.Movie, render.Fields{
		Movie:      movie.Name,
		Title:      movie.Name,
		Year:       movie.Year,
		Season:     catalog.NumberUnset,
		Episode:    catalog.NumberUnset,
		Provider:   provider,
		ProviderID: providerID,
	})
	if name == "" {
		log.Error().Msg("movie template rendered an unusable name, rename aborted")
		return
	}
	desired := name + render.ExtractExtension(base)

	renamed, err := c.exec.TryRename(movie.Path, desired)
	if err != nil {
		log.Warn().Err(err).Msg("movie rename failed")
		return
	}
	if renamed {
		c.renameSidecars(filepath.Dir(movie.Path), base, name)
	}
}
