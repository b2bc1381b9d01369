package coordinator

import (
	"context"
	"os"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/render"
)

// handleSeason processes a season notification delivered by the host.
func (c *Coordinator) handleSeason(ctx context.Context, season *catalog.Season) {
	show, ok := c.lib.Show(season.ShowID)
	if !ok {
		c.log.Info().Str("season", season.ID).Str("show", season.ShowID).
			Msg("skipped: season's show not found in catalog")
		return
	}
	c.processSeason(show, season)
}

// processSeason renames a season folder to its canonical name. It is used
// both for direct season notifications and for the show cascade.
func (c *Coordinator) processSeason(show *catalog.Show, season *catalog.Season) {
	log := c.log.With().Str("season", season.ID).Str("show", show.ID).Logger()

	if c.underCooldown(season.ID) {
		log.Debug().Msg("skipped: cooldown active")
		return
	}
	if season.Path == "" {
		log.Info().Msg("skipped: season has no folder path")
		return
	}
	if _, err := os.Stat(season.Path); err != nil {
		log.Info().Str("path", season.Path).Msg("skipped: season folder missing on disk")
		return
	}
	if season.Number == catalog.NumberUnset {
		log.Info().Msg("skipped: season has no number in metadata")
		return
	}

	desired := c.renderSeasonFolder(show, season.Number)
	if desired == "" {
		log.Warn().Msg("season folder template rendered empty, folder left alone")
		return
	}
	if _, err := c.exec.TryRename(season.Path, desired); err != nil {
		log.Warn().Err(err).Msg("season folder rename failed")
	}
}

// renderSeasonFolder renders the canonical folder name for a season
// number, honoring the catalog's season display name when it has one.
func (c *Coordinator) renderSeasonFolder(show *catalog.Show, seasonNumber int) string {
	return render.Render(c.cfg.SeasonFolder, render.Fields{
		Show:       show.Name,
		Year:       show.DisplayYear(),
		Season:     seasonNumber,
		Episode:    catalog.NumberUnset,
		SeasonName: c.seasonDisplayName(show.ID, seasonNumber),
	})
}
