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

// handleEpisode processes an episode notification, or a replay from the
// retry queue when isRetry is set. Retries skip the cooldown gate because
// the queue already enforces its own minimum delay.
func (c *Coordinator) handleEpisode(ctx context.Context, ep *catalog.Episode, isRetry bool) {
	show, ok := c.lib.Show(ep.ShowID)
	if !ok {
		c.log.Info().Str("episode", ep.ID).Str("show", ep.ShowID).
			Msg("skipped: episode's show not found in catalog")
		return
	}
	c.reconcileEpisode(show, ep, show.Path, isRetry)
}

// processEpisode is the cascade entry point for one episode.
func (c *Coordinator) processEpisode(show *catalog.Show, ep *catalog.Episode, showPath string) {
	c.reconcileEpisode(show, ep, showPath, false)
}

// reconcileEpisode runs the full per-episode decision path: gates, numbering
// resolution, relocation into the correct season folder, token verification
// and finally the rename itself.
func (c *Coordinator) reconcileEpisode(show *catalog.Show, ep *catalog.Episode, showPath string, isRetry bool) {
	log := c.log.With().Str("episode", ep.ID).Str("show", show.ID).Logger()

	if !isRetry && c.underCooldown(ep.ID) {
		log.Debug().Msg("skipped: cooldown active")
		return
	}
	if ep.Path == "" {
		log.Info().Msg("skipped: episode has no file path")
		return
	}
	if _, err := os.Stat(ep.Path); err != nil {
		log.Info().Str("path", ep.Path).Msg("skipped: episode file missing on disk")
		return
	}
	base := filepath.Base(ep.Path)
	if !render.IsVideo(base) && !render.IsSubtitle(base) {
		log.Info().Str("path", ep.Path).Msg("skipped: not a recognized media file")
		return
	}

	if ep.Title != "" && render.LooksLikeRawFilename(ep.Title) {
		log.Info().Str("title", ep.Title).
			Msg("episode title looks like a raw filename, waiting for real metadata")
		c.enqueueRetry(ep, "episode title looks like a raw filename")
		return
	}

	season, episode, ok := c.resolveNumbering(ep, base, log)
	if !ok {
		return
	}

	// Metadata is authoritative. A file whose own tokens contradict it was
	// misidentified somewhere upstream; renaming would paper over that.
	if ep.Season >= 0 && ep.Episode >= 0 {
		if ps, pe, found := render.ParseSeasonEpisode(base, ""); found && (ps != ep.Season || pe != ep.Episode) {
			log.Error().Str("file", base).
				Int("file_season", ps).Int("file_episode", pe).
				Int("meta_season", ep.Season).Int("meta_episode", ep.Episode).
				Msg("filename numbering contradicts metadata, rename aborted")
			return
		}
	}

	path := ep.Path
	folder := filepath.Dir(path)
	if folderSeason, found := render.ExtractSeasonNumber(filepath.Base(folder)); found && folderSeason != season {
		seasonFolder := c.renderSeasonFolder(show, season)
		if seasonFolder != "" {
			destDir := filepath.Join(showPath, seasonFolder)
			if err := c.exec.EnsureDir(destDir); err != nil {
				log.Warn().Err(err).Msg("could not create season folder for relocation")
				return
			}
			destPath, moved, err := c.exec.MoveInto(path, destDir)
			if err != nil {
				log.Warn().Err(err).Msg("episode relocation failed")
				return
			}
			if moved {
				path = destPath
				folder = destDir
			}
		}
	}

	name := render.Render(c.cfg.Episode, render.Fields{
		Show:       show.Name,
		Title:      ep.Title,
		Year:       show.DisplayYear(),
		Season:     season,
		Episode:    episode,
		SeasonName: c.seasonDisplayName(show.ID, season),
	})
	if name == "" {
		log.Error().Msg("episode template rendered an unusable name, rename aborted")
		return
	}
	desired := name + render.ExtractExtension(base)

	renamed, err := c.exec.TryRenameEpisode(path, desired, season, episode)
	if err != nil {
		log.Warn().Err(err).Msg("episode rename failed")
		return
	}
	if renamed {
		c.renameSidecars(folder, base, name)
	}
	c.retries.Succeeded(ep.ID)
}

// resolveNumbering decides the season and episode numbers used for naming.
// Metadata wins when complete; otherwise the remapper and unambiguous
// filename tokens are consulted, and tentative parses are queued for retry.
func (c *Coordinator) resolveNumbering(ep *catalog.Episode, base string, log zerolog.Logger) (int, int, bool) {
	if ep.Season >= 0 && ep.Episode >= 0 {
		return ep.Season, ep.Episode, true
	}

	folder := filepath.Dir(ep.Path)
	if c.remapper.NeedsRemap(ep.ShowID, folder) {
		if a, ok := c.remapper.Resolve(ep); ok {
			log.Info().Int("season", a.Season).Int("episode", a.Episode).
				Str("source", string(a.Source)).Msg("numbering derived by remapper")
			return a.Season, a.Episode, true
		}
	}

	if s, e, found := render.ParseSeasonEpisode(base, filepath.Base(folder)); found {
		if _, unambiguous := render.ParseEpisodeNumber(base); unambiguous {
			log.Info().Int("season", s).Int("episode", e).
				Msg("numbering taken from filename tokens")
			return s, e, true
		}
		c.enqueueRetry(ep, "episode number only tentatively parseable from filename")
		return 0, 0, false
	}
	if _, loose := render.LooseEpisodeNumber(base); loose {
		c.enqueueRetry(ep, "episode number only tentatively parseable from filename")
		return 0, 0, false
	}

	log.Info().Msg("skipped: episode number absent from metadata and filename")
	return 0, 0, false
}

// renameSidecars renames subtitle files that share the renamed episode's old
// stem, preserving each sidecar's language suffix and extension.
func (c *Coordinator) renameSidecars(dir, oldBase, newStem string) {
	oldStem := strings.TrimSuffix(oldBase, render.ExtractExtension(oldBase))
	if oldStem == "" || oldStem == newStem {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !render.IsSubtitle(name) || !strings.HasPrefix(name, oldStem) {
			continue
		}
		desired := newStem + render.ExtractExtension(name)
		if _, err := c.exec.TryRename(filepath.Join(dir, name), desired); err != nil {
			c.log.Warn().Err(err).Str("sidecar", name).Msg("sidecar rename failed")
		}
	}
}
