package coordinator

import (
	"context"
	"os"
)

// Sweep reconciles the whole catalog synchronously. This is the entry point
// for an operator-initiated sweep; bulk-refresh detection uses the same walk
// on a background goroutine.
func (c *Coordinator) Sweep(ctx context.Context) {
	c.runFullSweep(ctx)
}

// startBulkSweep dispatches a full-catalog sweep on a background goroutine.
// The sweep is tied to the coordinator's lifetime: Close cancels it and
// waits for it to drain.
func (c *Coordinator) startBulkSweep() {
	c.sweepWG.Add(1)
	go func() {
		defer c.sweepWG.Done()
		c.runFullSweep(c.ctx)
	}()
}

// runFullSweep walks every show and movie in the catalog and reconciles it.
// The per-show cooldown is deliberately not consulted: the trigger burst
// already stamped the shows it skipped, and the name-comparison
// short-circuit keeps an up-to-date library cheap to re-walk.
func (c *Coordinator) runFullSweep(ctx context.Context) {
	c.log.Info().Msg("full-catalog sweep started")

	shows := 0
	for _, show := range c.lib.Shows() {
		if ctx.Err() != nil {
			c.log.Info().Msg("full-catalog sweep canceled")
			return
		}
		if show.Path == "" || show.Name == "" {
			continue
		}
		if _, err := os.Stat(show.Path); err != nil {
			continue
		}
		// Seed the identity hash so the next routine event for this show
		// is recognized as unchanged.
		c.identity.Compute(show.ID, show.ProviderIDs)

		showPath := c.renameShowFolder(show, "", c.log)
		c.cascadeShow(ctx, show, showPath)
		shows++
	}

	movies := 0
	for _, movie := range c.lib.Movies() {
		if ctx.Err() != nil {
			c.log.Info().Msg("full-catalog sweep canceled")
			return
		}
		c.identity.Compute(movie.ID, movie.ProviderIDs)
		c.processMovie(movie, "")
		movies++
	}

	c.log.Info().Int("shows", shows).Int("movies", movies).Msg("full-catalog sweep finished")
}
