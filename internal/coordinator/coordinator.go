// Package coordinator composes the reconciliation pipeline: it receives
// host notifications, decides whether to act (cooldown, identity change,
// bulk refresh), and drives normalization, remapping, rendering and the
// safe-rename executor for each entity kind.
package coordinator

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/bulk"
	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/config"
	"github.com/renamarr/renamarr/internal/fsops"
	"github.com/renamarr/renamarr/internal/identity"
	"github.com/renamarr/renamarr/internal/journal"
	"github.com/renamarr/renamarr/internal/layout"
	"github.com/renamarr/renamarr/internal/remap"
	"github.com/renamarr/renamarr/internal/retry"
)

// Coordinator owns all derived reconciliation state. The state is created
// lazily, cleared as a unit by ClearState, and never persisted: correctness
// after a restart comes from the cooldown and identity hash being cheap to
// recompute.
type Coordinator struct {
	cfg        *config.Config
	lib        catalog.Library
	exec       *fsops.Executor
	normalizer *layout.Normalizer
	remapper   *remap.Remapper
	retries    *retry.Queue
	identity   *identity.Detector
	bulkDetect *bulk.Detector
	log        zerolog.Logger

	// lastAttempt implements the per-item cooldown; entries expire on the
	// cooldown window.
	lastAttempt *gocache.Cache
	// seasonNames caches catalog season display-name lookups.
	seasonNames *gocache.Cache

	// mu guards the maps below against the background sweep.
	mu              sync.Mutex
	cascadedShows   map[string]struct{}
	pendingEpisodes map[string]*catalog.Episode

	clock func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	sweepWG sync.WaitGroup
}

// New wires a coordinator from its collaborators. The journal may be nil.
func New(cfg *config.Config, lib catalog.Library, j *journal.Journal, log zerolog.Logger) *Coordinator {
	exec := fsops.New(cfg.DryRun, j, log)
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		cfg:             cfg,
		lib:             lib,
		exec:            exec,
		normalizer:      layout.New(exec, log),
		remapper:        remap.New(lib, cfg.FallbackEpisodesPerSeason, cfg.OverstuffedSeasonThreshold, log),
		retries:         retry.New(cfg.RetryDelay(), cfg.RetryMaxAttempts, log),
		identity:        identity.New(cfg.ProviderPreference),
		bulkDetect:      bulk.New(cfg.BulkWindow(), cfg.BulkThreshold, cfg.BulkCooldown()),
		log:             log,
		lastAttempt:     gocache.New(cfg.Cooldown(), 10*time.Minute),
		seasonNames:     gocache.New(time.Hour, 10*time.Minute),
		cascadedShows:   make(map[string]struct{}),
		pendingEpisodes: make(map[string]*catalog.Episode),
		clock:           time.Now,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// HandleItemUpdated is the single entry point for host "item changed"
// notifications. Each notification is processed to completion; the only
// asynchronous path is the bulk sweep, which is dispatched as a detached
// task so it does not block the caller.
func (c *Coordinator) HandleItemUpdated(ctx context.Context, n catalog.Notification) {
	if n.Item == nil {
		return
	}
	kind := n.Item.ItemKind()
	if !c.cfg.KindEnabled(kind.String()) {
		c.log.Debug().Str("kind", kind.String()).Str("item", n.Item.ItemID()).
			Msg("skipped: feature disabled for this kind")
		c.sweepRetries(ctx)
		return
	}

	switch item := n.Item.(type) {
	case *catalog.Show:
		c.handleShow(ctx, item)
	case *catalog.Season:
		c.handleSeason(ctx, item)
	case *catalog.Episode:
		c.handleEpisode(ctx, item, false)
	case *catalog.Movie:
		c.handleMovie(ctx, item)
	}

	// The retry queue is swept once per incoming event; there is no
	// separate timer thread.
	c.sweepRetries(ctx)
}

// ClearState resets every piece of coordinator-owned derived state. The
// host calls this when unloading or reloading the component.
func (c *Coordinator) ClearState() {
	c.lastAttempt.Flush()
	c.seasonNames.Flush()
	c.identity.Reset()
	c.bulkDetect.Reset()
	c.retries.Reset()
	c.remapper.Reset()

	c.mu.Lock()
	c.cascadedShows = make(map[string]struct{})
	c.pendingEpisodes = make(map[string]*catalog.Episode)
	c.mu.Unlock()

	c.log.Info().Msg("coordinator state cleared")
}

// Close cancels any in-flight background sweep and waits for it to stop.
func (c *Coordinator) Close() {
	c.cancel()
	c.sweepWG.Wait()
}

// underCooldown reports whether the entity was attempted within the
// cooldown window, recording this attempt otherwise.
func (c *Coordinator) underCooldown(entityID string) bool {
	// A zero window disables the cooldown; go-cache would treat a zero TTL
	// as never-expiring.
	if c.cfg.Cooldown() <= 0 {
		return false
	}
	if _, found := c.lastAttempt.Get(entityID); found {
		return true
	}
	c.lastAttempt.Set(entityID, c.clock(), gocache.DefaultExpiration)
	return false
}

// providerField picks the provider label/id pair used for the {provider}
// and {id} template fields: a just-changed provider wins, then the
// configured preference order, then any provider in stable order.
func (c *Coordinator) providerField(ids map[string]string, changedProvider string) (string, string) {
	if len(ids) == 0 {
		return "", ""
	}
	if changedProvider != "" {
		if id, ok := ids[changedProvider]; ok {
			return changedProvider, id
		}
	}
	for _, preferred := range c.cfg.ProviderPreference {
		if id, ok := ids[preferred]; ok {
			return preferred, id
		}
	}
	labels := make([]string, 0, len(ids))
	for label := range ids {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels[0], ids[labels[0]]
}

// seasonDisplayName returns the catalog's display name for a season,
// cached per show/season.
func (c *Coordinator) seasonDisplayName(showID string, season int) string {
	key := showID + ":" + strconv.Itoa(season)
	if cached, found := c.seasonNames.Get(key); found {
		return cached.(string)
	}
	name := c.lib.SeasonName(showID, season)
	c.seasonNames.Set(key, name, gocache.DefaultExpiration)
	return name
}

// markCascaded records that a show's descendants were swept this session.
// Returns false when the show was already cascaded.
func (c *Coordinator) markCascaded(showID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.cascadedShows[showID]; done {
		return false
	}
	c.cascadedShows[showID] = struct{}{}
	return true
}

// sweepRetries replays queued episodes whose minimum delay has elapsed.
// A retry re-enters the full per-episode decision path, so a retry that
// now has complete metadata proceeds exactly like a fresh event.
func (c *Coordinator) sweepRetries(ctx context.Context) {
	due := c.retries.Due(c.clock())
	for _, entry := range due {
		c.mu.Lock()
		ep := c.pendingEpisodes[entry.EpisodeID]
		c.mu.Unlock()
		if ep == nil {
			c.retries.Succeeded(entry.EpisodeID)
			continue
		}
		c.log.Info().Str("episode", entry.EpisodeID).Str("reason", entry.Reason).
			Int("attempt", entry.Attempts).Msg("retrying queued episode")
		c.handleEpisode(ctx, ep, true)
	}

	// Drop payloads for entries the queue has exhausted.
	c.mu.Lock()
	for id := range c.pendingEpisodes {
		if !c.retries.Queued(id) {
			delete(c.pendingEpisodes, id)
		}
	}
	c.mu.Unlock()
}

func (c *Coordinator) enqueueRetry(ep *catalog.Episode, reason string) {
	c.mu.Lock()
	c.pendingEpisodes[ep.ID] = ep
	c.mu.Unlock()
	c.retries.MarkRetryable(ep.ID, reason, c.clock())
}
