// Package retry holds episodes whose metadata was incomplete at processing
// time and replays them once a minimum delay has elapsed. The queue is
// swept on every incoming host notification; there is no timer thread.
package retry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry tracks one queued episode.
type Entry struct {
	EpisodeID   string
	Reason      string
	Attempts    int
	LastAttempt time.Time
}

// Queue is the in-memory retry state. Entries are created on retryable
// failures and removed on success or attempt exhaustion.
type Queue struct {
	mu          sync.Mutex
	entries     map[string]*Entry
	minDelay    time.Duration
	maxAttempts int
	log         zerolog.Logger
}

func New(minDelay time.Duration, maxAttempts int, log zerolog.Logger) *Queue {
	return &Queue{
		entries:     make(map[string]*Entry),
		minDelay:    minDelay,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// MarkRetryable queues the episode, or refreshes the reason and attempt
// timestamp when it is already queued. The reason is a human-readable
// diagnostic, e.g. "episode title looks like a raw filename".
func (q *Queue) MarkRetryable(episodeID, reason string, now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, ok := q.entries[episodeID]; ok {
		entry.Reason = reason
		entry.LastAttempt = now
		return
	}
	q.entries[episodeID] = &Entry{EpisodeID: episodeID, Reason: reason, LastAttempt: now}
	q.log.Info().Str("episode", episodeID).Str("reason", reason).Msg("episode queued for retry")
}

// Due returns the entries eligible for a retry at now, bumping their
// attempt counts. Entries that exhaust the configured maximum are removed
// and never returned again.
func (q *Queue) Due(now time.Time) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Entry
	for id, entry := range q.entries {
		if now.Sub(entry.LastAttempt) < q.minDelay {
			continue
		}
		entry.Attempts++
		entry.LastAttempt = now
		if entry.Attempts > q.maxAttempts {
			delete(q.entries, id)
			q.log.Warn().Str("episode", id).Str("reason", entry.Reason).
				Int("attempts", entry.Attempts-1).
				Msg("retry attempts exhausted, episode dropped from queue")
			continue
		}
		due = append(due, *entry)
	}
	return due
}

// Succeeded removes an episode from the queue after successful processing.
func (q *Queue) Succeeded(episodeID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.entries[episodeID]; ok {
		delete(q.entries, episodeID)
		q.log.Info().Str("episode", episodeID).Msg("episode retry resolved")
	}
}

// Queued reports whether the episode is currently queued.
func (q *Queue) Queued(episodeID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[episodeID]
	return ok
}

// Len reports the number of queued episodes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Reset drops all entries.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = make(map[string]*Entry)
}
