package retry

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDueRespectsMinDelay(t *testing.T) {
	t.Parallel()
	q := New(5*time.Minute, 3, zerolog.Nop())
	start := time.Now()
	q.MarkRetryable("ep1", "metadata incomplete", start)

	if due := q.Due(start.Add(time.Minute)); len(due) != 0 {
		t.Errorf("Due before min delay returned %d entries, want 0", len(due))
	}
	due := q.Due(start.Add(6 * time.Minute))
	if len(due) != 1 || due[0].EpisodeID != "ep1" {
		t.Fatalf("Due after min delay = %+v, want ep1", due)
	}
	if due[0].Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", due[0].Attempts)
	}
}

func TestSucceededRemovesEntry(t *testing.T) {
	t.Parallel()
	q := New(time.Minute, 3, zerolog.Nop())
	q.MarkRetryable("ep1", "title looks raw", time.Now())
	q.Succeeded("ep1")
	if q.Queued("ep1") {
		t.Errorf("episode still queued after Succeeded")
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}

func TestAttemptExhaustion(t *testing.T) {
	t.Parallel()
	const maxAttempts = 3
	q := New(time.Minute, maxAttempts, zerolog.Nop())
	now := time.Now()
	q.MarkRetryable("ep1", "metadata incomplete", now)

	retries := 0
	for i := 1; i <= maxAttempts+3; i++ {
		now = now.Add(2 * time.Minute)
		retries += len(q.Due(now))
	}
	if retries != maxAttempts {
		t.Errorf("episode retried %d times, want exactly %d", retries, maxAttempts)
	}
	if q.Queued("ep1") {
		t.Errorf("episode still queued after exhaustion")
	}
}

func TestMarkRetryableRefreshesExisting(t *testing.T) {
	t.Parallel()
	q := New(time.Minute, 5, zerolog.Nop())
	start := time.Now()
	q.MarkRetryable("ep1", "first reason", start)
	q.MarkRetryable("ep1", "second reason", start.Add(30*time.Second))

	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
	due := q.Due(start.Add(2 * time.Minute))
	if len(due) != 1 || due[0].Reason != "second reason" {
		t.Errorf("Due = %+v, want refreshed reason", due)
	}
}
