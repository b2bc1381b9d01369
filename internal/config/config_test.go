package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing file config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBackfillsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{"enable_shows": true, "cooldown_seconds": 5}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CooldownSeconds != 5 {
		t.Errorf("CooldownSeconds = %d, want 5", cfg.CooldownSeconds)
	}
	if cfg.Episode != DefaultConfig().Episode {
		t.Errorf("Episode template = %q, want default", cfg.Episode)
	}
	if cfg.RetryMaxAttempts != DefaultConfig().RetryMaxAttempts {
		t.Errorf("RetryMaxAttempts = %d, want default", cfg.RetryMaxAttempts)
	}
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{"cooldown_seconds": 0, "retry_max_attempts": 0, "journal_retention_days": 0, "enable_movies": false}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CooldownSeconds != 0 {
		t.Errorf("CooldownSeconds = %d, want explicit 0", cfg.CooldownSeconds)
	}
	if cfg.RetryMaxAttempts != 0 {
		t.Errorf("RetryMaxAttempts = %d, want explicit 0", cfg.RetryMaxAttempts)
	}
	if cfg.JournalRetentionDays != 0 {
		t.Errorf("JournalRetentionDays = %d, want explicit 0", cfg.JournalRetentionDays)
	}
	if cfg.EnableMovies {
		t.Error("EnableMovies = true, want explicit false")
	}
	// Keys absent from the file still take defaults.
	if cfg.BulkThreshold != DefaultConfig().BulkThreshold {
		t.Errorf("BulkThreshold = %d, want default", cfg.BulkThreshold)
	}
	if !cfg.EnableShows {
		t.Error("EnableShows = false, want default true")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.DryRun = true
	cfg.ShowFolder = "{title} [{provider}-{id}]"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed JSON")
	}
}

func TestDurations(t *testing.T) {
	t.Parallel()
	cfg := &Config{CooldownSeconds: 60, RetryDelaySeconds: 300, BulkWindowSeconds: 45, BulkCooldownSeconds: 600}
	if got := cfg.Cooldown(); got != time.Minute {
		t.Errorf("Cooldown() = %v, want 1m", got)
	}
	if got := cfg.RetryDelay(); got != 5*time.Minute {
		t.Errorf("RetryDelay() = %v, want 5m", got)
	}
	if got := cfg.BulkWindow(); got != 45*time.Second {
		t.Errorf("BulkWindow() = %v, want 45s", got)
	}
	if got := cfg.BulkCooldown(); got != 10*time.Minute {
		t.Errorf("BulkCooldown() = %v, want 10m", got)
	}
}

func TestKindEnabled(t *testing.T) {
	t.Parallel()
	cfg := &Config{EnableShows: true, EnableEpisodes: true}
	tests := []struct {
		kind string
		want bool
	}{
		{"show", true},
		{"episode", true},
		{"season", false},
		{"movie", false},
		{"unknown", false},
	}
	for _, tc := range tests {
		if got := cfg.KindEnabled(tc.kind); got != tc.want {
			t.Errorf("KindEnabled(%q) = %v, want %v", tc.kind, got, tc.want)
		}
	}
}
