package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds every knob the reconciler honors. Templates use {var}
// placeholders resolved by the render package.
type Config struct {
	// Per-kind feature toggles.
	EnableShows    bool `json:"enable_shows"`
	EnableSeasons  bool `json:"enable_seasons"`
	EnableEpisodes bool `json:"enable_episodes"`
	EnableMovies   bool `json:"enable_movies"`

	// DryRun reports every decision without touching the filesystem.
	DryRun bool `json:"dry_run"`

	// CooldownSeconds is the minimum gap between processing attempts for
	// the same entity.
	CooldownSeconds int `json:"cooldown_seconds"`

	// Retry queue tuning.
	RetryDelaySeconds int `json:"retry_delay_seconds"`
	RetryMaxAttempts  int `json:"retry_max_attempts"`

	// Bulk refresh detection: how many show updates inside the window
	// trigger a full sweep, and how long to wait before re-triggering.
	BulkWindowSeconds   int `json:"bulk_window_seconds"`
	BulkThreshold       int `json:"bulk_threshold"`
	BulkCooldownSeconds int `json:"bulk_cooldown_seconds"`

	// FallbackEpisodesPerSeason seeds the remapper's last-resort split when
	// the catalog has no usable season boundaries.
	FallbackEpisodesPerSeason int `json:"fallback_episodes_per_season"`

	// OverstuffedSeasonThreshold flags a nominal season-1 folder as
	// unreliable once it holds at least this many video files.
	OverstuffedSeasonThreshold int `json:"overstuffed_season_threshold"`

	// Naming templates per entity kind.
	ShowFolder   string `json:"show_folder"`
	SeasonFolder string `json:"season_folder"`
	Episode      string `json:"episode"`
	Movie        string `json:"movie"`

	// ProviderPreference orders external providers for the {provider}/{id}
	// template fields and for identity-change attribution.
	ProviderPreference []string `json:"provider_preference"`

	// Operation journal settings.
	EnableJournal        bool `json:"enable_journal"`
	JournalRetentionDays int  `json:"journal_retention_days"`

	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EnableShows:                true,
		EnableSeasons:              true,
		EnableEpisodes:             true,
		EnableMovies:               true,
		DryRun:                     false,
		CooldownSeconds:            60,
		RetryDelaySeconds:          300,
		RetryMaxAttempts:           5,
		BulkWindowSeconds:          60,
		BulkThreshold:              10,
		BulkCooldownSeconds:        600,
		FallbackEpisodesPerSeason:  26,
		OverstuffedSeasonThreshold: 50,
		ShowFolder:                 "{title} ({year})",
		SeasonFolder:               "Season {season}",
		Episode:                    "{show} S{season}E{episode}",
		Movie:                      "{title} ({year})",
		ProviderPreference:         []string{"tmdb", "tvdb", "imdb"},
		EnableJournal:              true,
		JournalRetentionDays:       30,
		LogLevel:                   "info",
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".renamarr", "config.json"), nil
}

// Load reads the configuration from path, or the default location when path
// is empty. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults: absent keys keep their default while an
	// explicit zero stays zero (cooldown_seconds 0 disables the cooldown,
	// journal_retention_days 0 keeps sessions forever).
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults backfills the fields an empty value cannot mean: naming
// templates, the provider order and the log level.
func (cfg *Config) fillDefaults() {
	defaults := DefaultConfig()
	if cfg.ShowFolder == "" {
		cfg.ShowFolder = defaults.ShowFolder
	}
	if cfg.SeasonFolder == "" {
		cfg.SeasonFolder = defaults.SeasonFolder
	}
	if cfg.Episode == "" {
		cfg.Episode = defaults.Episode
	}
	if cfg.Movie == "" {
		cfg.Movie = defaults.Movie
	}
	if len(cfg.ProviderPreference) == 0 {
		cfg.ProviderPreference = defaults.ProviderPreference
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
}

// Save writes the configuration to path, or the default location when path
// is empty.
func (cfg *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Cooldown returns the per-item cooldown as a duration.
func (cfg *Config) Cooldown() time.Duration {
	return time.Duration(cfg.CooldownSeconds) * time.Second
}

// RetryDelay returns the minimum gap between retry attempts.
func (cfg *Config) RetryDelay() time.Duration {
	return time.Duration(cfg.RetryDelaySeconds) * time.Second
}

// BulkWindow returns the sliding window for bulk refresh detection.
func (cfg *Config) BulkWindow() time.Duration {
	return time.Duration(cfg.BulkWindowSeconds) * time.Second
}

// BulkCooldown returns the minimum gap between bulk sweep triggers.
func (cfg *Config) BulkCooldown() time.Duration {
	return time.Duration(cfg.BulkCooldownSeconds) * time.Second
}

// KindEnabled reports whether reconciliation is switched on for the given
// entity kind name as reported by catalog.Kind.String.
func (cfg *Config) KindEnabled(kind string) bool {
	switch kind {
	case "show":
		return cfg.EnableShows
	case "season":
		return cfg.EnableSeasons
	case "episode":
		return cfg.EnableEpisodes
	case "movie":
		return cfg.EnableMovies
	default:
		return false
	}
}
