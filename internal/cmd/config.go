package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/renamarr/renamarr/internal/config"
)

var (
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true).Underline(true)
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the renamarr configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.Path()
			if err != nil {
				return err
			}
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		printSection("Features")
		printEntry("shows", strconv.FormatBool(cfg.EnableShows))
		printEntry("seasons", strconv.FormatBool(cfg.EnableSeasons))
		printEntry("episodes", strconv.FormatBool(cfg.EnableEpisodes))
		printEntry("movies", strconv.FormatBool(cfg.EnableMovies))
		printEntry("dry run", strconv.FormatBool(cfg.DryRun))

		printSection("Templates")
		printEntry("show folder", cfg.ShowFolder)
		printEntry("season folder", cfg.SeasonFolder)
		printEntry("episode", cfg.Episode)
		printEntry("movie", cfg.Movie)

		printSection("Timing")
		printEntry("cooldown", fmt.Sprintf("%ds", cfg.CooldownSeconds))
		printEntry("retry delay", fmt.Sprintf("%ds (max %d attempts)", cfg.RetryDelaySeconds, cfg.RetryMaxAttempts))
		printEntry("bulk window", fmt.Sprintf("%ds (threshold %d, cooldown %ds)",
			cfg.BulkWindowSeconds, cfg.BulkThreshold, cfg.BulkCooldownSeconds))

		printSection("Remapping")
		printEntry("fallback episodes/season", strconv.Itoa(cfg.FallbackEpisodesPerSeason))
		printEntry("overstuffed threshold", strconv.Itoa(cfg.OverstuffedSeasonThreshold))

		printSection("Providers")
		printEntry("preference", strings.Join(cfg.ProviderPreference, ", "))

		printSection("Journal")
		printEntry("enabled", strconv.FormatBool(cfg.EnableJournal))
		printEntry("retention", fmt.Sprintf("%d days", cfg.JournalRetentionDays))
		return nil
	},
}

func printSection(name string) {
	fmt.Println(sectionStyle.Render(name))
}

func printEntry(key, value string) {
	fmt.Printf("  %s %s\n", keyStyle.Render(key+":"), valueStyle.Render(value))
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
