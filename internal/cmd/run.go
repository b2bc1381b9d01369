package cmd

import (
	"github.com/spf13/cobra"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/coordinator"
	"github.com/renamarr/renamarr/internal/journal"
)

var (
	runLibraryPath string
	runEventsPath  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay an event file against a catalog snapshot",
	Long: `Run feeds recorded "item changed" notifications through the reconciler in
order, exactly as a host application would deliver them. The event file is
a JSON array of {kind, item} records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		lib, err := catalog.LoadSnapshot(runLibraryPath)
		if err != nil {
			return err
		}
		events, err := catalog.LoadEvents(runEventsPath)
		if err != nil {
			return err
		}
		j, err := journal.New(cfg.EnableJournal, "", cfg.JournalRetentionDays)
		if err != nil {
			return err
		}
		j.StartSession("event-replay")
		defer j.Flush()

		coord := coordinator.New(cfg, lib, j, log)
		defer coord.Close()
		for _, n := range events {
			coord.HandleItemUpdated(cmd.Context(), n)
		}
		log.Info().Int("events", len(events)).Msg("event replay finished")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runLibraryPath, "library", "l", "", "Catalog snapshot file (required)")
	runCmd.Flags().StringVarP(&runEventsPath, "events", "e", "", "Event file to replay (required)")
	runCmd.MarkFlagRequired("library")
	runCmd.MarkFlagRequired("events")
	rootCmd.AddCommand(runCmd)
}
