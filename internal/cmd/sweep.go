package cmd

import (
	"github.com/spf13/cobra"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/coordinator"
	"github.com/renamarr/renamarr/internal/journal"
)

var sweepLibraryPath string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile every show and movie in a catalog snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		lib, err := catalog.LoadSnapshot(sweepLibraryPath)
		if err != nil {
			return err
		}
		j, err := journal.New(cfg.EnableJournal, "", cfg.JournalRetentionDays)
		if err != nil {
			return err
		}
		j.StartSession("sweep")
		defer j.Flush()

		coord := coordinator.New(cfg, lib, j, log)
		defer coord.Close()
		coord.Sweep(cmd.Context())
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepLibraryPath, "library", "l", "", "Catalog snapshot file (required)")
	sweepCmd.MarkFlagRequired("library")
	rootCmd.AddCommand(sweepCmd)
}
