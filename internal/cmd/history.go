package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/renamarr/renamarr/internal/journal"
)

var (
	historyLimit   int
	historyVerbose bool

	sessionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent reconciliation sessions from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		j, err := journal.New(cfg.EnableJournal, "", cfg.JournalRetentionDays)
		if err != nil {
			return err
		}
		sessions, err := j.ReadSessions(historyLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No journal sessions found.")
			return nil
		}

		for _, session := range sessions {
			meta := session.Metadata
			header := fmt.Sprintf("%s  %s  (%s)",
				meta.StartedAt.Format("2006-01-02 15:04:05"), meta.SessionID[:8], meta.Trigger)
			fmt.Println(sessionStyle.Render(header))
			fmt.Printf("  %s  %s  %s\n",
				okStyle.Render(fmt.Sprintf("%d ok", meta.SuccessfulOps)),
				failStyle.Render(fmt.Sprintf("%d failed", meta.FailedOps)),
				dryStyle.Render(fmt.Sprintf("%d dry-run", meta.DryRunOps)))

			if !historyVerbose {
				continue
			}
			for _, op := range session.Operations {
				marker := okStyle.Render("✓")
				switch {
				case op.DryRun:
					marker = dryStyle.Render("~")
				case !op.Success:
					marker = failStyle.Render("✗")
				}
				fmt.Printf("  %s %s %s -> %s\n", marker, op.Type, op.SourcePath, op.DestPath)
				if op.Error != "" {
					fmt.Printf("      %s\n", failStyle.Render(op.Error))
				}
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of sessions to show")
	historyCmd.Flags().BoolVarP(&historyVerbose, "verbose", "v", false, "Show individual operations")
	rootCmd.AddCommand(historyCmd)
}
