package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/playit-manager/playit-manager/internal/journal"
	"github.com/playit-manager/playit-manager/internal/logging"
)

var (
	historyLimit  int
	historyTunnel string
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tunnel changes",
		Long: `Shows the rename and port changes made from this machine, newest first,
followed by a per-tunnel summary.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of changes to show (default from config)")
	cmd.Flags().StringVarP(&historyTunnel, "tunnel", "t", "", "Only show changes of this tunnel id")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel))

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.HistoryLimit
	}

	path := cfg.JournalPath()
	records, err := journal.Recent(cmd.Context(), path, historyTunnel, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No changes recorded")
		return nil
	}

	fmt.Println("Recent changes:")
	fmt.Println("===============")
	for _, r := range records {
		outcome := "ok"
		if !r.Success {
			outcome = fmt.Sprintf("failed (status %d)", r.Status)
		}
		fmt.Printf("%s  %s %s: %q -> %q  %s\n",
			humanize.Time(r.RecordedAt), r.TunnelID, r.Field, r.OldValue, r.NewValue, outcome)
	}

	activity, err := journal.Activity(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to summarize history: %w", err)
	}

	fmt.Println()
	fmt.Println("Per tunnel:")
	fmt.Println("===========")
	for _, a := range activity {
		fmt.Printf("%s  %s attempts, %s succeeded, last %s\n",
			a.TunnelID, humanize.Comma(int64(a.Attempts)), humanize.Comma(int64(a.Succeeded)), humanize.Time(a.LastChange))
	}
	return nil
}
