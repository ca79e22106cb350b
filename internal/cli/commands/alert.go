package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/structeye/internal/api/client"
)

func NewAlertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alert",
		Short:   "Alert audit commands",
		Aliases: []string{"alerts", "a"},
	}

	cmd.AddCommand(newAlertHistoryCommand())
	cmd.AddCommand(newAlertStatsCommand())

	return cmd
}

func newAlertHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List recent delivery attempts",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			records, err := c.AlertHistory(limit)
			if err != nil {
				return fmt.Errorf("failed to fetch alert history: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tREADING\tCHANNEL\tLEVEL\tRECIPIENT\tSENT\tOK\tERROR")

			for _, rec := range records {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
					rec.ID,
					rec.ReadingID,
					rec.Channel,
					rec.Level,
					rec.Recipient,
					rec.SentAt.Format(time.RFC3339),
					rec.Success,
					rec.ErrorDetail,
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records")
	return cmd
}

func newAlertStatsCommand() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show alert delivery statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			stats, err := c.AlertStatistics(window)
			if err != nil {
				return fmt.Errorf("failed to fetch alert statistics: %v", err)
			}

			fmt.Printf("Total attempts: %d\n", stats.Total)
			fmt.Printf("Succeeded:      %d\n", stats.Succeeded)
			fmt.Printf("Failed:         %d\n", stats.Failed)
			fmt.Printf("Success rate:   %.1f%%\n", stats.SuccessRate)
			for channel, n := range stats.ByChannel {
				fmt.Printf("  %s: %d\n", channel, n)
			}
			for level, n := range stats.BySeverity {
				fmt.Printf("  %s: %d\n", level, n)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 24, "Window in hours")
	return cmd
}
