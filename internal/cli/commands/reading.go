package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/structeye/internal/api/client"
	"github.com/structeye/internal/models"
)

func NewReadingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reading",
		Short:   "Sensor reading commands",
		Aliases: []string{"readings", "r"},
	}

	cmd.AddCommand(newReadingListCommand())
	cmd.AddCommand(newReadingAnomaliesCommand())
	cmd.AddCommand(newReadingIngestCommand())
	cmd.AddCommand(newReadingSimulateCommand())
	cmd.AddCommand(newReadingStatsCommand())

	return cmd
}

func newReadingListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List recent readings",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			readings, err := c.ListReadings(limit)
			if err != nil {
				return fmt.Errorf("failed to list readings: %v", err)
			}

			return printReadings(readings)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of readings")
	return cmd
}

func newReadingAnomaliesCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "List recent anomalous readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			readings, err := c.ListAnomalies(limit)
			if err != nil {
				return fmt.Errorf("failed to list anomalies: %v", err)
			}

			return printReadings(readings)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of readings")
	return cmd
}

func newReadingIngestCommand() *cobra.Command {
	var vibration, strain, temperature float64

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest one reading and run the full pipeline on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			processed, err := c.IngestReading(vibration, strain, temperature)
			if err != nil {
				return fmt.Errorf("failed to ingest reading: %v", err)
			}

			printProcessed(processed.ID, processed.AlertLevel, processed.IsAnomaly, processed.AnomalyScore, string(processed.Dispatch), processed.Messages)
			return nil
		},
	}

	cmd.Flags().Float64Var(&vibration, "vibration", 0, "Vibration value")
	cmd.Flags().Float64Var(&strain, "strain", 0, "Strain value")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Temperature value (°C)")
	return cmd
}

func newReadingSimulateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Generate one demo reading and process it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			processed, err := c.SimulateReading()
			if err != nil {
				return fmt.Errorf("failed to simulate reading: %v", err)
			}

			printProcessed(processed.ID, processed.AlertLevel, processed.IsAnomaly, processed.AnomalyScore, string(processed.Dispatch), processed.Messages)
			return nil
		},
	}
}

func newReadingStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show 24h sensor statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			stats, err := c.SensorStatistics()
			if err != nil {
				return fmt.Errorf("failed to fetch statistics: %v", err)
			}

			fmt.Printf("Readings (24h): %d\n", stats.TotalReadings)
			fmt.Printf("Anomalies:      %d\n", stats.Anomalies)
			fmt.Printf("Alerts:         %d\n", stats.Alerts)
			fmt.Printf("Avg temp:       %.1f°C\n", stats.AvgTemperature)
			fmt.Printf("Avg vibration:  %.2f\n", stats.AvgVibration)
			fmt.Printf("Avg strain:     %.3f\n", stats.AvgStrain)
			return nil
		},
	}
}

func printReadings(readings []models.SensorReading) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tVIBRATION\tSTRAIN\tTEMP\tANOMALY\tSCORE\tLEVEL\tSENT")

	for _, r := range readings {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.3f\t%.1f\t%t\t%.3f\t%s\t%t\n",
			r.ID,
			r.Timestamp.Format(time.RFC3339),
			r.Vibration,
			r.Strain,
			r.Temperature,
			r.IsAnomaly,
			r.AnomalyScore,
			r.AlertLevel,
			r.AlertSent,
		)
	}

	return w.Flush()
}

func printProcessed(id uint, level models.AlertLevel, isAnomaly bool, score float64, dispatch string, messages []string) {
	fmt.Printf("Reading %d processed: level=%s anomaly=%t score=%.3f dispatch=%s\n", id, level, isAnomaly, score, dispatch)
	for _, msg := range messages {
		fmt.Printf("  - %s\n", msg)
	}
}
