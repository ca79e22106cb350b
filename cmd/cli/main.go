package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/structeye/internal/cli/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "structeye-cli",
		Short: "StructEye - structural health monitoring CLI",
		Long: `Command line interface for the StructEye daemon.

Set STRUCTEYE_API_URL and STRUCTEYE_API_TOKEN to point at a running daemon.`,
	}

	rootCmd.AddCommand(commands.NewReadingCommand())
	rootCmd.AddCommand(commands.NewModelCommand())
	rootCmd.AddCommand(commands.NewAlertCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
