package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"panelctl/internal/commands"
	"panelctl/internal/output"
)

var (
	jsonFlag     bool
	embeddedFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "panelctl",
	Short:         "Settings and update control panel",
	Long:          "A terminal control panel for app preferences and self-updates, backed by a separate host process",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Config file (default ./panelctl.yaml, then ~/.panelctl/panelctl.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	rootCmd.Flags().BoolVar(&embeddedFlag, "embedded", false, "Run the host inside the panel process")

	rootCmd.AddCommand(commands.HostCmd)
	rootCmd.AddCommand(commands.VersionCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.CompletionCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// The panel needs a terminal; otherwise behave like `check`.
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return commands.RunPanel(commands.ConfigPath, embeddedFlag)
		}
		return commands.RunCheck(cmd.Context(), commands.ConfigPath)
	}
}

func main() {
	// Propagate --json flag before execution
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		if !output.JSONMode {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
