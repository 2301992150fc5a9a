package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ConfigPath is the --config flag shared by every command.
var ConfigPath string

// HostCmd runs the privileged host process
var HostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the host process",
	Long:  "Serve the bridge endpoint that owns preferences, update downloads and installs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunHost(ConfigPath)
	},
}

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show panelctl version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunVersion()
	},
}

// CheckCmd asks the host for an update without opening the panel
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for updates through the host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCheck(cmd.Context(), ConfigPath)
	},
}

// MCPCmd serves MCP tools over stdio
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server mode",
	Long:  "Expose the panel's preference and update-check operations as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunMCP(cmd.Context(), ConfigPath)
	},
}

// CompletionCmd generates shell completion scripts
var CompletionCmd = &cobra.Command{
	Use:    "completion [bash|zsh|fish|powershell]",
	Short:  "Generate shell completion script",
	Hidden: true,
	Long: `Generate shell completion script for the specified shell.

Usage examples:
  # Bash
  source <(panelctl completion bash)

  # Zsh
  source <(panelctl completion zsh)

  # Fish
  panelctl completion fish | source`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return fmt.Errorf("unsupported shell: %s", args[0])
	},
}
