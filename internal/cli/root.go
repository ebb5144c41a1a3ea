package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memdock/memdock/pkg/version"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "memdock",
	Short: "memdock: deploy and manage a self-hosted memory service for Claude Code",
	Long: `memdock provisions a containerized memory MCP service and wires it
into Claude Code.

It fetches the upstream service source, records build provenance,
builds the container image, manages the service lifecycle
(start/stop/status/health/logs), and registers the running service
in Claude Code's settings along with memory slash commands.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute initializes dependencies and runs the root command.
func Execute() error {
	// Parse the debug flag ahead of command dispatch so the logger is
	// configured before any RunE executes.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return InitDependencies(debugFlag)
	}
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("memdock %s\n", version.GetVersion()))
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}
