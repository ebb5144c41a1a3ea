package cli

import (
	"github.com/spf13/cobra"

	"github.com/memdock/memdock/internal/provision"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the memory service end to end",
	Long: `Provision the memory service: verify the environment, fetch or
update the upstream source, record the build manifest, collect
configuration, and build the container image.

The sequence is idempotent: re-running with no external changes
produces the same end state. Existing configuration is reused
without re-prompting.

Examples:
  memdock setup                          Interactive first-time setup
  memdock setup --integrate              Also start and register with Claude Code
  memdock setup --data-dir ~/mem --non-interactive
                                         CI-friendly, no prompts`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().String("data-dir", "", "Data directory for stored memories (skips the prompt)")
	setupCmd.Flags().Bool("update", false, "Update an existing source checkout without asking")
	setupCmd.Flags().Bool("skip-build", false, "Provision everything except the image build")
	setupCmd.Flags().Bool("integrate", false, "Start the service and register it with Claude Code")
	setupCmd.Flags().Bool("non-interactive", false, "Never prompt; use flags and defaults")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	update, _ := cmd.Flags().GetBool("update")
	skipBuild, _ := cmd.Flags().GetBool("skip-build")
	integrate, _ := cmd.Flags().GetBool("integrate")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	if nonInteractive {
		deps.Headless.ForceHeadless(true)
		if dataDir == "" {
			dataDir = deps.Paths.DefaultDataDir
		}
	}

	return deps.orchestrator().Run(cmd.Context(), provision.Options{
		DataDir:   dataDir,
		Update:    update,
		SkipBuild: skipBuild,
		Integrate: integrate,
	})
}

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Start the service and register it with Claude Code",
	Long: `Start the memory service, register its MCP endpoint in Claude
Code's settings, and install the memory slash commands.

Requires a prior "memdock setup". The settings merge preserves all
unrelated settings and other MCP server entries; a timestamped
backup of the previous settings file is kept beside it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return deps.orchestrator().Integrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(integrateCmd)
}
