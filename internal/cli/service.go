package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/memdock/memdock/internal/runtime"
	"github.com/memdock/memdock/internal/service"
	"github.com/memdock/memdock/pkg/version"
)

var (
	healthyBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	unhealthyBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	stateBadge     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the memory service container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		outcome, err := ctrl.Start(cmd.Context())
		if err != nil {
			return err
		}
		switch outcome {
		case service.StartedHealthy:
			fmt.Fprintln(cmd.OutOrStdout(), "Service started and healthy at", deps.Runtime.BaseURL())
		case service.StartedUnhealthy:
			fmt.Fprintln(cmd.OutOrStdout(), "Service started but not yet healthy; check \"memdock logs\"")
		case service.AlreadyRunning:
			fmt.Fprintln(cmd.OutOrStdout(), "Service is already running")
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the memory service container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		stopped, err := ctrl.Stop(cmd.Context())
		if err != nil {
			return err
		}
		if stopped {
			fmt.Fprintln(cmd.OutOrStdout(), "Service stopped")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Service is not running")
		}
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the memory service container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		outcome, err := ctrl.Restart(cmd.Context())
		if err != nil {
			return err
		}
		if outcome == service.StartedHealthy {
			fmt.Fprintln(cmd.OutOrStdout(), "Service restarted and healthy")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Service restarted but not yet healthy; check \"memdock logs\"")
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service lifecycle state, uptime, and health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		report, err := ctrl.Status(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "State: ", stateBadge.Render(report.State.String()))
		if report.Uptime != "" {
			fmt.Fprintln(out, "Since: ", report.Uptime)
		}
		switch {
		case report.State != runtime.StateRunning:
		case report.Healthy:
			fmt.Fprintln(out, "Health:", healthyBadge.Render("healthy"),
				fmt.Sprintf("(%d)", report.Health.StatusCode))
		default:
			fmt.Fprintln(out, "Health:", unhealthyBadge.Render("unhealthy"),
				"-", report.Health.Err)
		}
		fmt.Fprintln(out, "URL:   ", deps.Runtime.BaseURL())
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the service health endpoint once",
	Long: `Probe the service health endpoint with a bounded timeout.

Exits non-zero when the service is absent or the probe fails, so the
command is usable from scripts and CI gates.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		result, err := ctrl.HealthCheck(cmd.Context())
		if err != nil {
			if errors.Is(err, service.ErrServiceAbsent) {
				return fmt.Errorf("service is not provisioned; run \"memdock start\"")
			}
			return err
		}
		if !result.Healthy {
			return fmt.Errorf("health check failed: %s", result.Err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), healthyBadge.Render("healthy"), result.Body)
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show service logs",
	Long: `Show the service's log output.

With --follow the stream blocks until interrupted (Ctrl-C).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		tail, _ := cmd.Flags().GetInt("tail")
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		return ctrl.Logs(cmd.Context(), follow, tail)
	},
}

var logsTailCmd = &cobra.Command{
	Use:   "logs-tail",
	Short: "Show the last 50 log lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		return ctrl.Logs(cmd.Context(), false, 50)
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open a shell inside the running service container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		return ctrl.Shell(cmd.Context())
	},
}

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Show the runtime's view of the service container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		return ctrl.PS(cmd.Context())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show service container resource usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		return ctrl.Stats(cmd.Context())
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the service container and its persisted data",
	Long: `Remove the service container and delete the host data directory
mounted into it.

This is irreversible. The command asks for an exact confirmation
token; any other reply aborts with no changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl, err := deps.controller()
		if err != nil {
			return err
		}
		err = ctrl.Cleanup(cmd.Context(), func(prompt string) (string, error) {
			return deps.Prompter.Token(prompt)
		})
		if err != nil {
			if errors.Is(err, service.ErrCleanupAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleanup aborted; nothing was changed")
				return nil
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Service and data removed")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "memdock", version.GetFullVersion())
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output until interrupted")
	logsCmd.Flags().Int("tail", 0, "Number of trailing lines to show")

	rootCmd.AddCommand(startCmd, stopCmd, restartCmd, statusCmd, healthCmd,
		logsCmd, logsTailCmd, shellCmd, psCmd, statsCmd, cleanupCmd, versionCmd)
}
