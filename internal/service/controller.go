// Package service drives the lifecycle of the managed memory service
// container. The service is modeled as a state machine observed
// through the container runtime:
//
//	Absent -> Stopped -> Running -> (Healthy | Unhealthy) -> Stopped
//
// with Absent reachable from any state via the destructive Cleanup.
// The controller never persists state of its own; the runtime is the
// single source of truth.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/memdock/memdock/internal/resilience"
	"github.com/memdock/memdock/internal/runtime"
)

// Health poll bounds applied after start/restart. 30 probes at 500ms
// gives a 15s ceiling before the service is reported unhealthy; the
// container may still be running afterward.
const (
	healthPollAttempts = 30
	healthPollInterval = 500 * time.Millisecond
)

// CleanupToken is the exact confirmation string Cleanup requires.
const CleanupToken = "yes"

// Sentinel errors surfaced by lifecycle operations.
var (
	// ErrServiceAbsent distinguishes "no container exists" from an
	// unhealthy-but-present service.
	ErrServiceAbsent = errors.New("service: container absent")

	// ErrCleanupAborted indicates the destructive cleanup was refused
	// because the confirmation token did not match; nothing was changed.
	ErrCleanupAborted = errors.New("service: cleanup aborted")
)

// StartOutcome reports what Start (or the start half of Restart) did.
type StartOutcome int

const (
	// StartedHealthy: the container was started and passed the health poll.
	StartedHealthy StartOutcome = iota
	// StartedUnhealthy: the container was started but the bounded health
	// poll did not succeed. Non-fatal; the process may still be running.
	StartedUnhealthy
	// AlreadyRunning: no-op, the container was already running.
	AlreadyRunning
)

// StatusReport is the non-mutating snapshot returned by Status.
type StatusReport struct {
	State   runtime.ContainerState
	Uptime  string
	Health  *HealthResult // nil unless State is Running
	Healthy bool
}

// PromptFunc asks the operator a question and returns the typed reply.
// Injected so destructive confirmation is testable without a TTY.
type PromptFunc func(prompt string) (string, error)

// Controller coordinates the container runtime and the health prober.
type Controller struct {
	docker  *runtime.Docker
	prober  Prober
	spec    runtime.RunSpec
	dataDir string
	logger  *slog.Logger

	pollAttempts int
	pollInterval time.Duration
}

// NewController creates a Controller for the container described by spec.
// dataDir is the host directory bind-mounted into the container for
// persisted data; Cleanup deletes it.
func NewController(docker *runtime.Docker, prober Prober, spec runtime.RunSpec, dataDir string, logger *slog.Logger) *Controller {
	return &Controller{
		docker:       docker,
		prober:       prober,
		spec:         spec,
		dataDir:      dataDir,
		logger:       logger,
		pollAttempts: healthPollAttempts,
		pollInterval: healthPollInterval,
	}
}

// Start brings the service to Running and polls the health endpoint
// with a bounded budget. Starting an already-running service is a
// warned no-op. A failed health poll is reported, not fatal.
func (c *Controller) Start(ctx context.Context) (StartOutcome, error) {
	if err := c.docker.Available(ctx); err != nil {
		return StartedUnhealthy, err
	}

	state, err := c.docker.State(ctx, c.spec.Name)
	if err != nil {
		return StartedUnhealthy, err
	}
	if state == runtime.StateRunning {
		c.logger.Warn("service already running; start is a no-op", "container", c.spec.Name)
		return AlreadyRunning, nil
	}

	if err := c.docker.Run(ctx, c.spec); err != nil {
		return StartedUnhealthy, err
	}

	if c.waitHealthy(ctx) {
		return StartedHealthy, nil
	}
	c.logger.Warn("service started but did not become healthy within the poll budget",
		"container", c.spec.Name,
		"attempts", c.pollAttempts,
		"interval", c.pollInterval)
	return StartedUnhealthy, nil
}

// Stop gracefully stops the service. Stopping a non-running service is
// a warned no-op; the boolean reports whether a stop was performed.
func (c *Controller) Stop(ctx context.Context) (bool, error) {
	if err := c.docker.Available(ctx); err != nil {
		return false, err
	}

	state, err := c.docker.State(ctx, c.spec.Name)
	if err != nil {
		return false, err
	}
	if state != runtime.StateRunning {
		c.logger.Warn("service not running; stop is a no-op", "container", c.spec.Name, "state", state.String())
		return false, nil
	}

	if err := c.docker.Stop(ctx, c.spec.Name); err != nil {
		return false, err
	}
	return true, nil
}

// Restart is Stop followed by Start, including the bounded health poll.
func (c *Controller) Restart(ctx context.Context) (StartOutcome, error) {
	if _, err := c.Stop(ctx); err != nil {
		return StartedUnhealthy, err
	}
	return c.Start(ctx)
}

// Status reports the current lifecycle state, uptime, and (for a
// running service) a single health probe. It never mutates state.
func (c *Controller) Status(ctx context.Context) (*StatusReport, error) {
	if err := c.docker.Available(ctx); err != nil {
		return nil, err
	}

	state, err := c.docker.State(ctx, c.spec.Name)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{State: state}
	if state == runtime.StateRunning {
		report.Uptime = c.docker.Uptime(ctx, c.spec.Name)
		health := c.prober.Probe(ctx)
		report.Health = &health
		report.Healthy = health.Healthy
	}
	return report, nil
}

// HealthCheck performs a single bounded probe. ErrServiceAbsent is
// returned when no container exists, so callers can distinguish
// "absent" from "present but failing".
func (c *Controller) HealthCheck(ctx context.Context) (*HealthResult, error) {
	if err := c.docker.Available(ctx); err != nil {
		return nil, err
	}

	state, err := c.docker.State(ctx, c.spec.Name)
	if err != nil {
		return nil, err
	}
	if state == runtime.StateAbsent {
		return nil, ErrServiceAbsent
	}

	result := c.prober.Probe(ctx)
	return &result, nil
}

// Logs dumps or follows the service logs. Follow blocks until the
// context is canceled.
func (c *Controller) Logs(ctx context.Context, follow bool, tail int) error {
	if err := c.docker.Available(ctx); err != nil {
		return err
	}
	return c.docker.Logs(ctx, c.spec.Name, follow, tail)
}

// Shell opens an interactive shell in the running container.
func (c *Controller) Shell(ctx context.Context) error {
	if err := c.docker.Available(ctx); err != nil {
		return err
	}
	return c.docker.Shell(ctx, c.spec.Name)
}

// PS shows the runtime's view of the managed container.
func (c *Controller) PS(ctx context.Context) error {
	if err := c.docker.Available(ctx); err != nil {
		return err
	}
	return c.docker.PS(ctx, c.spec.Name)
}

// Stats shows resource usage for the managed container.
func (c *Controller) Stats(ctx context.Context) error {
	if err := c.docker.Available(ctx); err != nil {
		return err
	}
	return c.docker.Stats(ctx, c.spec.Name)
}

// Cleanup irreversibly removes the container and the persisted data
// directory mounted into it. It proceeds only when prompt returns
// exactly CleanupToken; any other reply aborts with ErrCleanupAborted
// and zero changes.
func (c *Controller) Cleanup(ctx context.Context, prompt PromptFunc) error {
	if err := c.docker.Available(ctx); err != nil {
		return err
	}

	answer, err := prompt(fmt.Sprintf("This permanently deletes the %s container and the persisted data in %s. Type %q to confirm", c.spec.Name, c.dataDir, CleanupToken))
	if err != nil {
		return err
	}
	if answer != CleanupToken {
		return ErrCleanupAborted
	}

	state, err := c.docker.State(ctx, c.spec.Name)
	if err != nil {
		return err
	}
	if state != runtime.StateAbsent {
		if err := c.docker.Remove(ctx, c.spec.Name, true); err != nil {
			return err
		}
	}
	if c.dataDir != "" {
		if err := os.RemoveAll(c.dataDir); err != nil {
			return fmt.Errorf("remove data directory: %w", err)
		}
		c.logger.Info("persisted data removed", "dir", c.dataDir)
	}
	return nil
}

// waitHealthy polls the health endpoint within the documented bounds.
func (c *Controller) waitHealthy(ctx context.Context) bool {
	err := resilience.Retry(ctx, resilience.Policy{
		MaxAttempts: c.pollAttempts,
		Interval:    c.pollInterval,
	}, func(ctx context.Context) error {
		if r := c.prober.Probe(ctx); !r.Healthy {
			return errors.New(r.Err)
		}
		return nil
	})
	return err == nil
}
