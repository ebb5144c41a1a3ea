package runtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnavailable indicates the container runtime itself is unreachable
// (daemon not running or binary missing). Every runtime-dependent
// operation checks for this before acting.
var ErrUnavailable = errors.New("container runtime unavailable")

// ContainerState is the runtime-observed lifecycle state of the
// managed container.
type ContainerState int

const (
	// StateAbsent means no container with the managed name exists.
	StateAbsent ContainerState = iota
	// StateStopped means the container exists but is not running.
	StateStopped
	// StateRunning means the container is running (health unknown).
	StateRunning
)

// String returns the lowercase state name.
func (s ContainerState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// RunSpec describes how to start the managed container.
type RunSpec struct {
	Name    string
	Image   string
	Port    int      // host port mapped to the same container port
	Volumes []string // "name-or-path:containerPath" mounts
	Env     []string // KEY=VALUE assignments
}

// Docker drives the docker CLI through a Runner.
type Docker struct {
	runner Runner
}

// NewDocker creates a Docker client on top of the given Runner.
func NewDocker(runner Runner) *Docker {
	return &Docker{runner: runner}
}

// Available verifies the docker daemon answers. It is the precondition
// check every lifecycle operation runs first.
func (d *Docker) Available(ctx context.Context) error {
	if _, err := d.runner.Output(ctx, "", "docker", "info", "--format", "{{.ServerVersion}}"); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// State reports the container's current lifecycle state.
func (d *Docker) State(ctx context.Context, name string) (ContainerState, error) {
	out, err := d.runner.Output(ctx, "", "docker", "inspect", "--format", "{{.State.Running}}", name)
	if err != nil {
		// docker inspect fails with "No such object" for absent containers.
		if strings.Contains(strings.ToLower(err.Error()), "no such") {
			return StateAbsent, nil
		}
		return StateAbsent, err
	}
	running, err := strconv.ParseBool(strings.TrimSpace(out))
	if err != nil {
		return StateAbsent, fmt.Errorf("unexpected inspect output %q: %w", out, err)
	}
	if running {
		return StateRunning, nil
	}
	return StateStopped, nil
}

// Uptime returns the container's running-since timestamp, or "" when
// unavailable.
func (d *Docker) Uptime(ctx context.Context, name string) string {
	out, err := d.runner.Output(ctx, "", "docker", "inspect", "--format", "{{.State.StartedAt}}", name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Run creates and starts a container from the spec. Any stopped
// container with the same name is removed first so the name stays
// stable across restarts.
func (d *Docker) Run(ctx context.Context, spec RunSpec) error {
	state, err := d.State(ctx, spec.Name)
	if err != nil {
		return err
	}
	if state == StateStopped {
		if _, err := d.runner.Output(ctx, "", "docker", "rm", spec.Name); err != nil {
			return fmt.Errorf("remove stale container: %w", err)
		}
	}

	args := []string{"run", "-d", "--name", spec.Name, "--restart", "unless-stopped"}
	if spec.Port > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:%d", spec.Port, spec.Port))
	}
	for _, v := range spec.Volumes {
		args = append(args, "-v", v)
	}
	for _, e := range spec.Env {
		args = append(args, "-e", e)
	}
	args = append(args, spec.Image)

	if _, err := d.runner.Output(ctx, "", "docker", args...); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

// Stop gracefully stops the named container.
func (d *Docker) Stop(ctx context.Context, name string) error {
	if _, err := d.runner.Output(ctx, "", "docker", "stop", name); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

// Remove deletes the named container. Force applies to running ones.
func (d *Docker) Remove(ctx context.Context, name string, force bool) error {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, name)
	if _, err := d.runner.Output(ctx, "", "docker", args...); err != nil {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

// Build builds an image from the given context directory.
func (d *Docker) Build(ctx context.Context, dir, tag string) error {
	if err := d.runner.Interactive(ctx, dir, "docker", "build", "-t", tag, "."); err != nil {
		return fmt.Errorf("build image: %w", err)
	}
	return nil
}

// Logs dumps or follows the container's log output. Follow blocks
// until the context is canceled or the stream is interrupted.
func (d *Docker) Logs(ctx context.Context, name string, follow bool, tail int) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}
	args = append(args, name)
	return d.runner.Interactive(ctx, "", "docker", args...)
}

// Shell opens an interactive shell inside the running container.
func (d *Docker) Shell(ctx context.Context, name string) error {
	return d.runner.Interactive(ctx, "", "docker", "exec", "-it", name, "/bin/bash")
}

// PS prints the runtime's view of the managed container.
func (d *Docker) PS(ctx context.Context, name string) error {
	return d.runner.Interactive(ctx, "", "docker", "ps", "-a", "--filter", "name="+name)
}

// Stats streams live resource usage for the container.
func (d *Docker) Stats(ctx context.Context, name string) error {
	return d.runner.Interactive(ctx, "", "docker", "stats", "--no-stream", name)
}
