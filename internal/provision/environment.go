package provision

import (
	"context"
	"fmt"
	"strings"
)

// Capability is one host requirement checked before provisioning.
type Capability struct {
	Name    string
	Present bool
	Detail  string
}

// EnvironmentReport is the structured result of the capability check
// run once at orchestrator entry, replacing scattered per-operation
// tool checks.
type EnvironmentReport struct {
	Capabilities []Capability
}

// OK reports whether every capability is present.
func (r *EnvironmentReport) OK() bool {
	for _, c := range r.Capabilities {
		if !c.Present {
			return false
		}
	}
	return true
}

// Missing lists the absent capabilities.
func (r *EnvironmentReport) Missing() []string {
	var names []string
	for _, c := range r.Capabilities {
		if !c.Present {
			names = append(names, c.Name)
		}
	}
	return names
}

// Err converts a failed report into a precondition error, nil when OK.
func (r *EnvironmentReport) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(r.Missing(), ", "))
}

// RuntimeChecker verifies the container runtime answers.
type RuntimeChecker interface {
	Available(ctx context.Context) error
}

// CheckEnvironment probes for the binaries and the runtime daemon the
// provisioning flow depends on. lookPath is injected for testing.
func CheckEnvironment(ctx context.Context, lookPath func(string) bool, rt RuntimeChecker) *EnvironmentReport {
	report := &EnvironmentReport{}

	for _, tool := range []string{"git", "docker"} {
		cap := Capability{Name: tool, Present: lookPath(tool)}
		if !cap.Present {
			cap.Detail = tool + " not found on PATH"
		}
		report.Capabilities = append(report.Capabilities, cap)
	}

	daemon := Capability{Name: "docker daemon", Present: true}
	if err := rt.Available(ctx); err != nil {
		daemon.Present = false
		daemon.Detail = err.Error()
	}
	report.Capabilities = append(report.Capabilities, daemon)

	return report
}
