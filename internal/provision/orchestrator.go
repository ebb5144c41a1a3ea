// Package provision sequences the end-to-end setup of the memory
// service: source fetch, provenance manifest, configuration, image
// build, and optional assistant integration.
//
// Every step is individually safe to skip or re-run. Running the full
// sequence twice with no external changes produces the same observable
// end state as running it once.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/memdock/memdock/internal/config"
	"github.com/memdock/memdock/internal/manifest"
	"github.com/memdock/memdock/internal/scaffold"
	"github.com/memdock/memdock/internal/service"
	"github.com/memdock/memdock/internal/settings"
	"github.com/memdock/memdock/internal/ui"
)

// Fetcher is the source checkout collaborator.
type Fetcher interface {
	Exists(dir string) bool
	Clone(ctx context.Context, dir string) error
	Update(ctx context.Context, dir string) error
}

// ManifestGenerator produces the provenance record for a checkout.
type ManifestGenerator interface {
	Generate(ctx context.Context, sourceDir string) (*manifest.Manifest, error)
}

// ConfigStore persists the operator configuration record.
type ConfigStore interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	Path() string
}

// Paths locates every artifact the orchestrator touches.
type Paths struct {
	SourceDir      string
	ManifestPath   string
	SettingsPath   string
	CommandsDir    string
	DefaultDataDir string
}

// Options select per-invocation behavior.
type Options struct {
	// DataDir pre-answers the data directory prompt (flag-driven runs).
	DataDir string

	// Update refreshes an existing checkout without asking.
	Update bool

	// SkipBuild provisions everything except the image build.
	SkipBuild bool

	// Integrate registers the service with the assistant after setup
	// without asking.
	Integrate bool
}

// Deps wires the orchestrator's collaborators. The build and start
// actions are injected functions so the flow is testable without a
// container runtime.
type Deps struct {
	Runtime  RuntimeChecker
	Fetcher  Fetcher
	Manifest ManifestGenerator
	Store    ConfigStore
	Merger   *settings.Merger
	Prompter ui.Prompter
	Headless *ui.HeadlessManager
	Logger   *slog.Logger
	Out      io.Writer

	// LookPath probes for a binary on PATH.
	LookPath func(name string) bool

	// Build builds the service image from the checkout.
	Build func(ctx context.Context, sourceDir string) error

	// Start brings the service up for the integrate phase.
	Start func(ctx context.Context, cfg *config.Config) (service.StartOutcome, error)

	// ServiceURL is the endpoint recorded into the settings document.
	ServiceURL string
}

// Orchestrator runs the provisioning sequence.
type Orchestrator struct {
	deps  Deps
	paths Paths
}

// NewOrchestrator creates an Orchestrator over the given collaborators.
func NewOrchestrator(deps Deps, paths Paths) *Orchestrator {
	return &Orchestrator{deps: deps, paths: paths}
}

// Run executes the full sequence. Each numbered phase maps to one
// observable artifact; interrupting between phases and re-running
// converges to the same end state.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	// 1. Environment preconditions, checked once up front.
	report := CheckEnvironment(ctx, o.deps.LookPath, o.deps.Runtime)
	if err := report.Err(); err != nil {
		return err
	}

	// 2. Fetch or update the upstream checkout.
	if err := o.ensureSource(ctx, opts); err != nil {
		return err
	}

	// 3. Provenance manifest. Diagnostic only: failure is warned, never fatal.
	o.generateManifest(ctx)

	// 4. Configuration: load once, prompt only on first run.
	cfg, err := o.ensureConfig(opts)
	if err != nil {
		return err
	}

	// 5. Image build, delegated to the container runtime.
	if !opts.SkipBuild {
		err := ui.Step(o.deps.Out, o.deps.Headless, "Building service image", func() error {
			return o.deps.Build(ctx, o.paths.SourceDir)
		})
		if err != nil {
			return err
		}
	}

	// 6. Optional integration with the assistant.
	integrate := opts.Integrate
	if !integrate && !o.deps.Headless.IsHeadless() {
		integrate, err = o.deps.Prompter.Confirm("Start the service and register it with Claude Code now?")
		if err != nil {
			return err
		}
	}
	if integrate {
		if err := o.integrate(ctx, cfg); err != nil {
			return err
		}
	}

	fmt.Fprint(o.deps.Out, ui.Markdown(nextSteps(integrate)))
	return nil
}

// Integrate runs only the integration phase: start the service,
// register its endpoint, and scaffold the slash commands.
func (o *Orchestrator) Integrate(ctx context.Context) error {
	cfg, err := o.deps.Store.Load()
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("no configuration found; run setup first")
		}
		return err
	}
	return o.integrate(ctx, cfg)
}

func (o *Orchestrator) ensureSource(ctx context.Context, opts Options) error {
	if o.deps.Fetcher.Exists(o.paths.SourceDir) {
		update := opts.Update
		if !update && !o.deps.Headless.IsHeadless() {
			var err error
			update, err = o.deps.Prompter.Confirm("Source checkout exists. Update it to the latest revision?")
			if err != nil {
				return err
			}
		}
		if !update {
			o.deps.Logger.Info("reusing existing source checkout", "dir", o.paths.SourceDir)
			return nil
		}
		return ui.Step(o.deps.Out, o.deps.Headless, "Updating source checkout", func() error {
			return o.deps.Fetcher.Update(ctx, o.paths.SourceDir)
		})
	}

	return ui.Step(o.deps.Out, o.deps.Headless, "Fetching service source", func() error {
		return o.deps.Fetcher.Clone(ctx, o.paths.SourceDir)
	})
}

func (o *Orchestrator) generateManifest(ctx context.Context) {
	m, err := o.deps.Manifest.Generate(ctx, o.paths.SourceDir)
	if err != nil {
		o.deps.Logger.Warn("manifest generation skipped", "error", err)
		return
	}
	if err := manifest.Write(m, o.paths.ManifestPath); err != nil {
		o.deps.Logger.Warn("manifest write failed", "error", err)
		return
	}
	o.deps.Logger.Info("manifest written",
		"path", o.paths.ManifestPath,
		"commit", m.Repository.CommitShort)
}

func (o *Orchestrator) ensureConfig(opts Options) (*config.Config, error) {
	cfg, err := o.deps.Store.Load()
	if err == nil {
		// Configuration exists: reuse silently, never re-prompt.
		return cfg, nil
	}
	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir, err = o.deps.Prompter.Input("Data directory for stored memories", o.paths.DefaultDataDir)
		if err != nil {
			return nil, err
		}
	}

	cfg = &config.Config{DataDir: dataDir}
	if err := o.deps.Store.Save(cfg); err != nil {
		return nil, err
	}
	// Re-load so callers see the resolved absolute path.
	return o.deps.Store.Load()
}

func (o *Orchestrator) integrate(ctx context.Context, cfg *config.Config) error {
	err := ui.Step(o.deps.Out, o.deps.Headless, "Starting memory service", func() error {
		outcome, err := o.deps.Start(ctx, cfg)
		if err != nil {
			return err
		}
		if outcome == service.StartedUnhealthy {
			o.deps.Logger.Warn("service started but is not yet healthy; integration continues")
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = ui.Step(o.deps.Out, o.deps.Headless, "Registering MCP server with Claude Code", func() error {
		return o.deps.Merger.MergeEntry(o.paths.SettingsPath, "memory", settings.ServerEntry{
			Type: "http",
			URL:  o.deps.ServiceURL + "/mcp",
		})
	})
	if err != nil {
		return err
	}

	return ui.Step(o.deps.Out, o.deps.Headless, "Installing slash commands", func() error {
		return scaffold.Materialize(o.paths.CommandsDir, scaffold.BuiltinTemplates())
	})
}

func nextSteps(integrated bool) string {
	if integrated {
		return `
## memdock is ready

- ` + "`memdock status`" + ` shows lifecycle state and health
- ` + "`memdock logs -f`" + ` follows the service logs
- use ` + "`/memory-save`" + ` and ` + "`/memory-recall`" + ` inside Claude Code
`
	}
	return `
## Setup complete

- ` + "`memdock start`" + ` brings the service up
- ` + "`memdock integrate`" + ` registers it with Claude Code
- ` + "`memdock status`" + ` shows lifecycle state and health
`
}
