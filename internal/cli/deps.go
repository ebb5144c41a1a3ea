// Package cli provides the Cobra command tree and dependency wiring
// for the memdock CLI. This file defines the Dependencies struct
// (composition root) that wires all domain modules together.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/memdock/memdock/internal/config"
	"github.com/memdock/memdock/internal/defs"
	"github.com/memdock/memdock/internal/manifest"
	"github.com/memdock/memdock/internal/provision"
	"github.com/memdock/memdock/internal/runtime"
	"github.com/memdock/memdock/internal/service"
	"github.com/memdock/memdock/internal/settings"
	"github.com/memdock/memdock/internal/source"
	"github.com/memdock/memdock/internal/ui"
	"github.com/memdock/memdock/pkg/logger"
)

// Dependencies holds all domain-level services used by CLI commands.
// This is the only place concrete types are instantiated and wired;
// commands reach collaborators through this struct.
type Dependencies struct {
	Logger   *slog.Logger
	Store    *config.Store
	Runtime  config.Runtime
	Docker   *runtime.Docker
	Fetcher  *source.Fetcher
	Merger   *settings.Merger
	Headless *ui.HeadlessManager
	Prompter ui.Prompter
	Paths    provision.Paths
}

// deps is the global dependencies instance, initialized by
// InitDependencies and accessed by commands.
var deps *Dependencies

// InitDependencies creates and wires all domain dependencies. It is
// called once from Execute before any command runs.
func InitDependencies(debug bool) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	log := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(isatty.IsTerminal(os.Stderr.Fd())),
		logger.WithWriter(os.Stderr),
	)

	store, err := config.NewStore()
	if err != nil {
		return err
	}

	runner := runtime.NewExecRunner()
	hm := ui.NewHeadlessManager()
	stateDir := filepath.Join(home, defs.MemdockDir)

	deps = &Dependencies{
		Logger:   log,
		Store:    store,
		Runtime:  config.LoadRuntime(config.NewRuntimeViper()),
		Docker:   runtime.NewDocker(runner),
		Fetcher:  source.NewFetcher(runner, defs.UpstreamURL, defs.UpstreamBranch, log),
		Merger:   settings.NewMerger(log),
		Headless: hm,
		Prompter: ui.NewHuhPrompter(hm),
		Paths: provision.Paths{
			SourceDir:      filepath.Join(stateDir, defs.SourceSubdir),
			ManifestPath:   filepath.Join(stateDir, defs.ManifestJSON),
			SettingsPath:   filepath.Join(home, defs.ClaudeDir, defs.SettingsJSON),
			CommandsDir:    filepath.Join(home, defs.ClaudeDir, defs.CommandsSubdir),
			DefaultDataDir: filepath.Join(stateDir, "data"),
		},
	}
	return nil
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// runSpec builds the container run specification from the stored
// configuration and runtime pass-through settings.
func (d *Dependencies) runSpec(cfg *config.Config) runtime.RunSpec {
	return runtime.RunSpec{
		Name:    defs.ContainerName,
		Image:   defs.ImageName,
		Port:    d.Runtime.HTTPPort,
		Volumes: []string{cfg.DataDir + ":/app/data"},
		Env:     d.Runtime.ContainerEnv(),
	}
}

// controller builds a service controller, which requires a saved
// configuration for the container's data mount.
func (d *Dependencies) controller() (*service.Controller, error) {
	cfg, err := d.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("no configuration found; run \"memdock setup\" first: %w", err)
	}
	prober := service.NewHTTPProber(d.Runtime.BaseURL())
	return service.NewController(d.Docker, prober, d.runSpec(cfg), cfg.DataDir, d.Logger), nil
}

// orchestrator builds the provisioning orchestrator.
func (d *Dependencies) orchestrator() *provision.Orchestrator {
	return provision.NewOrchestrator(provision.Deps{
		Runtime:  d.Docker,
		Fetcher:  d.Fetcher,
		Manifest: manifest.NewGenerator(runtime.NewExecRunner()),
		Store:    d.Store,
		Merger:   d.Merger,
		Prompter: d.Prompter,
		Headless: d.Headless,
		Logger:   d.Logger,
		Out:      os.Stdout,
		LookPath: runtime.LookPath,
		Build: func(ctx context.Context, sourceDir string) error {
			return d.Docker.Build(ctx, sourceDir, defs.ImageName)
		},
		Start: func(ctx context.Context, cfg *config.Config) (service.StartOutcome, error) {
			prober := service.NewHTTPProber(d.Runtime.BaseURL())
			ctrl := service.NewController(d.Docker, prober, d.runSpec(cfg), cfg.DataDir, d.Logger)
			return ctrl.Start(ctx)
		},
		ServiceURL: d.Runtime.BaseURL(),
	}, d.Paths)
}
