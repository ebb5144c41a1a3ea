// Package manifest records the provenance of the fetched upstream
// source: which revision was built, when, and by which tool version.
//
// The manifest is diagnostic, not load-bearing. Generation always
// succeeds when the source directory exists; revision fields that
// cannot be resolved (shallow or detached checkouts) are written as
// empty strings rather than aborting.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/memdock/memdock/internal/runtime"
	"github.com/memdock/memdock/pkg/version"
)

// Repository identifies the upstream revision the image was built from.
type Repository struct {
	URL           string `json:"url"`
	Commit        string `json:"commit"`
	CommitShort   string `json:"commit_short"`
	Branch        string `json:"branch"`
	CommitDate    string `json:"commit_date"`
	CommitMessage string `json:"commit_message"`
}

// Build records when and by what the manifest was produced.
type Build struct {
	Date          string `json:"date"`
	ScriptVersion string `json:"script_version"`
}

// Manifest is the single current provenance snapshot. It is
// overwritten on every successful build; no history is kept.
type Manifest struct {
	Repository Repository `json:"repository"`
	Build      Build      `json:"build"`
}

// Generator produces manifests from a git checkout.
type Generator struct {
	runner runtime.Runner
	now    func() time.Time
}

// NewGenerator creates a Generator using the given command runner.
func NewGenerator(runner runtime.Runner) *Generator {
	return &Generator{runner: runner, now: time.Now}
}

// Generate inspects the source checkout and returns its manifest.
// The only failure mode is a missing source directory.
func (g *Generator) Generate(ctx context.Context, sourceDir string) (*Manifest, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}

	return &Manifest{
		Repository: Repository{
			URL:           g.gitValue(ctx, sourceDir, "config", "--get", "remote.origin.url"),
			Commit:        g.gitValue(ctx, sourceDir, "rev-parse", "HEAD"),
			CommitShort:   g.gitValue(ctx, sourceDir, "rev-parse", "--short", "HEAD"),
			Branch:        g.gitValue(ctx, sourceDir, "rev-parse", "--abbrev-ref", "HEAD"),
			CommitDate:    g.gitValue(ctx, sourceDir, "log", "-1", "--format=%cI"),
			CommitMessage: g.gitValue(ctx, sourceDir, "log", "-1", "--format=%s"),
		},
		Build: Build{
			Date:          g.now().UTC().Format(time.RFC3339),
			ScriptVersion: version.GetVersion(),
		},
	}, nil
}

// Write persists the manifest as pretty-printed JSON, atomically.
func Write(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Read loads a previously written manifest.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// gitValue runs a git query in dir and returns "" on any failure.
// Empty string is the documented sentinel for unavailable metadata.
func (g *Generator) gitValue(ctx context.Context, dir string, args ...string) string {
	out, err := g.runner.Output(ctx, dir, "git", args...)
	if err != nil {
		return ""
	}
	return out
}
