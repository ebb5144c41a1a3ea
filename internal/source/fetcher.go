// Package source fetches and updates the upstream service checkout.
//
// Fetching is resumable: a fresh clone lands in a ".partial" sibling
// directory and is renamed into place only when complete, so an
// interrupted run never leaves a half-written tree that looks like a
// finished checkout. Re-running converges to either "present at
// latest" or "present at the prior version".
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/memdock/memdock/internal/runtime"
)

// partialSuffix marks in-progress clone directories.
const partialSuffix = ".partial"

// Fetcher clones and updates a git checkout of the upstream service.
type Fetcher struct {
	runner runtime.Runner
	url    string
	branch string
	logger *slog.Logger
}

// NewFetcher creates a Fetcher for the given repository and branch.
func NewFetcher(runner runtime.Runner, url, branch string, logger *slog.Logger) *Fetcher {
	return &Fetcher{runner: runner, url: url, branch: branch, logger: logger}
}

// Exists reports whether dir holds a completed checkout.
func (f *Fetcher) Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Clone fetches a fresh checkout into dir. Leftover partial trees from
// interrupted runs are discarded first; the final rename is the commit
// point.
func (f *Fetcher) Clone(ctx context.Context, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create source parent: %w", err)
	}

	partial := dir + partialSuffix
	if _, err := os.Stat(partial); err == nil {
		f.logger.Warn("discarding interrupted partial checkout", "dir", partial)
		if err := os.RemoveAll(partial); err != nil {
			return fmt.Errorf("remove partial checkout: %w", err)
		}
	}

	if _, err := f.runner.Output(ctx, "", "git", "clone", "--branch", f.branch, f.url, partial); err != nil {
		_ = os.RemoveAll(partial)
		return fmt.Errorf("clone source: %w", err)
	}

	if err := os.Rename(partial, dir); err != nil {
		_ = os.RemoveAll(partial)
		return fmt.Errorf("finalize checkout: %w", err)
	}
	return nil
}

// Update fast-forwards an existing checkout to the tracked branch.
// A failed update leaves the checkout at its prior version.
func (f *Fetcher) Update(ctx context.Context, dir string) error {
	if !f.Exists(dir) {
		return fmt.Errorf("no checkout at %s", dir)
	}
	if _, err := f.runner.Output(ctx, dir, "git", "fetch", "origin", f.branch); err != nil {
		return fmt.Errorf("fetch upstream: %w", err)
	}
	if _, err := f.runner.Output(ctx, dir, "git", "reset", "--hard", "origin/"+f.branch); err != nil {
		return fmt.Errorf("update checkout: %w", err)
	}
	return nil
}
