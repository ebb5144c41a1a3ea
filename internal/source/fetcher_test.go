package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/memdock/memdock/pkg/logger"
)

// cloneRunner simulates git by materializing a checkout at the clone
// target, mirroring what a successful "git clone" leaves behind.
type cloneRunner struct {
	calls   []string
	cloneOK bool
	errs    map[string]error
}

func (r *cloneRunner) Output(_ context.Context, dir, name string, args ...string) (string, error) {
	k := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, k)
	if err, ok := r.errs[k]; ok {
		return "", err
	}
	if name == "git" && len(args) > 0 && args[0] == "clone" {
		if !r.cloneOK {
			return "", fmt.Errorf("fatal: unable to access remote")
		}
		target := args[len(args)-1]
		if err := os.MkdirAll(filepath.Join(target, ".git"), 0o755); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (r *cloneRunner) Interactive(context.Context, string, string, ...string) error {
	return nil
}

func newFetcher(r *cloneRunner) *Fetcher {
	return NewFetcher(r, "https://example.com/service.git", "main", logger.Nop())
}

func TestCloneCreatesCompletedCheckout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "source")
	r := &cloneRunner{cloneOK: true}
	f := newFetcher(r)

	if err := f.Clone(context.Background(), dir); err != nil {
		t.Fatalf("Clone() error: %v", err)
	}
	if !f.Exists(dir) {
		t.Error("checkout should exist after clone")
	}
	if _, err := os.Stat(dir + partialSuffix); !os.IsNotExist(err) {
		t.Error("partial directory should be gone after a completed clone")
	}
}

func TestCloneDiscardsInterruptedPartial(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "source")
	partial := dir + partialSuffix
	if err := os.MkdirAll(filepath.Join(partial, "half-written"), 0o755); err != nil {
		t.Fatalf("seed partial: %v", err)
	}

	r := &cloneRunner{cloneOK: true}
	if err := newFetcher(r).Clone(context.Background(), dir); err != nil {
		t.Fatalf("Clone() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "half-written")); !os.IsNotExist(err) {
		t.Error("stale partial content leaked into the final checkout")
	}
}

func TestCloneFailureLeavesNoCheckout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "source")
	r := &cloneRunner{cloneOK: false}
	f := newFetcher(r)

	if err := f.Clone(context.Background(), dir); err == nil {
		t.Fatal("Clone() should fail when git clone fails")
	}
	if f.Exists(dir) {
		t.Error("failed clone must not leave a checkout in place")
	}
	if _, err := os.Stat(dir + partialSuffix); !os.IsNotExist(err) {
		t.Error("failed clone must not leave a partial tree")
	}
}

func TestUpdateRequiresExistingCheckout(t *testing.T) {
	t.Parallel()

	r := &cloneRunner{}
	err := newFetcher(r).Update(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("Update() on a missing checkout should fail")
	}
}

func TestUpdateFetchesAndResets(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "source")
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("seed checkout: %v", err)
	}

	r := &cloneRunner{}
	if err := newFetcher(r).Update(context.Background(), dir); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	joined := strings.Join(r.calls, "\n")
	if !strings.Contains(joined, "git fetch origin main") {
		t.Errorf("fetch not invoked: %v", r.calls)
	}
	if !strings.Contains(joined, "git reset --hard origin/main") {
		t.Errorf("reset not invoked: %v", r.calls)
	}
}
