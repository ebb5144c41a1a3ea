package settings

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/memdock/memdock/pkg/logger"
)

func testMerger() *Merger {
	m := NewMerger(logger.Nop())
	m.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return m
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}
	return doc
}

func TestMergeEntryIntoMissingDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}

	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	doc := readDoc(t, path)
	servers, ok := doc[Namespace].(map[string]any)
	if !ok {
		t.Fatalf("missing %q namespace: %v", Namespace, doc)
	}
	mem, ok := servers["memory"].(map[string]any)
	if !ok {
		t.Fatalf("missing memory entry: %v", servers)
	}
	if mem["type"] != "http" || mem["url"] != "http://localhost:8443/mcp" {
		t.Errorf("unexpected entry: %v", mem)
	}
}

func TestMergeEntryPreservesUnrelatedKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	existing := `{
  "foo": 1,
  "permissions": {"allow": ["Bash(ls:*)"]},
  "mcpServers": {"other": {"type": "stdio", "command": "other-server"}}
}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}
	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	doc := readDoc(t, path)
	if doc["foo"] != float64(1) {
		t.Errorf("unrelated top-level key lost: %v", doc)
	}
	if _, ok := doc["permissions"].(map[string]any); !ok {
		t.Errorf("unrelated object key lost: %v", doc)
	}

	servers := doc[Namespace].(map[string]any)
	other, ok := servers["other"].(map[string]any)
	if !ok || other["command"] != "other-server" {
		t.Errorf("sibling namespace entry clobbered: %v", servers)
	}
	if _, ok := servers["memory"]; !ok {
		t.Errorf("new entry missing: %v", servers)
	}
}

func TestMergeEntryIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}
	m := testMerger()

	if err := m.MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("first MergeEntry() error: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after first merge: %v", err)
	}

	if err := m.MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("second MergeEntry() error: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after second merge: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("merge is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestMergeEntryReplacesNamedEntryOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	m := testMerger()

	if err := m.MergeEntry(path, "memory", ServerEntry{Type: "http", URL: "http://localhost:8000/mcp"}); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}
	if err := m.MergeEntry(path, "memory", ServerEntry{Type: "http", URL: "http://localhost:9000/mcp"}); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	servers := readDoc(t, path)[Namespace].(map[string]any)
	if len(servers) != 1 {
		t.Fatalf("expected exactly one entry, got %v", servers)
	}
	mem := servers["memory"].(map[string]any)
	if mem["url"] != "http://localhost:9000/mcp" {
		t.Errorf("entry not replaced: %v", mem)
	}
}

func TestMergeEntryRecoversFromUnparsableDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}
	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() must recover from parse failure, got: %v", err)
	}

	doc := readDoc(t, path)
	if _, ok := doc[Namespace]; !ok {
		t.Errorf("merge did not proceed from empty base: %v", doc)
	}
}

func TestMergeEntryWritesBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	original := `{"keep": true}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}
	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	backup := path + ".bak-20260828-120000"
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(data) != original {
		t.Errorf("backup content: got %q, want %q", data, original)
	}
}

func TestMergeEntryBackupsNeverOverwritten(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	m := testMerger() // fixed clock: every merge lands in the same second

	urls := []string{
		"http://localhost:8000/mcp",
		"http://localhost:9000/mcp",
		"http://localhost:9100/mcp",
	}
	for _, u := range urls {
		if err := m.MergeEntry(path, "memory", ServerEntry{Type: "http", URL: u}); err != nil {
			t.Fatalf("MergeEntry(%q) error: %v", u, err)
		}
	}

	// First merge has nothing to back up; the next two each must keep
	// their own backup despite the identical timestamp.
	var backups []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak-") {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) != 2 {
		t.Fatalf("backups: got %v, want 2 distinct files", backups)
	}

	contents := map[string]bool{}
	for _, b := range backups {
		data, err := os.ReadFile(filepath.Join(dir, b))
		if err != nil {
			t.Fatalf("read backup %q: %v", b, err)
		}
		contents[string(data)] = true
	}
	if len(contents) != 2 {
		t.Error("each backup should preserve a distinct prior document")
	}
}

func TestMergeEntryNoBackupForMissingDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}

	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak-") {
			t.Errorf("no backup should exist for a previously missing document, found %q", e.Name())
		}
	}
}

func TestMergeEntryPrettyPrinted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	entry := ServerEntry{Type: "http", URL: "http://localhost:8443/mcp"}
	if err := testMerger().MergeEntry(path, "memory", entry); err != nil {
		t.Fatalf("MergeEntry() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Errorf("settings should be pretty-printed:\n%s", data)
	}
}
