// Package settings performs the read-modify-write merge into Claude
// Code's settings.json. The document is externally owned: everything
// outside the one reserved namespace entry being written must survive
// the merge untouched.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Namespace is the reserved top-level key holding MCP server entries.
const Namespace = "mcpServers"

// ServerEntry is the value registered under the reserved namespace.
type ServerEntry struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Merger merges named entries into a settings document.
type Merger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewMerger creates a Merger that reports recoverable problems
// through the given logger.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{logger: logger, now: time.Now}
}

// MergeEntry sets namespace[name] = entry in the document at path,
// preserving every unrelated top-level key and every sibling entry in
// the namespace. Before writing, the original file (if any) is copied
// to a timestamped sibling backup. The updated document is written
// pretty-printed.
//
// Running twice with the same inputs produces a byte-identical
// document: encoding/json sorts map keys, so output is deterministic.
//
// An unparsable existing document is not fatal: the merge proceeds
// from an empty base, deliberately sacrificing the unreadable content
// rather than blocking setup. The prior bytes remain in the backup.
func (m *Merger) MergeEntry(path, name string, entry ServerEntry) error {
	doc := map[string]any{}
	original, err := os.ReadFile(path)
	existed := err == nil

	switch {
	case existed:
		if jsonErr := json.Unmarshal(original, &doc); jsonErr != nil {
			m.logger.Warn("settings document is unparsable; starting from an empty document, previous content preserved in backup",
				"path", path, "error", jsonErr)
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
		// First integration: start from an empty document.
	default:
		return fmt.Errorf("read settings: %w", err)
	}

	servers, ok := doc[Namespace].(map[string]any)
	if !ok {
		servers = map[string]any{}
	}
	servers[name] = map[string]any{"type": entry.Type, "url": entry.URL}
	doc[Namespace] = servers

	if existed {
		if err := m.backup(path, original); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp settings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// backup copies the original document bytes to a timestamped sibling.
// Backups are never pruned or overwritten by this tool: the stamp has
// one-second granularity, so a numeric suffix disambiguates merges
// that land within the same second.
func (m *Merger) backup(path string, original []byte) error {
	stamp := m.now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.bak-%s", path, stamp)
	for n := 1; ; n++ {
		if _, err := os.Stat(backupPath); errors.Is(err, os.ErrNotExist) {
			break
		}
		backupPath = fmt.Sprintf("%s.bak-%s.%d", path, stamp, n)
	}
	if err := os.WriteFile(backupPath, original, 0o644); err != nil {
		return fmt.Errorf("write settings backup: %w", err)
	}
	return nil
}
