package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/memdock/memdock/internal/defs"
)

// Store reads and writes the configuration record at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store rooted at the user's memdock directory
// ($HOME/.memdock/config.yaml).
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, defs.MemdockDir, defs.ConfigYAML)), nil
}

// NewStoreAt creates a Store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration record.
// Returns ErrNotFound if no record has been saved yet.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataDir == "" {
		return nil, ErrEmptyDataDir
	}
	return &cfg, nil
}

// Save persists the configuration record atomically (temp file plus
// os.Rename) so a crash mid-write never corrupts the previous record.
// The data directory path is resolved to an absolute path before
// writing: home shorthand ("~/x") is expanded and relative paths are
// anchored at the current working directory, so the stored record is
// unambiguous when read from a different working directory later.
func (s *Store) Save(cfg *Config) error {
	if cfg == nil || cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	resolved, err := ResolvePath(cfg.DataDir)
	if err != nil {
		return err
	}
	record := Config{DataDir: resolved}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp config: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// ResolvePath expands home shorthand and converts the path to an
// absolute, cleaned form.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
