package config

import "errors"

// Sentinel errors returned by the config store.
var (
	// ErrNotFound indicates no configuration record exists yet.
	ErrNotFound = errors.New("config: not found")

	// ErrEmptyDataDir indicates a configuration with no data directory.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")
)
