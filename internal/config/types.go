// Package config persists operator-chosen settings for memdock and
// resolves the runtime environment passed through to the managed service.
package config

// Config is the durable operator configuration record.
// It is created on first provisioning run and reused on every
// subsequent invocation.
type Config struct {
	// DataDir is the host directory mounted into the service container
	// for persisted memory data. Stored as an absolute path.
	DataDir string `yaml:"data_dir"`
}
