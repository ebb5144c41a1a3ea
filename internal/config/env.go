package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Runtime holds the settings passed through to the service container.
// memdock does not interpret these beyond naming them; the service
// reads them from its own environment at startup.
type Runtime struct {
	StorageBackend string
	HTTPHost       string
	HTTPPort       int
	LogLevel       string
	Consolidation  bool
	MDNS           bool
}

// NewRuntimeViper creates a viper instance for the runtime pass-through
// settings, with compiled defaults and MEMDOCK_-prefixed environment
// variable overrides (MEMDOCK_STORAGE_BACKEND, MEMDOCK_HTTP_PORT, ...).
//
// Precedence (highest to lowest): environment variables, defaults.
func NewRuntimeViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("storage_backend", "sqlite_vec")
	v.SetDefault("http_host", "0.0.0.0")
	v.SetDefault("http_port", 8443)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("consolidation", false)
	v.SetDefault("mdns", false)

	v.SetEnvPrefix("MEMDOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadRuntime resolves the runtime settings from the given viper.
func LoadRuntime(v *viper.Viper) Runtime {
	return Runtime{
		StorageBackend: v.GetString("storage_backend"),
		HTTPHost:       v.GetString("http_host"),
		HTTPPort:       v.GetInt("http_port"),
		LogLevel:       v.GetString("log_level"),
		Consolidation:  v.GetBool("consolidation"),
		MDNS:           v.GetBool("mdns"),
	}
}

// ContainerEnv renders the runtime settings as the environment variable
// assignments the service container expects. The names belong to the
// upstream service's contract, not to memdock.
func (r Runtime) ContainerEnv() []string {
	return []string{
		fmt.Sprintf("MCP_MEMORY_STORAGE_BACKEND=%s", r.StorageBackend),
		fmt.Sprintf("MCP_HTTP_HOST=%s", r.HTTPHost),
		fmt.Sprintf("MCP_HTTP_PORT=%d", r.HTTPPort),
		fmt.Sprintf("MCP_MEMORY_LOG_LEVEL=%s", r.LogLevel),
		fmt.Sprintf("MCP_CONSOLIDATION_ENABLED=%t", r.Consolidation),
		fmt.Sprintf("MCP_MDNS_ENABLED=%t", r.MDNS),
	}
}

// BaseURL returns the service URL as reachable from the host.
func (r Runtime) BaseURL() string {
	host := r.HTTPHost
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, r.HTTPPort)
}
