package defs

// Common file and directory names used across the project.
const (
	// MemdockDir is the per-user state directory, relative to $HOME.
	MemdockDir = ".memdock"

	// ConfigYAML is the operator configuration record inside MemdockDir.
	ConfigYAML = "config.yaml"

	// SourceSubdir is the upstream service checkout inside MemdockDir.
	SourceSubdir = "source"

	// ManifestJSON is the build provenance record inside MemdockDir.
	ManifestJSON = "manifest.json"
)

// Claude Code integration targets, relative to $HOME.
const (
	// ClaudeDir is the Claude Code user directory.
	ClaudeDir = ".claude"

	// SettingsJSON is the Claude Code user settings file.
	SettingsJSON = "settings.json"

	// CommandsSubdir holds materialized slash-command files.
	CommandsSubdir = "commands"
)

// Container runtime names.
const (
	// ContainerName is the fixed name of the managed service container.
	ContainerName = "memdock-service"

	// ImageName is the tag applied to locally built service images.
	ImageName = "memdock/service:latest"
)

// Upstream source defaults.
const (
	// UpstreamURL is the repository the service is built from.
	UpstreamURL = "https://github.com/doobidoo/mcp-memory-service.git"

	// UpstreamBranch is the branch tracked by fetch-or-update.
	UpstreamBranch = "main"
)
