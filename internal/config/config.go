// Package config provides layered configuration for forja.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (FORJA_* prefix)
//  3. Project config (.forja/config.yaml)
//  4. Global config (~/.forja/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for forja.
type Config struct {
	// Gateway controls how prompts reach model capabilities.
	Gateway GatewayConfig `yaml:"gateway" mapstructure:"gateway"`

	// Capabilities maps capability ids to the commands that serve them.
	Capabilities map[string]CapabilityConfig `yaml:"capabilities" mapstructure:"capabilities"`

	// Orchestrator tunes instruction classification and fallbacks.
	Orchestrator OrchestratorConfig `yaml:"orchestrator" mapstructure:"orchestrator"`

	// Store locates the SQLite project database.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Server configures `forja serve`.
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// GatewayConfig contains completion gateway settings.
type GatewayConfig struct {
	// DefaultCapability is used when a behavior does not ask for one.
	// Default: "primary"
	DefaultCapability string `yaml:"default_capability" mapstructure:"default_capability"`

	// Alternates maps a capability id to the capability retried once when
	// the first fails with a quota or availability error.
	// Default: {"primary": "alternate"}
	Alternates map[string]string `yaml:"alternates" mapstructure:"alternates"`

	// Timeout bounds each capability call.
	// Default: 2 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond limits outgoing calls. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Burst is the limiter burst size. Only used when RequestsPerSecond > 0.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// CapabilityConfig describes an external command that answers prompts.
// The prompt is written to stdin and the reply is read from stdout.
type CapabilityConfig struct {
	// Command is the executable to run.
	Command string `yaml:"command" mapstructure:"command"`

	// Args are passed to Command verbatim.
	Args []string `yaml:"args" mapstructure:"args"`

	// Env adds variables to the command environment.
	Env map[string]string `yaml:"env" mapstructure:"env"`

	// APIKeyEnv names an environment variable that must be set for the
	// capability to run (for example GEMINI_API_KEY).
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// OrchestratorConfig tunes the orchestrator.
type OrchestratorConfig struct {
	// Keywords overrides the classifier keyword sets per intent
	// (project, correction, style, modify). Missing intents keep their defaults.
	Keywords map[string][]string `yaml:"keywords" mapstructure:"keywords"`

	// AgentCapabilities maps an agent task type to a preferred capability id.
	AgentCapabilities map[string]string `yaml:"agent_capabilities" mapstructure:"agent_capabilities"`

	// TitleWidth is the display width of instruction-derived page titles.
	// Default: 60
	TitleWidth int `yaml:"title_width" mapstructure:"title_width"`
}

// StoreConfig configures project persistence.
type StoreConfig struct {
	// Path is the SQLite database file. Empty means .forja/forja.db.
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: "127.0.0.1:7331"
	Addr string `yaml:"addr" mapstructure:"addr"`

	// ReadTimeout bounds reading a request.
	// Default: 30 seconds
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response. Instruction requests wait for
	// the whole pipeline, so this must exceed the gateway timeout.
	// Default: 10 minutes
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	// WaitTimeout bounds how long an instruction request waits for the
	// one already running. Zero waits until the request is cancelled.
	// Default: 0
	WaitTimeout time.Duration `yaml:"wait_timeout" mapstructure:"wait_timeout"`
}

// AlternateFor returns the alternate capability configured for id.
func (g *GatewayConfig) AlternateFor(id string) (string, bool) {
	alt, ok := g.Alternates[id]
	return alt, ok && alt != ""
}
