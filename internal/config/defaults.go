package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/mrz1836/forja/internal/constants"
)

// defaultWriteTimeout leaves room for a full project pipeline.
const defaultWriteTimeout = 10 * time.Minute

// DefaultConfig returns a new Config with the built-in defaults.
// No capability is configured by default; a project adds its own commands.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			DefaultCapability: constants.DefaultCapability,
			Alternates: map[string]string{
				constants.DefaultCapability: constants.DefaultAlternateCapability,
			},
			Timeout: constants.DefaultCompletionTimeout,
		},
		Orchestrator: OrchestratorConfig{
			TitleWidth: constants.DefaultTitleWidth,
		},
		Server: ServerConfig{
			Addr:         constants.DefaultServerAddr,
			ReadTimeout:  constants.DefaultServerReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("gateway.default_capability", d.Gateway.DefaultCapability)
	v.SetDefault("gateway.alternates", d.Gateway.Alternates)
	v.SetDefault("gateway.timeout", d.Gateway.Timeout.String())
	v.SetDefault("gateway.requests_per_second", 0)
	v.SetDefault("gateway.burst", 1)

	v.SetDefault("capabilities", map[string]any{})

	v.SetDefault("orchestrator.keywords", map[string][]string{})
	v.SetDefault("orchestrator.agent_capabilities", map[string]string{})
	v.SetDefault("orchestrator.title_width", d.Orchestrator.TitleWidth)

	v.SetDefault("store.path", "")

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout.String())
	v.SetDefault("server.wait_timeout", d.Server.WaitTimeout.String())
}
