package config

import (
	"sort"

	"github.com/mrz1836/forja/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first failure found.
//
// Validation rules:
//   - gateway.default_capability must not be empty
//   - gateway.timeout must be positive
//   - gateway.requests_per_second cannot be negative; burst must be >= 1 when set
//   - an alternate must differ from the capability it backs up
//   - every capability needs a command
//   - orchestrator.title_width must be between 10 and 200
//   - server.addr must not be empty and timeouts must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateGateway(&cfg.Gateway); err != nil {
		return err
	}
	if err := validateCapabilities(cfg.Capabilities); err != nil {
		return err
	}
	if cfg.Orchestrator.TitleWidth < 10 || cfg.Orchestrator.TitleWidth > 200 {
		return errors.Wrapf(errors.ErrConfigInvalidOrchestrator,
			"orchestrator.title_width must be between 10 and 200, got %d", cfg.Orchestrator.TitleWidth)
	}
	return validateServer(&cfg.Server)
}

func validateGateway(cfg *GatewayConfig) error {
	if cfg.DefaultCapability == "" {
		return errors.Wrap(errors.ErrConfigInvalidGateway,
			"gateway.default_capability must not be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGateway,
			"gateway.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.RequestsPerSecond < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGateway,
			"gateway.requests_per_second cannot be negative, got %g", cfg.RequestsPerSecond)
	}
	if cfg.RequestsPerSecond > 0 && cfg.Burst < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidGateway,
			"gateway.burst must be at least 1, got %d", cfg.Burst)
	}
	for id, alt := range cfg.Alternates {
		if id == alt {
			return errors.Wrapf(errors.ErrConfigInvalidGateway,
				"gateway.alternates.%s cannot point to itself", id)
		}
	}
	return nil
}

func validateCapabilities(caps map[string]CapabilityConfig) error {
	ids := make([]string, 0, len(caps))
	for id := range caps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if caps[id].Command == "" {
			return errors.Wrapf(errors.ErrConfigInvalidCapability,
				"capabilities.%s.command must not be empty", id)
		}
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Addr == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.addr must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server timeouts must be positive, got read=%s write=%s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.WaitTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer, "server.wait_timeout must not be negative, got %s", cfg.WaitTimeout)
	}
	return nil
}
