package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/forja/internal/errors"
)

// EnvPrefix is the prefix of environment overrides (FORJA_GATEWAY_TIMEOUT ...).
const EnvPrefix = "FORJA"

// newViperInstance creates a Viper instance with defaults and env binding.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration from defaults, the global and project config
// files and FORJA_* environment variables. Missing files are not errors.
func Load(ctx context.Context) (*Config, error) {
	project := ProjectConfigPath()
	global, err := GlobalConfigPath()
	if err != nil {
		global = ""
	}

	cfg, err := LoadFromPaths(ctx, project, global)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("gateway.default_capability", cfg.Gateway.DefaultCapability).
		Dur("gateway.timeout", cfg.Gateway.Timeout).
		Int("capabilities", len(cfg.Capabilities)).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific files. Either path may be
// empty or point to a missing file to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if err := mergeFile(v, globalConfigPath); err != nil {
		return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
	}
	if err := mergeFile(v, projectConfigPath); err != nil {
		return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
	}

	return unmarshalAndValidate(v)
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // missing config files are skipped
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// LoadWithOverrides loads configuration and applies non-zero CLI flag values.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

func applyOverrides(cfg, overrides *Config) {
	if overrides.Gateway.DefaultCapability != "" {
		cfg.Gateway.DefaultCapability = overrides.Gateway.DefaultCapability
	}
	if overrides.Gateway.Timeout != 0 {
		cfg.Gateway.Timeout = overrides.Gateway.Timeout
	}
	if overrides.Store.Path != "" {
		cfg.Store.Path = overrides.Store.Path
	}
	if overrides.Server.Addr != "" {
		cfg.Server.Addr = overrides.Server.Addr
	}
}

// viperDecoderOption decodes duration strings such as "2m".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Existing variables win and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load %s", p)
		}
	}
	return nil
}
