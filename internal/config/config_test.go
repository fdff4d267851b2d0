package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/errors"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPaths_Defaults(t *testing.T) {
	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultCapability, cfg.Gateway.DefaultCapability)
	assert.Equal(t, constants.DefaultCompletionTimeout, cfg.Gateway.Timeout)
	alt, ok := cfg.Gateway.AlternateFor(constants.DefaultCapability)
	assert.True(t, ok)
	assert.Equal(t, constants.DefaultAlternateCapability, alt)
	assert.Equal(t, constants.DefaultTitleWidth, cfg.Orchestrator.TitleWidth)
	assert.Equal(t, constants.DefaultServerAddr, cfg.Server.Addr)
	assert.Empty(t, cfg.Capabilities)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	global := writeFile(t, t.TempDir(), `
gateway:
  timeout: 30s
  default_capability: gemini
capabilities:
  gemini:
    command: gemini-cli
    args: ["--json"]
`)
	project := writeFile(t, t.TempDir(), `
gateway:
  timeout: 45s
orchestrator:
  title_width: 40
  keywords:
    project: ["build me a site", "new project"]
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "gemini", cfg.Gateway.DefaultCapability)
	require.Contains(t, cfg.Capabilities, "gemini")
	assert.Equal(t, "gemini-cli", cfg.Capabilities["gemini"].Command)
	assert.Equal(t, []string{"--json"}, cfg.Capabilities["gemini"].Args)
	assert.Equal(t, 40, cfg.Orchestrator.TitleWidth)
	assert.Equal(t, []string{"build me a site", "new project"}, cfg.Orchestrator.Keywords["project"])
}

func TestLoadFromPaths_EnvOverrides(t *testing.T) {
	t.Setenv("FORJA_GATEWAY_TIMEOUT", "5s")
	t.Setenv("FORJA_SERVER_ADDR", ":9000")

	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoadFromPaths_Invalid(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		project := writeFile(t, t.TempDir(), "gateway: [unclosed")
		_, err := LoadFromPaths(context.Background(), project, "")
		require.Error(t, err)
	})

	t.Run("capability without command", func(t *testing.T) {
		project := writeFile(t, t.TempDir(), "capabilities:\n  primary:\n    args: [x]\n")
		_, err := LoadFromPaths(context.Background(), project, "")
		require.ErrorIs(t, err, errors.ErrConfigInvalidCapability)
	})
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, err := LoadWithOverrides(context.Background(), &Config{
		Store:  StoreConfig{Path: "custom.db"},
		Server: ServerConfig{Addr: ":8080"},
	})
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DatabasePath())
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{
			name:    "empty default capability",
			mutate:  func(c *Config) { c.Gateway.DefaultCapability = "" },
			wantErr: errors.ErrConfigInvalidGateway,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Gateway.Timeout = 0 },
			wantErr: errors.ErrConfigInvalidGateway,
		},
		{
			name:    "self alternate",
			mutate:  func(c *Config) { c.Gateway.Alternates = map[string]string{"a": "a"} },
			wantErr: errors.ErrConfigInvalidGateway,
		},
		{
			name: "rate without burst",
			mutate: func(c *Config) {
				c.Gateway.RequestsPerSecond = 2
				c.Gateway.Burst = 0
			},
			wantErr: errors.ErrConfigInvalidGateway,
		},
		{
			name:    "title width out of range",
			mutate:  func(c *Config) { c.Orchestrator.TitleWidth = 5 },
			wantErr: errors.ErrConfigInvalidOrchestrator,
		},
		{
			name:    "empty server addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: errors.ErrConfigInvalidServer,
		},
		{
			name:    "negative wait timeout",
			mutate:  func(c *Config) { c.Server.WaitTimeout = -time.Second },
			wantErr: errors.ErrConfigInvalidServer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	require.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FORJA_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("FORJA_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("FORJA_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("FORJA_TEST_DOTENV"))
}

func TestPaths(t *testing.T) {
	dir, err := GlobalConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, filepath.Join(".forja", "config.yaml"), ProjectConfigPath())
	assert.Equal(t, filepath.Join(".forja", "forja.db"), DefaultConfig().DatabasePath())
}
