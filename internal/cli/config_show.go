package cli

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/forja/internal/config"
	"github.com/mrz1836/forja/internal/logging"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect forja configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, ~/.forja/config.yaml,
.forja/config.yaml and FORJA_* environment variables. Secrets are masked.

Examples:
  forja config show
  forja config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), GetLogger())
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), flags, cfg)
		},
	})
	root.AddCommand(cmd)
}

func printConfig(w io.Writer, flags *GlobalFlags, cfg *config.Config) error {
	masked := maskConfig(cfg)
	if flags.JSON() {
		return writeJSON(w, masked)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(masked); err != nil {
		return err
	}
	return enc.Close()
}

// maskConfig returns a copy of cfg with capability secrets hidden.
func maskConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if cfg.Capabilities == nil {
		return &out
	}
	out.Capabilities = make(map[string]config.CapabilityConfig, len(cfg.Capabilities))
	for id, c := range cfg.Capabilities {
		masked := c
		if len(c.Args) > 0 {
			masked.Args = make([]string, len(c.Args))
			for i, a := range c.Args {
				masked.Args[i] = logging.Redact(a)
			}
		}
		if len(c.Env) > 0 {
			masked.Env = make(map[string]string, len(c.Env))
			for k, v := range c.Env {
				masked.Env[k] = logging.SafeValue(k, v)
			}
		}
		out.Capabilities[id] = masked
	}
	return &out
}
