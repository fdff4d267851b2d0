package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/config"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/logging"
)

// CapabilityEnvVar is set on every capability command to the requested id.
const CapabilityEnvVar = "FORJA_CAPABILITY"

// CommandExecutor abstracts command execution for testing.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor runs commands as operating system processes.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CommandCapability answers prompts by running an external command: the
// prompt goes to stdin and the reply is read from stdout. Failures are
// classified from stderr into errors.ErrQuota or errors.ErrGateway.
type CommandCapability struct {
	spec     config.CapabilityConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// NewCommandCapability creates a capability for spec. A nil executor uses
// DefaultExecutor.
func NewCommandCapability(spec config.CapabilityConfig, executor CommandExecutor, logger zerolog.Logger) *CommandCapability {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	return &CommandCapability{spec: spec, executor: executor, logger: logger}
}

// Complete runs the command for capabilityID.
func (c *CommandCapability) Complete(ctx context.Context, prompt, capabilityID string) (string, error) {
	if c.spec.APIKeyEnv != "" && os.Getenv(c.spec.APIKeyEnv) == "" {
		return "", fmt.Errorf("%w: %s requires %s to be set",
			errors.ErrConfigInvalidCapability, capabilityID, c.spec.APIKeyEnv)
	}

	cmd := exec.CommandContext(ctx, c.spec.Command, c.spec.Args...) //nolint:gosec // command comes from project config
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = c.environ(capabilityID)

	c.logger.Debug().
		Str("capability", capabilityID).
		Str("command", c.spec.Command).
		Strs("args", redactArgs(c.spec.Args)).
		Msg("running capability command")

	stdout, stderr, err := c.executor.Execute(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrapf(ctx.Err(), "capability %s", capabilityID)
		}
		return "", classifyCommandError(capabilityID, err, stderr)
	}
	return string(stdout), nil
}

func (c *CommandCapability) environ(capabilityID string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(c.spec.Env))
	for k := range c.spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+os.ExpandEnv(c.spec.Env[k]))
	}
	return append(env, CapabilityEnvVar+"="+capabilityID)
}

// classifyCommandError turns a failed run into a quota or gateway error.
func classifyCommandError(id string, err error, stderr []byte) error {
	msg := strings.TrimSpace(logging.Redact(string(stderr)))
	if msg == "" {
		msg = err.Error()
	}
	switch {
	case strings.Contains(err.Error(), "executable file not found"):
		return fmt.Errorf("%w: %s: command not found", errors.ErrGateway, id)
	case hasQuotaMarker(msg):
		return fmt.Errorf("%w: %s: %s", errors.ErrQuota, id, msg)
	default:
		return fmt.Errorf("%w: %s: %s", errors.ErrGateway, id, msg)
	}
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = logging.Redact(a)
	}
	return out
}

// NewRegistryFromConfig registers one CommandCapability per configured
// capability id.
func NewRegistryFromConfig(caps map[string]config.CapabilityConfig, executor CommandExecutor, logger zerolog.Logger) *Registry {
	reg := NewRegistry()
	for id, spec := range caps {
		reg.Register(id, NewCommandCapability(spec, executor, logger))
	}
	return reg
}

// Compile-time check that CommandCapability implements Capability.
var _ Capability = (*CommandCapability)(nil)
