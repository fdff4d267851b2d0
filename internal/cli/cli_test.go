package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/config"
	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	forjaerrors "github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/flock"
	"github.com/mrz1836/forja/internal/orchestrator"
)

// isolate runs the test in an empty project with its own home directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("FORJA_HOME", filepath.Join(dir, constants.ForjaHome))
	t.Setenv("NO_COLOR", "1")
	return dir
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path) //nolint:gosec // test path
	return string(b), err
}

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	CloseLogFile()
	return out.String(), err
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "output format", err: fmt.Errorf("%w: yaml", forjaerrors.ErrInvalidOutputFormat), want: ExitInvalidInput},
		{name: "empty instruction", err: forjaerrors.ErrEmptyInstruction, want: ExitInvalidInput},
		{name: "invalid intent", err: forjaerrors.Wrap(forjaerrors.ErrInvalidIntent, "x"), want: ExitInvalidInput},
		{name: "cobra flag error", err: errors.New("unknown flag: --nope"), want: ExitInvalidInput},
		{name: "failed tasks", err: forjaerrors.ErrInstructionFailed, want: ExitError},
		{name: "other", err: errors.New("disk full"), want: ExitError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestInitLoggerWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.DebugLevel, InitLoggerWithWriter(true, false, &buf).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, InitLoggerWithWriter(false, true, &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, InitLoggerWithWriter(false, false, &buf).GetLevel())
}

func TestInitLogger_FlagsSecretsInFile(t *testing.T) {
	dir := isolate(t)

	logger := InitLogger(false, false)
	logger.Info().Msg("token=sk-" + "TESTONLYxxxxxxxxxxxxxxxxxxxx1234")
	CloseLogFile()

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, constants.ForjaHome, constants.LogsDir, constants.CLILogFileName), path)

	data, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, data, "[REDACTED]")
	assert.NotContains(t, data, "TESTONLY")
	assert.Contains(t, data, `"contains_filtered_data":true`)
}

func TestPlanMarkdown(t *testing.T) {
	md := planMarkdown(&domain.Plan{
		Title:        "Cafetería",
		Summary:      "Sitio de una página.",
		Technologies: []string{"HTML", "CSS"},
		Steps: []domain.PlanStep{
			{Title: "Estructura", Description: "Maquetar secciones", Files: []string{"index.html"}},
			{Title: "Estilos"},
		},
	})
	assert.Contains(t, md, "# Cafetería\n")
	assert.Contains(t, md, "**Tecnologías:** HTML, CSS")
	assert.Contains(t, md, "1. **Estructura**\n   Maquetar secciones\n   Archivos: `index.html`\n")
	assert.Contains(t, md, "2. **Estilos**\n")
}

func TestLookupFile(t *testing.T) {
	files := []domain.FileItem{
		{ID: "file-1", Name: "index.html", Path: "/index.html"},
		{ID: "file-2", Name: "app.js", Path: "/js/app.js"},
	}

	f, err := lookupFile(files, "file-2")
	require.NoError(t, err)
	assert.Equal(t, "/js/app.js", f.Path)

	f, err = lookupFile(files, "js/app.js")
	require.NoError(t, err)
	assert.Equal(t, "file-2", f.ID)

	f, err = lookupFile(files, "index.html")
	require.NoError(t, err)
	assert.Equal(t, "file-1", f.ID)

	_, err = lookupFile(files, "nope.css")
	require.ErrorIs(t, err, forjaerrors.ErrFileNotFound)
}

func TestPrintTasks_Table(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	tasks := []*domain.AgentTask{{
		ID: "task-1", Type: domain.TaskCodeGenerator, Status: domain.TaskStatusFailed,
		StartTime: start, EndTime: &end, Error: "El modelo de lenguaje devolvió un error.",
	}}

	var buf bytes.Buffer
	require.NoError(t, printTasks(&buf, &GlobalFlags{Output: OutputText}, tasks))
	out := buf.String()
	assert.Contains(t, out, "task-1")
	assert.Contains(t, out, "Code Generator")
	assert.Contains(t, out, "✗ failed")
	assert.Contains(t, out, "1.5s")

	buf.Reset()
	require.NoError(t, printTasks(&buf, &GlobalFlags{Output: OutputJSON}, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestMaskConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Capabilities = map[string]config.CapabilityConfig{
		"primary": {
			Command: "llm",
			Args:    []string{"--key", "sk-" + "TESTONLYxxxxxxxxxxxxxxxxxxxx1234"},
			Env:     map[string]string{"LLM_API_KEY": "plain-secret", "LLM_MODEL": "small"},
		},
	}

	masked := maskConfig(cfg)
	c := masked.Capabilities["primary"]
	assert.Equal(t, "[REDACTED]", c.Env["LLM_API_KEY"])
	assert.Equal(t, "small", c.Env["LLM_MODEL"])
	assert.Equal(t, "[REDACTED]", c.Args[1])
	assert.Equal(t, "plain-secret", cfg.Capabilities["primary"].Env["LLM_API_KEY"], "original untouched")

	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, &GlobalFlags{Output: OutputText}, cfg))
	assert.Contains(t, buf.String(), "default_capability: primary")
	assert.NotContains(t, buf.String(), "plain-secret")
}

func TestRootCommand_InvalidOutput(t *testing.T) {
	isolate(t)
	_, err := executeCmd(t, "files", "-o", "yaml")
	require.ErrorIs(t, err, forjaerrors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRunCommand_InvalidIntent(t *testing.T) {
	isolate(t)
	_, err := executeCmd(t, "run", "-q", "--intent", "deploy", "hola")
	require.ErrorIs(t, err, forjaerrors.ErrInvalidIntent)
}

func TestRunCommand_ProjectLocked(t *testing.T) {
	dir := isolate(t)

	lock, err := flock.Acquire(filepath.Join(dir, constants.ForjaHome, constants.LockFileName))
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = executeCmd(t, "run", "-q", "genera", "una", "tienda")
	require.ErrorIs(t, err, forjaerrors.ErrProjectLocked)
	assert.Equal(t, ExitError, ExitCodeForError(err))
}

func TestCommands_EndToEndOffline(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "run", "-q", "-o", "json", "genera", "una", "tienda", "online")
	require.NoError(t, err)

	var outcome orchestrator.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, orchestrator.IntentGenerate, outcome.Intent)
	require.Len(t, outcome.Tasks, 2)
	assert.True(t, outcome.Succeeded())
	require.NotEmpty(t, outcome.Files)

	out, err = executeCmd(t, "files", "-q", "-o", "json")
	require.NoError(t, err)
	var files []domain.FileItem
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	assert.Len(t, files, len(outcome.Files))

	out, err = executeCmd(t, "show", "-q", "index.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "<!doctype html>"))

	out, err = executeCmd(t, "tasks", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Code Generator")
	assert.Contains(t, out, "File Observer")

	out, err = executeCmd(t, "plan", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Todavía no hay un plan")

	// A second run reloads the saved project before merging.
	_, err = executeCmd(t, "run", "-q", "-o", "json", "genera", "una", "tienda")
	require.NoError(t, err)
	out, err = executeCmd(t, "tasks", "-q", "-o", "json")
	require.NoError(t, err)
	var tasks []*domain.AgentTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Len(t, tasks, 4)
}
