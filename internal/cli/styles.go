package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/forja/internal/domain"
)

// Semantic colors. AdaptiveColor picks a variant for light and dark terminals.
//
//nolint:gochecknoglobals // styling constants
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	colorError   = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// styles groups the lipgloss styles used by command output.
type styles struct {
	header  lipgloss.Style
	agent   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
}

func newStyles() *styles {
	s := &styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		agent:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colorError),
		dim:     lipgloss.NewStyle().Foreground(colorMuted),
	}
	if noColor() {
		plain := lipgloss.NewStyle()
		s.header, s.agent, s.success, s.warning, s.failure, s.dim = plain, plain, plain, plain, plain, plain
	}
	return s
}

// noColor reports whether colors are disabled by NO_COLOR or TERM=dumb.
func noColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
}

// statusIcon returns the icon for a task status.
func statusIcon(status domain.TaskStatus) string {
	switch status {
	case domain.TaskStatusCompleted:
		return "✓"
	case domain.TaskStatusFailed:
		return "✗"
	case domain.TaskStatusWorking:
		return "●"
	default:
		return "○"
	}
}

// status returns the style for a task status.
func (s *styles) status(status domain.TaskStatus) lipgloss.Style {
	switch status {
	case domain.TaskStatusCompleted:
		return s.success
	case domain.TaskStatusFailed:
		return s.failure
	default:
		return s.dim
	}
}

// message returns the style for a chat message type.
func (s *styles) message(t domain.MessageType) lipgloss.Style {
	switch t {
	case domain.MessageSuccess:
		return s.success
	case domain.MessageError:
		return s.failure
	case domain.MessageNotification:
		return s.warning
	default:
		return lipgloss.NewStyle()
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
