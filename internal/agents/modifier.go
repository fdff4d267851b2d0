package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/extract"
	"github.com/mrz1836/forja/internal/prompts"
)

//nolint:gochecknoglobals // compiled once
var codeFence = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[^\\n`]*\\n(.*?)```")

// CodeModifier rewrites one existing file following the instruction.
type CodeModifier struct {
	base
}

// NewCodeModifier creates the Code Modifier behavior.
func NewCodeModifier(deps Deps) *CodeModifier {
	return &CodeModifier{base: newBase(domain.TaskCodeModifier, deps)}
}

type modifierReply struct {
	Content string `json:"content"`
	Summary string `json:"summary"`
}

// Execute returns the target file with new content. It never invents an
// edit: a missing file or a failed completion is an error result.
func (m *CodeModifier) Execute(ctx context.Context, in *Input) *domain.AgentResult {
	idx := domain.FindByID(in.Files, in.TargetFileID)
	if idx < 0 {
		return domain.Failed(fileNotFoundMessage(in.TargetFileID))
	}
	target := in.Files[idx]

	reply, err := m.complete(ctx, prompts.CodeModifier, prompts.CodeModifierData{
		Instruction: in.Instruction(),
		File:        fileInfo(target),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("file", target.Path).Msg("modification failed")
		return domain.Failed(errors.UserMessage(err))
	}

	var warnings []string
	decoded, err := extract.Decode[modifierReply](reply)
	if err != nil || strings.TrimSpace(decoded.Content) == "" {
		code, ok := fencedCode(reply)
		if !ok {
			if err == nil {
				err = errors.Wrap(errors.ErrValidation, "reply has no content")
			}
			m.logger.Error().Err(err).Str("file", target.Path).Msg("modification reply unusable")
			return domain.Failed(errors.UserMessage(err))
		}
		decoded = modifierReply{Content: code}
		warnings = append(warnings, "El modelo devolvió código sin JSON; se usó el bloque de código.")
	}

	now := m.deps.Clock.Now()
	updated := target
	updated.Content = decoded.Content
	updated.Size = int64(len(decoded.Content))
	updated.LastModified = now
	updated.IsModified = true
	updated.IsNew = false
	if updated.Language == "" {
		updated.Language = domain.LanguageForPath(updated.Path)
	}

	msg := strings.TrimSpace(decoded.Summary)
	if msg == "" {
		msg = fmt.Sprintf("Archivo %s modificado", updated.Name)
	}
	return &domain.AgentResult{
		Success:  true,
		Files:    []domain.FileItem{updated},
		Message:  msg,
		Warnings: warnings,
	}
}

func fileNotFoundMessage(id string) string {
	return fmt.Sprintf("No se encontró el archivo con ID %s", id)
}

// fencedCode returns the first non-empty fenced code block of reply.
func fencedCode(reply string) (string, bool) {
	for _, m := range codeFence.FindAllStringSubmatch(reply, -1) {
		if code := strings.TrimSpace(m[1]); code != "" && !strings.HasPrefix(code, "{") {
			return m[1], true
		}
	}
	return "", false
}

var _ Behavior = (*CodeModifier)(nil)
