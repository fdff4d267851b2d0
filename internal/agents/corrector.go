package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/extract"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/prompts"
)

// Corrector stage names.
const (
	StageAnalyze  = "analyze"
	StageDetect   = "detect"
	StageGenerate = "generate"
)

//nolint:gochecknoglobals // compiled once
var functionPattern = regexp.MustCompile(`\bfunction\b|=>|\bfunc\s|\bdef\s`)

// CodeCorrector analyzes a file, detects issues and proposes corrections.
// It never mutates the file; callers apply changes with ApplyChanges.
type CodeCorrector struct {
	base
}

// NewCodeCorrector creates the Code Corrector behavior.
func NewCodeCorrector(deps Deps) *CodeCorrector {
	return &CodeCorrector{base: newBase(domain.TaskCodeCorrector, deps)}
}

type detectReply struct {
	Issues []Issue `json:"issues"`
}

type generateReply struct {
	CorrectedCode string                    `json:"correctedCode"`
	Changes       []domain.CorrectionChange `json:"changes"`
}

// stageLabels are the working messages of each stage.
//
//nolint:gochecknoglobals // read-only lookup table
var stageLabels = map[string]string{
	StageAnalyze:  "Analizando el código",
	StageDetect:   "Detectando problemas",
	StageGenerate: "Generando correcciones",
}

// Execute runs the analyze, detect and generate stages, reporting each
// transition through in.OnStage. Detect and generate fall back to local
// heuristics and mark their stage as a warning; a stage left without any
// output is an error.
func (c *CodeCorrector) Execute(ctx context.Context, in *Input) *domain.AgentResult {
	for _, name := range []string{StageAnalyze, StageDetect, StageGenerate} {
		in.reportStage(domain.StageReport{Name: name, Status: domain.StageIdle})
	}

	idx := domain.FindByID(in.Files, in.TargetFileID)
	if idx < 0 {
		msg := fileNotFoundMessage(in.TargetFileID)
		in.reportStage(domain.StageReport{Name: StageAnalyze, Status: domain.StageError, Message: msg})
		return domain.Failed(msg)
	}
	file := fileInfo(in.Files[idx])
	res := &domain.AgentResult{Success: true, Language: file.Language}
	record := func(r domain.StageReport) {
		res.Stages = append(res.Stages, r)
		if r.Status == domain.StageWarning || r.Status == domain.StageError {
			res.Fallback = true
		}
		in.reportStage(r)
	}
	working := func(name string) {
		in.reportStage(domain.StageReport{Name: name, Status: domain.StageWorking, Message: stageLabels[name]})
	}

	working(StageAnalyze)
	lines, funcs := codeMetrics(file.Content)
	record(domain.StageReport{
		Name:    StageAnalyze,
		Status:  domain.StageSuccess,
		Message: fmt.Sprintf("%s: %d líneas, %d funciones", file.Language, lines, funcs),
	})

	working(StageDetect)
	issues, stage := c.detect(ctx, in.Instruction(), file, lines, funcs)
	record(stage)

	working(StageGenerate)
	corrected, changes, stage := c.generate(ctx, in.Instruction(), file, issues)
	record(stage)

	for i := range changes {
		if changes[i].ID == "" {
			changes[i].ID = c.deps.IDs.NewID(idgen.PrefixChange)
		}
		if !changes[i].Type.IsValid() {
			changes[i].Type = domain.CorrectionFix
		}
		changes[i].Confidence = clamp01(changes[i].Confidence)
	}
	res.Changes = changes
	res.CorrectedCode = corrected
	res.Message = fmt.Sprintf("Se encontraron %d problemas y se propusieron %d cambios en %s",
		len(issues), len(changes), in.Files[idx].Name)
	return res
}

func (c *CodeCorrector) detect(ctx context.Context, instruction string, file prompts.FileInfo, lines, funcs int) ([]Issue, domain.StageReport) {
	stage := domain.StageReport{Name: StageDetect}

	reply, err := c.complete(ctx, prompts.CorrectorDetect, prompts.CorrectorDetectData{
		Instruction: instruction,
		File:        file,
		Lines:       lines,
		Functions:   funcs,
	})
	var decoded detectReply
	if err == nil {
		decoded, err = extract.Decode[detectReply](reply)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("file", file.Path).Msg("using local issue detection")
		issues := DetectIssues(file.Content, file.Language)
		stage.Status = domain.StageWarning
		stage.Message = fmt.Sprintf("Análisis local: %d problemas (%s)", len(issues), errors.UserMessage(err))
		return issues, stage
	}

	issues := decoded.Issues[:0]
	for _, is := range decoded.Issues {
		if strings.TrimSpace(is.Message) == "" {
			continue
		}
		if is.Severity == "" {
			is.Severity = SeverityWarning
		}
		issues = append(issues, is)
	}
	stage.Status = domain.StageSuccess
	stage.Message = fmt.Sprintf("%d problemas detectados", len(issues))
	return issues, stage
}

func (c *CodeCorrector) generate(ctx context.Context, instruction string, file prompts.FileInfo, issues []Issue) (string, []domain.CorrectionChange, domain.StageReport) {
	stage := domain.StageReport{Name: StageGenerate}
	if len(issues) == 0 {
		stage.Status = domain.StageSuccess
		stage.Message = "Sin cambios necesarios"
		return file.Content, nil, stage
	}

	infos := make([]prompts.IssueInfo, len(issues))
	for i, is := range issues {
		infos[i] = prompts.IssueInfo{Line: is.Line, Severity: is.Severity, Message: is.Message}
	}
	reply, err := c.complete(ctx, prompts.CorrectorGenerate, prompts.CorrectorGenerateData{
		Instruction: instruction,
		File:        file,
		Issues:      infos,
	})
	var decoded generateReply
	if err == nil {
		decoded, err = extract.Decode[generateReply](reply)
	}
	if err == nil && strings.TrimSpace(decoded.CorrectedCode) == "" {
		err = errors.Wrap(errors.ErrValidation, "reply has no correctedCode")
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("file", file.Path).Msg("using local fixes")
		changes := localFixes(file.Content, file.Language, issues)
		if len(changes) == 0 {
			stage.Status = domain.StageError
			stage.Message = fmt.Sprintf("No se pudieron generar correcciones (%s)", errors.UserMessage(err))
			return file.Content, nil, stage
		}
		corrected, _ := ApplyChanges(file.Content, changes)
		stage.Status = domain.StageWarning
		stage.Message = fmt.Sprintf("Correcciones locales: %d cambios (%s)", len(changes), errors.UserMessage(err))
		return corrected, changes, stage
	}

	stage.Status = domain.StageSuccess
	stage.Message = fmt.Sprintf("%d cambios propuestos", len(decoded.Changes))
	return decoded.CorrectedCode, decoded.Changes, stage
}

// codeMetrics counts lines and function-like declarations.
func codeMetrics(content string) (lines, funcs int) {
	if content == "" {
		return 0, 0
	}
	lines = strings.Count(content, "\n") + 1
	if strings.HasSuffix(content, "\n") {
		lines--
	}
	return lines, len(functionPattern.FindAllStringIndex(content, -1))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

var _ Behavior = (*CodeCorrector)(nil)
