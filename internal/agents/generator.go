package agents

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/extract"
	"github.com/mrz1836/forja/internal/prompts"
	"github.com/mrz1836/forja/internal/reconcile"
)

// CodeGenerator writes project files from an instruction, an optional
// plan and an optional design proposal.
type CodeGenerator struct {
	base
}

// NewCodeGenerator creates the Code Generator behavior.
func NewCodeGenerator(deps Deps) *CodeGenerator {
	return &CodeGenerator{base: newBase(domain.TaskCodeGenerator, deps)}
}

type generatedFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

type generatorReply struct {
	Files []generatedFile `json:"files"`
}

// Execute asks the model for files. Stylesheets without palette variables
// get the proposal palette. When the reply cannot be used the proposal
// previews, or a local skeleton, become the files.
func (g *CodeGenerator) Execute(ctx context.Context, in *Input) *domain.AgentResult {
	instruction := in.Instruction()
	res := &domain.AgentResult{Success: true}

	palette := ResolvePalette(instruction)
	if in.Proposal != nil {
		palette = fillPalette(in.Proposal.ColorPalette, palette)
	}

	files, err := g.requestFiles(ctx, in, palette)
	if err != nil {
		g.logger.Warn().Err(err).Msg("using local files")
		files = g.fallbackFiles(instruction, in.Proposal, palette)
		res.Fallback = true
		res.Warnings = append(res.Warnings, errors.UserMessage(err))
	}

	res.Files = files
	res.Message = fmt.Sprintf("Se generaron %d archivos: %s", len(files), fileNames(files))
	return res
}

func (g *CodeGenerator) requestFiles(ctx context.Context, in *Input, palette domain.ColorPalette) ([]domain.FileItem, error) {
	data := prompts.CodeGeneratorData{
		Instruction: in.Instruction(),
		Files:       fileInfos(in.Files, true),
	}
	if in.Plan != nil {
		data.Plan = in.Plan.Markdown()
	}
	if in.Proposal != nil {
		info := paletteInfo(palette)
		data.Palette = &info
		data.DesignHTML = in.Proposal.HTMLPreview
		data.DesignCSS = in.Proposal.CSSPreview
	}

	reply, err := g.complete(ctx, prompts.CodeGenerator, data)
	if err != nil {
		return nil, err
	}
	decoded, err := extract.Decode[generatorReply](reply)
	if err != nil {
		return nil, err
	}

	now := g.deps.Clock.Now()
	files := make([]domain.FileItem, 0, len(decoded.Files))
	for _, f := range decoded.Files {
		p := f.Path
		if strings.TrimSpace(p) == "" {
			p = f.Name
		}
		if strings.TrimSpace(p) == "" || strings.TrimSpace(f.Content) == "" {
			g.logger.Debug().Str("path", p).Msg("skipping generated file without path or content")
			continue
		}
		content := f.Content
		if in.Proposal != nil && isStylesheet(p) {
			content = EnsurePaletteVars(content, palette)
		}
		files = append(files, g.newFile(p, content, f.Language, now))
	}
	if len(files) == 0 {
		return nil, errors.Wrap(errors.ErrValidation, "reply has no usable files")
	}
	return files, nil
}

func (g *CodeGenerator) fallbackFiles(instruction string, proposal *domain.DesignProposal, palette domain.ColorPalette) []domain.FileItem {
	if proposal != nil && strings.TrimSpace(proposal.HTMLPreview) != "" && strings.TrimSpace(proposal.CSSPreview) != "" {
		return g.siteFiles(Site{
			HTML: proposal.HTMLPreview,
			CSS:  EnsurePaletteVars(proposal.CSSPreview, palette),
			JS:   proposal.JSPreview,
		})
	}
	return g.siteFiles(FallbackSite(instruction, DetectIndustry(instruction), palette, g.deps.TitleWidth))
}

func isStylesheet(p string) bool {
	return strings.EqualFold(path.Ext(reconcile.NormalizePath(p)), ".css")
}

func fileNames(files []domain.FileItem) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

var _ Behavior = (*CodeGenerator)(nil)
