package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/extract"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/prompts"
	"github.com/mrz1836/forja/internal/textutil"
)

// placeholderMarkers flag filler text in generated markup.
//
//nolint:gochecknoglobals // read-only lookup table
var placeholderMarkers = []string{"lorem ipsum", "dolor sit amet", "texto de ejemplo", "your company", "example.com"}

// DesignArchitect produces design proposals and the page files that
// preview them.
type DesignArchitect struct {
	base
}

// NewDesignArchitect creates the Design Architect behavior.
func NewDesignArchitect(deps Deps) *DesignArchitect {
	return &DesignArchitect{base: newBase(domain.TaskDesignArchitect, deps)}
}

// designContext is what the architect detected locally before calling the model.
type designContext struct {
	instruction string
	mode        DesignMode
	industry    Industry
	palette     domain.ColorPalette
	html        string
	css         string
}

// Execute classifies the instruction, asks the model for a proposal and
// builds index.html, styles.css and script.js from it. Any gateway,
// extraction or validation failure yields a deterministic local proposal.
func (d *DesignArchitect) Execute(ctx context.Context, in *Input) *domain.AgentResult {
	dc := d.detect(in)
	res := &domain.AgentResult{Success: true}

	d.logger.Debug().
		Str("mode", string(dc.mode)).
		Str("industry", dc.industry.Key).
		Str("palette", dc.palette.Name).
		Msg("design context detected")

	proposal, warnings, err := d.requestProposal(ctx, in, dc)
	if err != nil {
		d.logger.Warn().Err(err).Str("mode", string(dc.mode)).Msg("using local design proposal")
		proposal = d.fallbackProposal(dc)
		res.Fallback = true
		warnings = append(warnings, errors.UserMessage(err))
	}
	d.backfill(proposal, dc)

	res.Proposal = proposal
	res.Files = d.siteFiles(Site{HTML: proposal.HTMLPreview, CSS: proposal.CSSPreview, JS: proposal.JSPreview})
	res.Warnings = warnings
	res.Message = fmt.Sprintf("Propuesta de diseño lista: %s (paleta %s)", proposal.Title, proposal.ColorPalette.Name)
	return res
}

func (d *DesignArchitect) detect(in *Input) designContext {
	instruction := in.Instruction()
	mode := in.DesignMode
	if mode == DesignModeAuto || !mode.IsValid() {
		mode = ClassifyDesign(instruction)
	}
	dc := designContext{
		instruction: instruction,
		mode:        mode,
		industry:    DetectIndustry(instruction),
		palette:     ResolvePalette(instruction),
	}
	if f, ok := findByExt(in.Files, "index.html", ".html"); ok {
		dc.html = f.Content
	}
	if f, ok := findByExt(in.Files, "styles.css", ".css"); ok {
		dc.css = f.Content
	}
	return dc
}

func (d *DesignArchitect) requestProposal(ctx context.Context, in *Input, dc designContext) (*domain.DesignProposal, []string, error) {
	data := prompts.DesignData{
		Instruction: dc.instruction,
		Palette:     paletteInfo(dc.palette),
		Industry:    dc.industry.Key,
	}
	if in.Plan != nil {
		data.Plan = in.Plan.Markdown()
	}
	if dc.mode == DesignModeEnhance || dc.mode == DesignModeColor {
		data.ExistingHTML = dc.html
		data.ExistingCSS = dc.css
	}

	reply, err := d.complete(ctx, dc.mode.promptID(), data)
	if err != nil {
		return nil, nil, err
	}
	proposal, err := extract.Decode[domain.DesignProposal](reply)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if strings.TrimSpace(proposal.HTMLPreview) == "" && dc.mode == DesignModeColor && strings.TrimSpace(dc.html) != "" {
		proposal.HTMLPreview = dc.html
		warnings = append(warnings, "Se conservó el HTML existente porque la propuesta no incluía uno nuevo.")
	}
	if strings.TrimSpace(proposal.HTMLPreview) == "" {
		return nil, nil, errors.Wrap(errors.ErrValidation, "proposal has no htmlPreview")
	}
	if strings.TrimSpace(proposal.CSSPreview) == "" {
		return nil, nil, errors.Wrap(errors.ErrValidation, "proposal has no cssPreview")
	}

	folded := textutil.Fold(proposal.HTMLPreview)
	if marker, ok := textutil.FirstMatch(folded, placeholderMarkers); ok {
		d.logger.Warn().Str("marker", marker).Msg("proposal contains placeholder text")
		warnings = append(warnings, fmt.Sprintf("La propuesta contiene texto de relleno (%q).", marker))
	}
	return &proposal, warnings, nil
}

// backfill fills ids, palette slots and defaults, and makes the
// stylesheet declare the palette variables.
func (d *DesignArchitect) backfill(p *domain.DesignProposal, dc designContext) {
	if p.ID == "" {
		p.ID = d.deps.IDs.NewID(idgen.PrefixProposal)
	}
	for i := range p.Components {
		if p.Components[i].ID == "" {
			p.Components[i].ID = d.deps.IDs.NewID(idgen.PrefixComponent)
		}
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = "Propuesta " + dc.industry.Label
	}
	if p.Industry == "" {
		p.Industry = dc.industry.Key
	}
	if p.Style == "" {
		p.Style = "moderno"
	}
	p.ColorPalette = fillPalette(p.ColorPalette, dc.palette)
	if p.Typography.HeadingFont == "" {
		p.Typography.HeadingFont = "Poppins"
	}
	if p.Typography.BodyFont == "" {
		p.Typography.BodyFont = "Inter"
	}
	if p.Typography.BaseSize == "" {
		p.Typography.BaseSize = "16px"
	}
	p.CSSPreview = EnsurePaletteVars(p.CSSPreview, p.ColorPalette)
}

// fallbackProposal builds the deterministic local proposal.
func (d *DesignArchitect) fallbackProposal(dc designContext) *domain.DesignProposal {
	site := FallbackSite(dc.instruction, dc.industry, dc.palette, d.deps.TitleWidth)
	if dc.mode == DesignModeColor && strings.TrimSpace(dc.html) != "" {
		site.HTML = dc.html
	}

	return &domain.DesignProposal{
		Title:        "Propuesta " + dc.industry.Label,
		Description:  fmt.Sprintf("Diseño %s con la paleta %s.", strings.ToLower(dc.industry.Label), dc.palette.Name),
		Style:        "moderno",
		Industry:     dc.industry.Key,
		ColorPalette: dc.palette,
		Typography:   domain.Typography{HeadingFont: "Poppins", BodyFont: "Inter", BaseSize: "16px"},
		Components: []domain.DesignComponent{
			{Name: "Encabezado", Type: "header", Description: "Marca y navegación principal."},
			{Name: "Portada", Type: "section", Description: dc.industry.Headline},
			{Name: "Servicios", Type: "section", Description: "Tarjetas con la oferta principal."},
			{Name: "Contacto", Type: "form", Description: "Formulario de contacto."},
			{Name: "Pie de página", Type: "footer", Description: "Datos de la marca."},
		},
		HTMLPreview: site.HTML,
		CSSPreview:  site.CSS,
		JSPreview:   site.JS,
	}
}

var _ Behavior = (*DesignArchitect)(nil)
