package agents

import (
	"github.com/mrz1836/forja/internal/prompts"
	"github.com/mrz1836/forja/internal/textutil"
)

// DesignMode selects what the Design Architect produces.
type DesignMode string

// Design Architect modes.
const (
	// DesignModeAuto classifies the instruction.
	DesignModeAuto DesignMode = ""
	// DesignModeProposal produces a complete mockup.
	DesignModeProposal DesignMode = "proposal"
	// DesignModeEnhance restyles the existing markup.
	DesignModeEnhance DesignMode = "enhance"
	// DesignModeColor swaps the colour palette of the existing styles.
	DesignModeColor DesignMode = "color"
	// DesignModeComponents produces generic UI components.
	DesignModeComponents DesignMode = "components"
)

// IsValid reports whether m is a concrete mode or DesignModeAuto.
func (m DesignMode) IsValid() bool {
	switch m {
	case DesignModeAuto, DesignModeProposal, DesignModeEnhance, DesignModeColor, DesignModeComponents:
		return true
	}
	return false
}

type designRule struct {
	keywords []string
	mode     DesignMode
}

// designRules are checked in priority order.
//
//nolint:gochecknoglobals // read-only lookup table
var designRules = []designRule{
	{keywords: []string{"mockup", "wireframe", "propuesta", "diseño completo"}, mode: DesignModeProposal},
	{keywords: []string{"html", "estilos", "styles", "css", "mejora"}, mode: DesignModeEnhance},
	{keywords: []string{"color", "colores", "paleta", "palette"}, mode: DesignModeColor},
}

// ClassifyDesign picks the Design Architect mode for an instruction.
// Instructions matching no rule get generic components.
func ClassifyDesign(instruction string) DesignMode {
	text := textutil.Fold(instruction)
	for _, r := range designRules {
		if textutil.ContainsAny(text, r.keywords) {
			return r.mode
		}
	}
	return DesignModeComponents
}

func (m DesignMode) promptID() prompts.PromptID {
	switch m {
	case DesignModeProposal:
		return prompts.DesignProposal
	case DesignModeEnhance:
		return prompts.DesignEnhance
	case DesignModeColor:
		return prompts.DesignColor
	default:
		return prompts.DesignComponents
	}
}
