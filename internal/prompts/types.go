package prompts

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers, one per agent call.
const (
	Planner           PromptID = "agents/planner"
	CodeGenerator     PromptID = "agents/code_generator"
	DesignProposal    PromptID = "agents/design_proposal"
	DesignEnhance     PromptID = "agents/design_enhance"
	DesignColor       PromptID = "agents/design_color"
	DesignComponents  PromptID = "agents/design_components"
	CodeModifier      PromptID = "agents/code_modifier"
	CorrectorDetect   PromptID = "agents/corrector_detect"
	CorrectorGenerate PromptID = "agents/corrector_generate"
)

// FileInfo is a project file shown to the model.
type FileInfo struct {
	Path     string
	Language string
	// Content may be empty when only the listing matters.
	Content string
}

// PaletteInfo is a detected colour palette.
type PaletteInfo struct {
	Name       string
	Primary    string
	Secondary  string
	Accent     string
	Background string
	Text       string
	Neutral    string
}

// PlannerData is the input of the Planner prompt.
type PlannerData struct {
	Instruction string
	Files       []FileInfo
}

// CodeGeneratorData is the input of the Code Generator prompt.
type CodeGeneratorData struct {
	Instruction string
	// Plan is the Markdown rendering of the project plan (optional).
	Plan string
	// Palette is the design palette the stylesheet must use (optional).
	Palette *PaletteInfo
	// DesignHTML and DesignCSS carry an approved design proposal (optional).
	DesignHTML string
	DesignCSS  string
	Files      []FileInfo
}

// DesignData is the input of every Design Architect prompt.
type DesignData struct {
	Instruction string
	Palette     PaletteInfo
	Industry    string
	Plan        string
	// ExistingHTML and ExistingCSS are the current markup and styles,
	// used by the enhance and colour modes.
	ExistingHTML string
	ExistingCSS  string
}

// CodeModifierData is the input of the Code Modifier prompt.
type CodeModifierData struct {
	Instruction string
	File        FileInfo
}

// CorrectorDetectData is the input of the Code Corrector detect stage.
type CorrectorDetectData struct {
	Instruction string
	File        FileInfo
	Lines       int
	Functions   int
}

// IssueInfo is one issue handed to the generate stage.
type IssueInfo struct {
	Line     int
	Severity string
	Message  string
}

// CorrectorGenerateData is the input of the Code Corrector generate stage.
type CorrectorGenerateData struct {
	Instruction string
	File        FileInfo
	Issues      []IssueInfo
}
