package domain

// ColorPalette is the six-colour scheme of a design proposal.
type ColorPalette struct {
	Name       string `json:"name,omitempty"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Neutral    string `json:"neutral"`
}

// IsComplete reports whether every colour slot is filled.
func (p ColorPalette) IsComplete() bool {
	return p.Primary != "" && p.Secondary != "" && p.Accent != "" &&
		p.Background != "" && p.Text != "" && p.Neutral != ""
}

// Typography describes the fonts of a design proposal.
type Typography struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
	BaseSize    string `json:"baseSize,omitempty"`
}

// DesignComponent is one UI building block of a proposal.
type DesignComponent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	HTML        string `json:"html,omitempty"`
	CSS         string `json:"css,omitempty"`
}

// DesignProposal is a generated site blueprint. ID and every component ID
// are always non-empty once a proposal leaves the Design Architect.
type DesignProposal struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Style        string            `json:"style"`
	Industry     string            `json:"industry,omitempty"`
	ColorPalette ColorPalette      `json:"colorPalette"`
	Typography   Typography        `json:"typography"`
	Components   []DesignComponent `json:"components"`
	HTMLPreview  string            `json:"htmlPreview,omitempty"`
	CSSPreview   string            `json:"cssPreview,omitempty"`
	JSPreview    string            `json:"jsPreview,omitempty"`
}

// Clone returns a deep copy of the proposal.
func (p *DesignProposal) Clone() *DesignProposal {
	if p == nil {
		return nil
	}
	c := *p
	c.Components = append([]DesignComponent(nil), p.Components...)
	return &c
}

// CorrectionType classifies a CorrectionChange.
type CorrectionType string

// Correction types.
const (
	CorrectionFix          CorrectionType = "fix"
	CorrectionImprovement  CorrectionType = "improvement"
	CorrectionOptimization CorrectionType = "optimization"
)

// IsValid checks the correction type.
func (t CorrectionType) IsValid() bool {
	return t == CorrectionFix || t == CorrectionImprovement || t == CorrectionOptimization
}

// CorrectionChange is one atomic edit proposed by the Code Corrector.
// It never touches a file until a caller applies it.
type CorrectionChange struct {
	ID            string         `json:"id"`
	LineNumber    int            `json:"lineNumber"`
	OriginalCode  string         `json:"originalCode"`
	CorrectedCode string         `json:"correctedCode"`
	Reason        string         `json:"reason"`
	Type          CorrectionType `json:"type"`
	Confidence    float64        `json:"confidence"`
}

// StageStatus is the progress state of one Code Corrector sub-stage.
type StageStatus string

// Stage statuses.
const (
	StageIdle    StageStatus = "idle"
	StageWorking StageStatus = "working"
	StageSuccess StageStatus = "success"
	StageWarning StageStatus = "warning"
	StageError   StageStatus = "error"
)

// StageReport records the outcome of one sub-stage.
type StageReport struct {
	Name    string      `json:"name"`
	Status  StageStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}
