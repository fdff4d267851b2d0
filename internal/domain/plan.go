package domain

import (
	"fmt"
	"strings"
)

// PlanStep is one step of a project plan.
type PlanStep struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Files       []string `json:"files,omitempty"`
}

// Plan is the Planner's decomposition of an instruction.
type Plan struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	Steps        []PlanStep `json:"steps"`
	Technologies []string   `json:"technologies,omitempty"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Steps = make([]PlanStep, len(p.Steps))
	for i, s := range p.Steps {
		s.Files = append([]string(nil), s.Files...)
		c.Steps[i] = s
	}
	c.Technologies = append([]string(nil), p.Technologies...)
	return &c
}

// Markdown renders the plan as a Markdown document.
func (p *Plan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Summary)
	}
	if len(p.Technologies) > 0 {
		fmt.Fprintf(&b, "**Tecnologías:** %s\n\n", strings.Join(p.Technologies, ", "))
	}
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%d. **%s**", i+1, s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, " - %s", s.Description)
		}
		b.WriteString("\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "   - `%s`\n", f)
		}
	}
	return b.String()
}
