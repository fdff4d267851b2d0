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

// Planner decomposes an instruction into a project plan.
type Planner struct {
	base
}

// NewPlanner creates the Planner behavior.
func NewPlanner(deps Deps) *Planner {
	return &Planner{base: newBase(domain.TaskPlanner, deps)}
}

// Execute asks the model for a plan and falls back to a local three-step
// plan when the reply cannot be used.
func (p *Planner) Execute(ctx context.Context, in *Input) *domain.AgentResult {
	instruction := in.Instruction()
	res := &domain.AgentResult{Success: true}

	plan, err := p.requestPlan(ctx, in)
	if err != nil {
		p.logger.Warn().Err(err).Msg("using local plan")
		plan = FallbackPlan(instruction)
		res.Fallback = true
		res.Warnings = append(res.Warnings, errors.UserMessage(err))
	}
	p.backfill(plan)

	res.Plan = plan
	res.Message = fmt.Sprintf("Plan creado: %s (%d pasos)", plan.Title, len(plan.Steps))
	return res
}

func (p *Planner) requestPlan(ctx context.Context, in *Input) (*domain.Plan, error) {
	reply, err := p.complete(ctx, prompts.Planner, prompts.PlannerData{
		Instruction: in.Instruction(),
		Files:       fileInfos(in.Files, false),
	})
	if err != nil {
		return nil, err
	}
	plan, err := extract.Decode[domain.Plan](reply)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(plan.Title) == "" {
		return nil, errors.Wrap(errors.ErrValidation, "plan has no title")
	}
	steps := plan.Steps[:0]
	for _, s := range plan.Steps {
		if strings.TrimSpace(s.Title) != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return nil, errors.Wrap(errors.ErrValidation, "plan has no steps")
	}
	plan.Steps = steps
	return &plan, nil
}

func (p *Planner) backfill(plan *domain.Plan) {
	if plan.ID == "" {
		plan.ID = p.deps.IDs.NewID(idgen.PrefixPlan)
	}
	for i := range plan.Steps {
		if plan.Steps[i].ID == "" {
			plan.Steps[i].ID = fmt.Sprintf("%s-step-%d", plan.ID, i+1)
		}
	}
}

// FallbackPlan derives a three-step plan from the instruction keywords.
func FallbackPlan(instruction string) *domain.Plan {
	ind := DetectIndustry(instruction)
	palette := ResolvePalette(instruction)
	title := textutil.Title(textutil.Truncate(instruction, 60))
	if title == "" {
		title = "Sitio " + ind.Label
	}

	return &domain.Plan{
		Title:   title,
		Summary: fmt.Sprintf("Sitio web para el sector %s con la paleta %s.", strings.ToLower(ind.Label), palette.Name),
		Steps: []domain.PlanStep{
			{
				Title:       "Estructura HTML",
				Description: "Crear la página principal con encabezado, portada, servicios y contacto.",
				Files:       []string{"index.html"},
			},
			{
				Title:       "Estilos y paleta",
				Description: fmt.Sprintf("Definir la paleta %s como variables CSS y el diseño adaptable.", palette.Name),
				Files:       []string{"styles.css"},
			},
			{
				Title:       "Interactividad",
				Description: "Añadir navegación suave y validación del formulario de contacto.",
				Files:       []string{"script.js"},
			},
		},
		Technologies: []string{"HTML", "CSS", "JavaScript"},
	}
}

var _ Behavior = (*Planner)(nil)
