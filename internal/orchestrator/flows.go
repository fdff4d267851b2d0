package orchestrator

import (
	"github.com/mrz1836/forja/internal/agents"
	"github.com/mrz1836/forja/internal/domain"
)

// step is one behavior run within a flow.
type step struct {
	kind    domain.TaskType
	mode    agents.DesignMode
	stage   string
	percent int
}

// flows maps each intent to its behaviors, run strictly in order.
//
//nolint:gochecknoglobals // read-only lookup table
var flows = map[Intent][]step{
	IntentProject: {
		{kind: domain.TaskPlanner, stage: "planificación", percent: 10},
		{kind: domain.TaskDesignArchitect, mode: agents.DesignModeProposal, stage: "diseño", percent: 35},
		{kind: domain.TaskCodeGenerator, stage: "generación", percent: 65},
		{kind: domain.TaskFileObserver, stage: "verificación", percent: 90},
	},
	IntentCorrection: {
		{kind: domain.TaskCodeCorrector, stage: "corrección", percent: 30},
	},
	IntentStyle: {
		{kind: domain.TaskDesignArchitect, mode: agents.DesignModeColor, stage: "estilo", percent: 30},
	},
	IntentModify: {
		{kind: domain.TaskCodeModifier, stage: "modificación", percent: 30},
	},
	IntentGenerate: {
		{kind: domain.TaskCodeGenerator, stage: "generación", percent: 20},
		{kind: domain.TaskFileObserver, stage: "verificación", percent: 80},
	},
}

// Flow returns the task types run for an intent, in order.
func Flow(intent Intent) []domain.TaskType {
	steps := flows[intent]
	out := make([]domain.TaskType, len(steps))
	for i, s := range steps {
		out[i] = s.kind
	}
	return out
}
