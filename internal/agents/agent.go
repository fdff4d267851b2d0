// Package agents provides the six agent behaviors of the forja pipeline:
// Planner, Code Generator, Design Architect, Code Modifier, Code Corrector
// and File Observer.
//
// Every behavior follows the same pipeline: render a prompt, send it
// through the completion gateway, extract JSON from the reply, validate it,
// backfill identifiers and build FileItems. A behavior never returns a Go
// error or panics past its boundary; failures become an AgentResult with
// Success=false, and most behaviors degrade to a local fallback instead.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/extract,
//     internal/prompts, internal/idgen, internal/clock, internal/reconcile,
//     internal/textutil, internal/constants
//   - MUST NOT import: internal/orchestrator, internal/cli, internal/server
package agents

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/clock"
	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/prompts"
)

// Completer sends a prompt to the completion gateway. *ai.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt, preferred string) *domain.CompletionEnvelope
}

// Input is what a behavior receives. It is a read-only copy of the
// orchestrator state; behaviors never mutate it.
type Input struct {
	Task     *domain.AgentTask
	Files    []domain.FileItem
	Plan     *domain.Plan
	Proposal *domain.DesignProposal

	// TargetFileID selects the file for the Code Modifier and Code Corrector.
	TargetFileID string

	// DesignMode forces a Design Architect mode. Empty means classify the
	// instruction.
	DesignMode DesignMode

	// OnStage, when set, receives sub-stage transitions as they happen.
	OnStage func(domain.StageReport)
}

// reportStage forwards r to OnStage when it is set.
func (in *Input) reportStage(r domain.StageReport) {
	if in != nil && in.OnStage != nil {
		in.OnStage(r)
	}
}

// Instruction returns the task instruction, or "" without a task.
func (in *Input) Instruction() string {
	if in == nil || in.Task == nil {
		return ""
	}
	return in.Task.Instruction
}

// Behavior executes one kind of agent task.
//
// Implementations must:
//   - Never panic and never return a nil result
//   - Convert every failure into an AgentResult with Success=false
//     or a local fallback with Fallback=true
//   - Treat Input as read-only
type Behavior interface {
	// Type returns the task type this behavior handles.
	Type() domain.TaskType

	// Execute runs the behavior for one task.
	Execute(ctx context.Context, in *Input) *domain.AgentResult
}

// Deps are the collaborators shared by all behaviors.
type Deps struct {
	Completer Completer
	Clock     clock.Clock
	IDs       idgen.Generator
	Logger    zerolog.Logger

	// Capabilities maps a task type to its preferred capability id.
	// Missing entries use the gateway default.
	Capabilities map[domain.TaskType]string

	// TitleWidth bounds the instruction text used as a fallback page title.
	TitleWidth int
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	if d.IDs == nil {
		d.IDs = idgen.Default
	}
	if d.TitleWidth <= 0 {
		d.TitleWidth = constants.DefaultTitleWidth
	}
	return d
}

// base carries the plumbing every behavior shares.
type base struct {
	kind   domain.TaskType
	deps   Deps
	logger zerolog.Logger
}

func newBase(kind domain.TaskType, deps Deps) base {
	deps = deps.withDefaults()
	return base{
		kind:   kind,
		deps:   deps,
		logger: deps.Logger.With().Str("component", "agent").Str("agent", kind.AgentName()).Logger(),
	}
}

// Type returns the task type of the behavior.
func (b *base) Type() domain.TaskType {
	return b.kind
}

// complete renders the prompt and sends it through the gateway.
func (b *base) complete(ctx context.Context, id prompts.PromptID, data any) (string, error) {
	prompt, err := prompts.Render(id, data)
	if err != nil {
		return "", errors.Wrapf(err, "rendering prompt %s", id)
	}
	if b.deps.Completer == nil {
		return "", fmt.Errorf("%w: no completer configured", errors.ErrGateway)
	}

	env := b.deps.Completer.Complete(ctx, prompt, b.deps.Capabilities[b.kind])
	if env == nil {
		return "", fmt.Errorf("%w: no envelope returned", errors.ErrGateway)
	}
	if !env.OK() {
		if env.Err != nil {
			return "", env.Err
		}
		return "", fmt.Errorf("%w: %s", errors.ErrGateway, env.Error)
	}
	if env.FallbackUsed {
		b.logger.Info().
			Str("capability", env.Capability).
			Msg("answered by alternate capability")
	}
	return env.Content, nil
}

// Run executes b and converts a panic or a nil result into a failed result.
func Run(ctx context.Context, b Behavior, in *Input) (res *domain.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Failed(fmt.Sprintf("%s falló inesperadamente: %v", b.Type().AgentName(), r))
		}
	}()
	if in == nil {
		in = &Input{}
	}
	res = b.Execute(ctx, in)
	if res == nil {
		res = domain.Failed(fmt.Sprintf("%s no devolvió resultado", b.Type().AgentName()))
	}
	return res
}

// Registry maps task types to behaviors.
// It is safe for concurrent read access after initialization.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[domain.TaskType]Behavior
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{behaviors: make(map[domain.TaskType]Behavior)}
}

// NewDefaultRegistry creates a registry holding all six behaviors.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	r.Register(NewPlanner(deps))
	r.Register(NewCodeGenerator(deps))
	r.Register(NewDesignArchitect(deps))
	r.Register(NewCodeModifier(deps))
	r.Register(NewCodeCorrector(deps))
	r.Register(NewFileObserver(deps))
	return r
}

// Register adds a behavior, replacing any behavior of the same type.
func (r *Registry) Register(b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[b.Type()] = b
}

// Get returns the behavior for a task type.
// Returns ErrBehaviorNotFound if none is registered.
func (r *Registry) Get(t domain.TaskType) (Behavior, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.behaviors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrBehaviorNotFound, t)
	}
	return b, nil
}

// Types returns the registered task types in sorted order.
func (r *Registry) Types() []domain.TaskType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.TaskType, 0, len(r.behaviors))
	for t := range r.behaviors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
