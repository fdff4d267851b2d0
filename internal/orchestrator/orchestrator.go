package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mrz1836/forja/internal/agents"
	"github.com/mrz1836/forja/internal/clock"
	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/reconcile"
)

// Instruction is one user request.
type Instruction struct {
	Text string `json:"text"`
	// TargetFileID selects the file for modify and correction flows.
	TargetFileID string `json:"targetFileId,omitempty"`
	// Intent forces a flow. Empty means classify Text.
	Intent Intent `json:"intent,omitempty"`
}

// Outcome is everything one instruction produced.
type Outcome struct {
	Intent   Intent                 `json:"intent"`
	Tasks    []*domain.AgentTask    `json:"tasks"`
	Files    []domain.FileItem      `json:"files"`
	Plan     *domain.Plan           `json:"plan,omitempty"`
	Proposal *domain.DesignProposal `json:"proposal,omitempty"`
	Progress []domain.ProgressEvent `json:"progress"`
	Messages []domain.ChatMessage   `json:"messages"`
}

// Succeeded reports whether every task of the instruction completed.
func (o *Outcome) Succeeded() bool {
	for _, t := range o.Tasks {
		if t.Status != domain.TaskStatusCompleted {
			return false
		}
	}
	return len(o.Tasks) > 0
}

// Orchestrator owns the project files and the task list. One instruction
// runs at a time; later callers wait their turn.
type Orchestrator struct {
	behaviors  *agents.Registry
	reconciler *reconcile.Reconciler
	classifier Classifier
	sink       EventSink
	metrics    Metrics
	clock      clock.Clock
	ids        idgen.Generator
	logger     zerolog.Logger
	after      AfterInstruction

	// sem serializes instructions and Load.
	sem *semaphore.Weighted

	mu       sync.RWMutex
	files    []domain.FileItem
	tasks    []*domain.AgentTask
	plan     *domain.Plan
	proposal *domain.DesignProposal
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// AfterInstruction receives every outcome while the instruction still
// holds its slot, so outcomes arrive in the order they were produced.
type AfterInstruction func(ctx context.Context, out *Outcome) error

// WithAfterInstruction sets a hook that runs after each instruction,
// typically to persist the outcome.
func WithAfterInstruction(fn AfterInstruction) Option {
	return func(o *Orchestrator) { o.after = fn }
}

// WithClassifier replaces the keyword classifier.
func WithClassifier(c Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

// WithEventSink sets where progress events and chat messages go.
func WithEventSink(s EventSink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock sets the clock for task and message timestamps.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithIDGenerator sets the generator for task, message and file ids.
func WithIDGenerator(g idgen.Generator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator running the behaviors in r.
func New(r *agents.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		behaviors:  r,
		classifier: NewKeywordClassifier(nil),
		sink:       NoopSink{},
		metrics:    NoopMetrics{},
		clock:      clock.RealClock{},
		ids:        idgen.Default,
		logger:     zerolog.Nop(),
		sem:        semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "orchestrator").Logger()
	o.reconciler = reconcile.New(o.logger, o.ids)
	return o
}

// Submit runs the flow for in and returns what it produced. It waits while
// another instruction is running; ctx only bounds that wait. Once accepted
// the flow runs to completion so late results are still merged.
//
// Returns ErrEmptyInstruction for blank text, or the context error when
// the caller gave up waiting. When the AfterInstruction hook fails the
// outcome is returned together with an error wrapping ErrPersistFailed.
func (o *Orchestrator) Submit(ctx context.Context, in Instruction) (*Outcome, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, errors.ErrEmptyInstruction
	}
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for in-flight instruction")
	}
	defer o.sem.Release(1)

	ctx = context.WithoutCancel(ctx)
	out := o.run(ctx, in)
	if o.after != nil {
		if err := o.after(ctx, out); err != nil {
			o.logger.Error().Err(err).Msg("after-instruction hook failed")
			return out, fmt.Errorf("%w: %w", errors.ErrPersistFailed, err)
		}
	}
	return out, nil
}

// Load replaces the project files with a reconciled copy of files.
// It waits for any in-flight instruction.
func (o *Orchestrator) Load(ctx context.Context, files []domain.FileItem) error {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "waiting for in-flight instruction")
	}
	defer o.sem.Release(1)

	res := o.reconciler.Apply(nil, files)
	o.mu.Lock()
	o.files = res.Files
	o.mu.Unlock()
	o.logger.Info().Int("files", len(res.Files)).Msg("project loaded")
	return nil
}

// Files returns a copy of the project files.
func (o *Orchestrator) Files() []domain.FileItem {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return domain.CloneFiles(o.files)
}

// Tasks returns copies of every task created so far, oldest first.
func (o *Orchestrator) Tasks() []*domain.AgentTask {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*domain.AgentTask, len(o.tasks))
	for i, t := range o.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Plan returns a copy of the latest project plan, if any.
func (o *Orchestrator) Plan() *domain.Plan {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.plan.Clone()
}

// Proposal returns a copy of the latest design proposal, if any.
func (o *Orchestrator) Proposal() *domain.DesignProposal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.proposal.Clone()
}

// Classify returns the intent Submit would use for in.
func (o *Orchestrator) Classify(in Instruction) Intent {
	if in.Intent.IsValid() {
		return in.Intent
	}
	return o.classifier.Classify(in)
}

// run executes one flow. The caller holds the semaphore.
func (o *Orchestrator) run(ctx context.Context, in Instruction) *Outcome {
	start := o.clock.Now()
	rec := &Recorder{}
	sink := teeSink{rec, o.sink}

	intent := o.Classify(in)
	log := o.logger.With().Str("intent", string(intent)).Logger()
	log.Info().Str("target_file_id", in.TargetFileID).Msg("instruction accepted")

	sink.Message(o.message(constants.SenderUser, in.Text, domain.MessageText))

	out := &Outcome{Intent: intent}
	for _, st := range flows[intent] {
		out.Tasks = append(out.Tasks, o.runStep(ctx, sink, in, st))
	}

	success := out.Succeeded()
	final := domain.ProgressEvent{Stage: "completado", Percent: 100, Message: "Instrucción completada"}
	if !success {
		final.Stage = "completado con errores"
		final.Message = "La instrucción terminó con errores"
	}
	sink.Progress(final)

	out.Files = o.Files()
	out.Plan = o.Plan()
	out.Proposal = o.Proposal()
	out.Progress, out.Messages = rec.Events()

	elapsed := o.clock.Now().Sub(start)
	o.metrics.InstructionHandled(intent, elapsed, success)
	log.Info().
		Bool("success", success).
		Int("tasks", len(out.Tasks)).
		Int("files", len(out.Files)).
		Dur("duration", elapsed).
		Msg("instruction finished")
	return out
}

// runStep creates a task, runs its behavior and merges the result.
// It returns a copy of the finished task.
func (o *Orchestrator) runStep(ctx context.Context, sink EventSink, in Instruction, st step) *domain.AgentTask {
	agentName := st.kind.AgentName()
	task := &domain.AgentTask{
		ID:           o.ids.NewID(idgen.PrefixTask),
		Type:         st.kind,
		Instruction:  in.Text,
		Status:       domain.TaskStatusPending,
		StartTime:    o.clock.Now(),
		TargetFileID: in.TargetFileID,
	}

	o.mu.Lock()
	if o.plan != nil {
		task.PlanID = o.plan.ID
	}
	o.tasks = append(o.tasks, task)
	o.mustTransition(task, domain.TaskStatusWorking)
	input := &agents.Input{
		Task:         task.Clone(),
		Files:        domain.CloneFiles(o.files),
		Plan:         o.plan.Clone(),
		Proposal:     o.proposal.Clone(),
		TargetFileID: in.TargetFileID,
		DesignMode:   st.mode,
		OnStage: func(r domain.StageReport) {
			sink.Progress(domain.ProgressEvent{
				Stage:       r.Name,
				Percent:     st.percent,
				Message:     stageMessage(agentName, r),
				AgentName:   agentName,
				StageStatus: r.Status,
			})
		},
	}
	o.mu.Unlock()

	sink.Progress(domain.ProgressEvent{
		Stage:     st.stage,
		Percent:   st.percent,
		Message:   fmt.Sprintf("%s trabajando...", agentName),
		AgentName: agentName,
	})

	var res *domain.AgentResult
	if b, err := o.behaviors.Get(st.kind); err != nil {
		res = domain.Failed(errors.UserMessage(err))
	} else {
		res = agents.Run(ctx, b, input)
	}

	return o.finish(sink, task, res)
}

// finish records the result, merges files on success and emits chat
// messages. Files are left untouched on failure.
func (o *Orchestrator) finish(sink EventSink, task *domain.AgentTask, res *domain.AgentResult) *domain.AgentTask {
	agentName := task.Type.AgentName()
	var merge reconcile.Result

	o.mu.Lock()
	task.Result = res
	if res.Success {
		if len(res.Files) > 0 {
			merge = o.reconciler.Apply(o.files, res.Files)
			o.files = merge.Files
		}
		if res.Plan != nil {
			o.plan = res.Plan.Clone()
		}
		if res.Proposal != nil {
			o.proposal = res.Proposal.Clone()
		}
		o.mustTransition(task, domain.TaskStatusCompleted)
	} else {
		task.Error = res.Error
		o.mustTransition(task, domain.TaskStatusFailed)
	}
	total := len(o.files)
	done := task.Clone()
	o.mu.Unlock()

	var elapsed time.Duration
	if done.EndTime != nil {
		elapsed = done.EndTime.Sub(done.StartTime)
	}
	o.metrics.TaskFinished(done.Type, done.Status, elapsed)

	if !res.Success {
		o.logger.Error().
			Str("task_id", done.ID).
			Str("agent", agentName).
			Str("error", res.Error).
			Msg("task failed")
		sink.Message(o.message(constants.SenderAI, fmt.Sprintf("%s: %s", agentName, res.Error), domain.MessageError))
		return done
	}

	if len(res.Files) > 0 {
		o.metrics.FilesReconciled(merge.Stats, len(merge.Remaps), total)
	}
	o.logger.Info().
		Str("task_id", done.ID).
		Str("agent", agentName).
		Bool("fallback", res.Fallback).
		Int("files", len(res.Files)).
		Dur("duration", elapsed).
		Msg("task completed")

	sink.Message(o.message(constants.SenderAI, res.Message, domain.MessageSuccess))
	for _, w := range res.Warnings {
		sink.Message(o.message(constants.SenderAI, w, domain.MessageNotification))
	}
	if len(merge.Remaps) > 0 {
		sink.Message(o.message(constants.SenderAI, errors.UserMessage(errors.ErrReconciliationConflict), domain.MessageNotification))
	}
	return done
}

// stageMessage renders a sub-stage report for the progress stream.
func stageMessage(agentName string, r domain.StageReport) string {
	if r.Message == "" {
		return fmt.Sprintf("%s: %s %s", agentName, r.Name, r.Status)
	}
	return fmt.Sprintf("%s: %s", agentName, r.Message)
}

// mustTransition applies a transition the flow guarantees is valid.
// The caller holds o.mu.
func (o *Orchestrator) mustTransition(task *domain.AgentTask, to domain.TaskStatus) {
	if err := transition(task, to, o.clock.Now()); err != nil {
		o.logger.Error().Err(err).Str("task_id", task.ID).Msg("unexpected task transition")
	}
}

func (o *Orchestrator) message(sender, content string, typ domain.MessageType) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        o.ids.NewID(idgen.PrefixMessage),
		Sender:    sender,
		Content:   content,
		Timestamp: o.clock.Now(),
		Type:      typ,
	}
}
