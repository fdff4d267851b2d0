package orchestrator

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/agents"
	"github.com/mrz1836/forja/internal/clock"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/reconcile"
	"github.com/mrz1836/forja/internal/testutil"
)

// blockingBehavior waits for release before returning a single file.
type blockingBehavior struct {
	kind    domain.TaskType
	started chan struct{}
	release chan struct{}
	ctxErr  error
	once    sync.Once
	path    string
}

func (b *blockingBehavior) Type() domain.TaskType { return b.kind }

func (b *blockingBehavior) Execute(ctx context.Context, _ *agents.Input) *domain.AgentResult {
	b.once.Do(func() { close(b.started) })
	<-b.release
	b.ctxErr = ctx.Err()
	return &domain.AgentResult{
		Success: true,
		Files:   []domain.FileItem{{Path: b.path, Content: "late"}},
		Message: "listo",
	}
}

type fixture struct {
	orch *Orchestrator
	sink *Recorder
}

func newFixture(t *testing.T, registry *agents.Registry, opts ...Option) fixture {
	t.Helper()
	c := clock.NewStepClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.Second)
	ids := &idgen.Sequence{}
	if registry == nil {
		registry = agents.NewDefaultRegistry(agents.Deps{
			Completer: testutil.Offline(),
			Clock:     c,
			IDs:       ids,
			Logger:    zerolog.Nop(),
		})
	}
	sink := &Recorder{}
	base := []Option{
		WithClock(c),
		WithIDGenerator(ids),
		WithLogger(zerolog.Nop()),
		WithEventSink(sink),
	}
	return fixture{orch: New(registry, append(base, opts...)...), sink: sink}
}

func TestSubmit_ProjectFlow(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.orch.Submit(context.Background(), Instruction{Text: "crea un sitio web para un restaurante azul"})
	require.NoError(t, err)

	assert.Equal(t, IntentProject, out.Intent)
	require.Len(t, out.Tasks, 4)
	for i, kind := range Flow(IntentProject) {
		assert.Equal(t, kind, out.Tasks[i].Type)
		assert.Equal(t, domain.TaskStatusCompleted, out.Tasks[i].Status)
		require.NotNil(t, out.Tasks[i].EndTime)
	}
	assert.True(t, out.Succeeded())
	assert.NotEmpty(t, out.Tasks[1].PlanID)

	report := reconcile.ValidateKeys(out.Files)
	assert.True(t, report.OK())
	styles := out.Files[domain.FindByName(out.Files, "styles.css")]
	assert.Contains(t, styles.Content, "--color-primary: #2563EB;")
	require.GreaterOrEqual(t, domain.FindByName(out.Files, "index.html"), 0)

	require.NotNil(t, out.Plan)
	require.NotNil(t, out.Proposal)
	assert.Equal(t, "Tech Blue", out.Proposal.ColorPalette.Name)

	require.NotEmpty(t, out.Progress)
	last := out.Progress[len(out.Progress)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, "Planner", out.Progress[0].AgentName)

	require.NotEmpty(t, out.Messages)
	assert.Equal(t, "user", out.Messages[0].Sender)
	assert.Equal(t, domain.MessageText, out.Messages[0].Type)

	progress, messages := f.sink.Events()
	assert.Equal(t, out.Progress, progress)
	assert.Equal(t, out.Messages, messages)

	assert.Equal(t, out.Files, f.orch.Files())
	assert.Len(t, f.orch.Tasks(), 4)
}

func TestSubmit_ModifyMissingFile(t *testing.T) {
	f := newFixture(t, nil)
	files := []domain.FileItem{{ID: "file-a", Name: "index.html", Path: "/index.html", Content: "<h1>Hola</h1>"}}
	require.NoError(t, f.orch.Load(context.Background(), files))
	before := f.orch.Files()

	out, err := f.orch.Submit(context.Background(), Instruction{Text: "cambia el título", TargetFileID: "file-404"})
	require.NoError(t, err)

	assert.Equal(t, IntentModify, out.Intent)
	require.Len(t, out.Tasks, 1)
	task := out.Tasks[0]
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	assert.Equal(t, "No se encontró el archivo con ID file-404", task.Error)
	assert.False(t, out.Succeeded())
	assert.Equal(t, before, out.Files)

	var errMsgs int
	for _, m := range out.Messages {
		if m.Type == domain.MessageError {
			errMsgs++
			assert.Contains(t, m.Content, "No se encontró el archivo")
		}
	}
	assert.Equal(t, 1, errMsgs)
}

func TestSubmit_ModifyMergesKeepingID(t *testing.T) {
	registry := agents.NewRegistry()
	registry.Register(agents.NewCodeModifier(agents.Deps{
		Completer: completerFunc(func() string { return `{"content": "<h1>Adiós</h1>"}` }),
		Clock:     clock.NewStepClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Second),
		Logger:    zerolog.Nop(),
	}))
	f := newFixture(t, registry)
	require.NoError(t, f.orch.Load(context.Background(), []domain.FileItem{
		{ID: "file-a", Name: "index.html", Path: "index.html", Content: "<h1>Hola</h1>"},
	}))

	out, err := f.orch.Submit(context.Background(), Instruction{Text: "edita el saludo", TargetFileID: "file-a"})
	require.NoError(t, err)

	require.True(t, out.Succeeded())
	require.Len(t, out.Files, 1)
	assert.Equal(t, "file-a", out.Files[0].ID)
	assert.Equal(t, "/index.html", out.Files[0].Path)
	assert.Equal(t, "<h1>Adiós</h1>", out.Files[0].Content)
	assert.True(t, out.Files[0].IsModified)
}

func TestSubmit_CorrectionStageProgress(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.orch.Load(context.Background(), []domain.FileItem{
		{ID: "file-js", Name: "script.js", Path: "/script.js", Content: "var total = 0;\nif (total == 0) {}\n"},
	}))

	out, err := f.orch.Submit(context.Background(), Instruction{
		Text: "corrige el script", Intent: IntentCorrection, TargetFileID: "file-js",
	})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, domain.TaskStatusCompleted, out.Tasks[0].Status)

	progress, _ := f.sink.Events()
	var seq []string
	for _, ev := range progress {
		if ev.StageStatus == "" {
			continue
		}
		assert.Equal(t, "Code Corrector", ev.AgentName)
		assert.Equal(t, 30, ev.Percent)
		seq = append(seq, ev.Stage+" "+string(ev.StageStatus))
	}
	assert.Equal(t, []string{
		"analyze idle", "detect idle", "generate idle",
		"analyze working", "analyze success",
		"detect working", "detect warning",
		"generate working", "generate warning",
	}, seq)

	// Stage events arrive between the step banner and the completion event.
	assert.Equal(t, "corrección", progress[0].Stage)
	assert.Empty(t, progress[0].StageStatus)
	assert.Equal(t, 100, progress[len(progress)-1].Percent)
	assert.Equal(t, progress, out.Progress)
}

func TestSubmit_MissingBehaviorFailsTask(t *testing.T) {
	f := newFixture(t, agents.NewRegistry())

	out, err := f.orch.Submit(context.Background(), Instruction{Text: "algo", Intent: IntentStyle})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, domain.TaskStatusFailed, out.Tasks[0].Status)
	assert.NotEmpty(t, out.Tasks[0].Error)
}

func TestSubmit_EmptyInstruction(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.orch.Submit(context.Background(), Instruction{Text: "  "})
	require.ErrorIs(t, err, errors.ErrEmptyInstruction)
	assert.Empty(t, f.orch.Tasks())
}

func TestSubmit_SerializesAndSurvivesCancel(t *testing.T) {
	blocker := &blockingBehavior{
		kind:    domain.TaskCodeGenerator,
		started: make(chan struct{}),
		release: make(chan struct{}),
		path:    "/late.html",
	}
	registry := agents.NewRegistry()
	registry.Register(blocker)
	registry.Register(agents.NewFileObserver(agents.Deps{Logger: zerolog.Nop()}))
	f := newFixture(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		out *Outcome
		err error
	}
	first := make(chan result, 1)
	go func() {
		out, err := f.orch.Submit(ctx, Instruction{Text: "genera una galería", Intent: IntentGenerate})
		first <- result{out, err}
	}()
	<-blocker.started

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	_, err := f.orch.Submit(waitCtx, Instruction{Text: "otra cosa"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	cancel()
	close(blocker.release)

	res := <-first
	require.NoError(t, res.err)
	require.NoError(t, blocker.ctxErr)
	assert.GreaterOrEqual(t, domain.FindByName(res.out.Files, "late.html"), 0)
	assert.Len(t, f.orch.Tasks(), 2)
}

func TestSubmit_AfterInstructionHoldsSlot(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		texts []string
		ctxOK = true
	)
	hook := func(ctx context.Context, out *Outcome) error {
		mu.Lock()
		first := len(texts) == 0
		texts = append(texts, out.Tasks[0].Instruction)
		ctxOK = ctxOK && ctx.Err() == nil
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
		return nil
	}
	f := newFixture(t, nil, WithAfterInstruction(hook))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Submit(ctx, Instruction{Text: "genera una galería"})
		done <- err
	}()
	<-entered
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	_, err := f.orch.Submit(waitCtx, Instruction{Text: "genera un blog"})
	require.ErrorIs(t, err, context.DeadlineExceeded, "slot is held while the hook runs")

	close(release)
	require.NoError(t, <-done)

	_, err = f.orch.Submit(context.Background(), Instruction{Text: "genera un blog"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"genera una galería", "genera un blog"}, texts)
	assert.True(t, ctxOK, "hook context is not cancelled with the caller")
}

func TestSubmit_AfterInstructionError(t *testing.T) {
	boom := stderrors.New("disk full")
	f := newFixture(t, nil, WithAfterInstruction(func(context.Context, *Outcome) error { return boom }))

	out, err := f.orch.Submit(context.Background(), Instruction{Text: "genera una galería"})
	require.ErrorIs(t, err, errors.ErrPersistFailed)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Files, "outcome is still merged and returned")
}

func TestSubmit_TaskIDsUnique(t *testing.T) {
	f := newFixture(t, nil)
	for range 3 {
		_, err := f.orch.Submit(context.Background(), Instruction{Text: "genera una galería"})
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for _, task := range f.orch.Tasks() {
		assert.False(t, seen[task.ID], task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, seen, 6)
}

func TestAccessorsReturnCopies(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.orch.Submit(context.Background(), Instruction{Text: "crea un sitio web"})
	require.NoError(t, err)

	files := f.orch.Files()
	files[0].Content = "mutated"
	assert.NotEqual(t, "mutated", f.orch.Files()[0].Content)

	tasks := f.orch.Tasks()
	tasks[0].Status = domain.TaskStatusPending
	assert.Equal(t, domain.TaskStatusCompleted, f.orch.Tasks()[0].Status)

	plan := f.orch.Plan()
	plan.Title = "mutated"
	assert.NotEqual(t, "mutated", f.orch.Plan().Title)
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	f := newFixture(t, nil, WithMetrics(m))

	_, err := f.orch.Submit(context.Background(), Instruction{Text: "crea un sitio web"})
	require.NoError(t, err)

	assert.InDelta(t, 1, promtest.ToFloat64(m.instructions.WithLabelValues("project", "success")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.tasks.WithLabelValues("planner", "completed")), 0)
	assert.InDelta(t, 3, promtest.ToFloat64(m.files.WithLabelValues("added")), 0)
	assert.InDelta(t, 3, promtest.ToFloat64(m.projectSize), 0)
}

// completerFunc answers every prompt with fn().
type completerFunc func() string

func (f completerFunc) Complete(_ context.Context, _, preferred string) *domain.CompletionEnvelope {
	return &domain.CompletionEnvelope{Content: f(), Capability: preferred}
}
