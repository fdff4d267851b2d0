package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/agents"
	"github.com/mrz1836/forja/internal/ai"
	"github.com/mrz1836/forja/internal/config"
	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/flock"
	"github.com/mrz1836/forja/internal/orchestrator"
	"github.com/mrz1836/forja/internal/store"
)

// app holds the wired components a command needs.
type app struct {
	cfg      *config.Config
	lock     *flock.Lock
	store    *store.Store
	orch     *orchestrator.Orchestrator
	registry *prometheus.Registry
	logger   zerolog.Logger
}

// appOptions tune newApp for a command.
type appOptions struct {
	sink     orchestrator.EventSink
	executor ai.CommandExecutor
}

// loadConfig reads .env and the layered configuration.
func loadConfig(ctx context.Context, logger zerolog.Logger) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(logger.WithContext(ctx))
}

// newApp takes the project lock, wires config, gateway, behaviors,
// orchestrator and store, then loads the saved project into the
// orchestrator.
func newApp(ctx context.Context, logger zerolog.Logger, opts appOptions) (*app, error) {
	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return nil, err
	}

	lock, err := flock.Acquire(filepath.Join(filepath.Dir(cfg.DatabasePath()), constants.LockFileName))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, lock: lock, logger: logger}
	if err := a.wire(ctx, opts); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// wire builds the pipeline and loads the saved files.
func (a *app) wire(ctx context.Context, opts appOptions) error {
	cfg, logger := a.cfg, a.logger

	st, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return errors.Wrap(err, "failed to open project store")
	}
	a.store = st

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	capabilities := ai.NewRegistryFromConfig(cfg.Capabilities, opts.executor, logger)
	gateway := ai.NewGateway(capabilities,
		ai.WithDefaultCapability(cfg.Gateway.DefaultCapability),
		ai.WithAlternates(cfg.Gateway.Alternates),
		ai.WithTimeout(cfg.Gateway.Timeout),
		ai.WithRateLimit(cfg.Gateway.RequestsPerSecond, cfg.Gateway.Burst),
		ai.WithMetrics(ai.NewPrometheusMetrics(reg)),
		ai.WithLogger(logger),
	)

	behaviors := agents.NewDefaultRegistry(agents.Deps{
		Completer:    gateway,
		Logger:       logger,
		Capabilities: taskCapabilities(cfg.Orchestrator.AgentCapabilities),
		TitleWidth:   cfg.Orchestrator.TitleWidth,
	})

	orchOpts := []orchestrator.Option{
		orchestrator.WithClassifier(orchestrator.NewKeywordClassifier(cfg.Orchestrator.Keywords)),
		orchestrator.WithMetrics(orchestrator.NewPrometheusMetrics(reg)),
		orchestrator.WithLogger(logger),
		orchestrator.WithAfterInstruction(a.persist),
	}
	if opts.sink != nil {
		orchOpts = append(orchOpts, orchestrator.WithEventSink(opts.sink))
	}
	orch := orchestrator.New(behaviors, orchOpts...)

	a.orch, a.registry = orch, reg

	files, err := st.LoadFiles(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load project files")
	}
	return orch.Load(ctx, files)
}

// persist saves an outcome. The orchestrator calls it before the next
// instruction may start, so saved snapshots never go back in time.
func (a *app) persist(ctx context.Context, out *orchestrator.Outcome) error {
	return a.store.SaveSnapshot(ctx, store.Snapshot{Files: out.Files, Tasks: out.Tasks, Plan: out.Plan, Proposal: out.Proposal})
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close project store")
		}
	}
	if err := a.lock.Release(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to release project lock")
	}
}

// taskCapabilities converts config keys to task types. Keys are matched
// case-insensitively since viper lowercases them.
func taskCapabilities(in map[string]string) map[domain.TaskType]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[domain.TaskType]string, len(in))
	for k, v := range in {
		out[domain.TaskType(strings.ToLower(k))] = v
	}
	return out
}

// openStore opens the project store without wiring the pipeline.
func openStore(ctx context.Context, logger zerolog.Logger) (*store.Store, error) {
	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open project store")
	}
	return st, nil
}
