package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mrz1836/forja/internal/clock"
	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/logging"
)

// previewRunes bounds prompt and reply excerpts in debug logs.
const previewRunes = 160

// Gateway sends prompts to capabilities. On a quota or availability error
// it retries exactly once on the alternate configured for the preferred
// capability. Every other error is returned immediately.
type Gateway struct {
	capability Capability
	defaultID  string
	alternates map[string]string
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    Metrics
	clock      clock.Clock
	logger     zerolog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithDefaultCapability sets the id used when a caller prefers none.
func WithDefaultCapability(id string) GatewayOption {
	return func(g *Gateway) { g.defaultID = id }
}

// WithAlternates sets the quota fallback map (capability id → alternate id).
func WithAlternates(alternates map[string]string) GatewayOption {
	return func(g *Gateway) {
		g.alternates = make(map[string]string, len(alternates))
		for k, v := range alternates {
			g.alternates[k] = v
		}
	}
}

// WithTimeout bounds each capability call. Zero disables the bound.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithRateLimit limits outgoing calls. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) GatewayOption {
	return func(g *Gateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithClock sets the clock used to measure execution time.
func WithClock(c clock.Clock) GatewayOption {
	return func(g *Gateway) { g.clock = c }
}

// WithLogger sets the gateway logger.
func WithLogger(logger zerolog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway creates a Gateway over c, usually a *Registry.
func NewGateway(c Capability, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		capability: c,
		defaultID:  constants.DefaultCapability,
		alternates: map[string]string{constants.DefaultCapability: constants.DefaultAlternateCapability},
		timeout:    constants.DefaultCompletionTimeout,
		metrics:    NoopMetrics{},
		clock:      clock.RealClock{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "gateway").Logger()
	return g
}

// Complete sends prompt to the preferred capability (the default when
// empty). The envelope holds either Content or Error; Err keeps the typed
// chain (errors.ErrGateway, plus errors.ErrQuota when quota caused it).
// ExecutionTimeMs covers the whole call including the fallback retry.
func (g *Gateway) Complete(ctx context.Context, prompt, preferred string) *domain.CompletionEnvelope {
	id := preferred
	if id == "" {
		id = g.defaultID
	}
	start := g.clock.Now()
	env := &domain.CompletionEnvelope{Capability: id}

	g.logger.Debug().
		Str("capability", id).
		Str("prompt", logging.Preview(prompt, previewRunes)).
		Msg("sending prompt")

	content, err := g.call(ctx, prompt, id)
	if err != nil && IsQuotaError(err) {
		if alt, ok := g.alternates[id]; ok && alt != "" && alt != id {
			g.logger.Warn().
				Err(err).
				Str("capability", id).
				Str("alternate", alt).
				Msg("quota error, retrying on alternate capability")
			g.metrics.FallbackUsed(id, alt)

			env.FallbackUsed = true
			env.Capability = alt
			content, err = g.call(ctx, prompt, alt)
			if err != nil {
				err = fmt.Errorf("%w: alternate %s failed after quota error on %s: %w",
					errors.ErrGateway, alt, id, err)
			}
		}
	}

	env.ExecutionTimeMs = g.clock.Now().Sub(start).Milliseconds()
	if err != nil {
		if !stderrors.Is(err, errors.ErrGateway) {
			err = fmt.Errorf("%w: %w", errors.ErrGateway, err)
		}
		env.Err = err
		env.Error = err.Error()
		g.logger.Error().
			Err(err).
			Str("capability", env.Capability).
			Bool("fallback_used", env.FallbackUsed).
			Int64("execution_time_ms", env.ExecutionTimeMs).
			Msg("completion failed")
		return env
	}

	env.Content = content
	g.logger.Debug().
		Str("capability", env.Capability).
		Bool("fallback_used", env.FallbackUsed).
		Int64("execution_time_ms", env.ExecutionTimeMs).
		Str("reply", logging.Preview(content, previewRunes)).
		Msg("completion received")
	return env
}

// call runs one capability attempt with rate limiting and the timeout.
func (g *Gateway) call(ctx context.Context, prompt, id string) (string, error) {
	start := g.clock.Now()
	content, err := g.attempt(ctx, prompt, id)

	outcome := OutcomeSuccess
	switch {
	case err != nil && IsQuotaError(err):
		outcome = OutcomeQuota
	case err != nil:
		outcome = OutcomeError
	}
	g.metrics.CompletionObserved(id, outcome, g.clock.Now().Sub(start))
	return content, err
}

func (g *Gateway) attempt(ctx context.Context, prompt, id string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "waiting for request slot")
		}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	content, err := g.capability.Complete(ctx, prompt, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: capability %s", errors.ErrEmptyCompletion, id)
	}
	return content, nil
}
