// Package server exposes the orchestrator over HTTP so a browser UI can
// submit instructions and read the project files and task history.
//
// Import rules:
//   - CAN import: internal/orchestrator, internal/store, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/cli
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/orchestrator"
	"github.com/mrz1836/forja/internal/store"
)

// maxBodyBytes bounds instruction request bodies.
const maxBodyBytes = 1 << 20

// Orchestrator is the part of *orchestrator.Orchestrator the API uses.
type Orchestrator interface {
	Submit(ctx context.Context, in orchestrator.Instruction) (*orchestrator.Outcome, error)
	Files() []domain.FileItem
	Tasks() []*domain.AgentTask
}

// Pinger reports store health. *store.Store satisfies it. Outcomes are
// persisted by the orchestrator's AfterInstruction hook, not here.
type Pinger interface {
	Ping(ctx context.Context) error
}

var _ Orchestrator = (*orchestrator.Orchestrator)(nil)

var _ Pinger = (*store.Store)(nil)

// Config for the HTTP API handler.
type Config struct {
	Orchestrator Orchestrator
	// Store is optional. When set GET /healthz pings it.
	Store Pinger
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// WaitTimeout bounds how long a request waits for an in-flight
	// instruction. Zero waits as long as the client does.
	WaitTimeout time.Duration
	Logger      zerolog.Logger
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// apiError is the error envelope: {"error": {...}}.
type apiError struct {
	Body apiErrorBody `json:"error"`
}

type handler struct {
	cfg    Config
	logger zerolog.Logger
}

// New returns an HTTP handler exposing the forja API.
func New(cfg Config) http.Handler {
	h := &handler{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "server").Logger(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(h.logRequests)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.health)
	if cfg.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/v1", func(r chi.Router) {
		r.Post("/instructions", h.submit)
		r.Get("/files", h.listFiles)
		r.Get("/files/{id}", h.getFile)
		r.Get("/tasks", h.listTasks)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Recurso no encontrado.", "")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Método no permitido.", "")
	})
	return router
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store != nil {
		if err := h.cfg.Store.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fileList struct {
	Files []domain.FileItem `json:"files"`
}

type taskList struct {
	Tasks []*domain.AgentTask `json:"tasks"`
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.Instruction
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.handleError(w, r, errors.Wrap(errors.ErrInvalidRequest, err.Error()))
		return
	}
	if in.Intent != "" && !in.Intent.IsValid() {
		h.handleError(w, r, errors.Wrapf(errors.ErrInvalidIntent, "%q", in.Intent))
		return
	}

	ctx := r.Context()
	if h.cfg.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.WaitTimeout)
		defer cancel()
	}

	out, err := h.cfg.Orchestrator.Submit(ctx, in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handler) listFiles(w http.ResponseWriter, _ *http.Request) {
	files := h.cfg.Orchestrator.Files()
	if files == nil {
		files = []domain.FileItem{}
	}
	writeJSON(w, http.StatusOK, fileList{Files: files})
}

func (h *handler) getFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	files := h.cfg.Orchestrator.Files()
	i := domain.FindByID(files, id)
	if i < 0 {
		h.handleError(w, r, errors.Wrapf(errors.ErrFileNotFound, "%s", id))
		return
	}
	writeJSON(w, http.StatusOK, files[i])
}

// listTasks returns tasks oldest first. ?limit=N keeps the N most recent.
func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.cfg.Orchestrator.Tasks()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.handleError(w, r, errors.Wrapf(errors.ErrInvalidRequest, "limit %q", raw))
			return
		}
		if limit > 0 && limit < len(tasks) {
			tasks = tasks[len(tasks)-limit:]
		}
	}
	if tasks == nil {
		tasks = []*domain.AgentTask{}
	}
	writeJSON(w, http.StatusOK, taskList{Tasks: tasks})
}

func (h *handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	message, action := errors.Actionable(err)
	switch status {
	case http.StatusServiceUnavailable:
		message, action = "Hay otra instrucción en curso.", "Vuelve a intentarlo en unos segundos."
	case http.StatusInternalServerError:
		h.logger.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
		if code == "internal_error" {
			message, action = "Error interno.", ""
		}
	}
	writeError(w, status, code, message, action)
}

func classifyError(err error) (int, string) {
	switch {
	case stderrors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case stderrors.Is(err, errors.ErrEmptyInstruction):
		return http.StatusBadRequest, "empty_instruction"
	case stderrors.Is(err, errors.ErrInvalidIntent):
		return http.StatusBadRequest, "invalid_intent"
	case stderrors.Is(err, errors.ErrFileNotFound):
		return http.StatusNotFound, "file_not_found"
	case stderrors.Is(err, errors.ErrPersistFailed):
		return http.StatusInternalServerError, "store_failed"
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "busy"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message, action string) {
	writeJSON(w, status, apiError{Body: apiErrorBody{Code: code, Message: message, Action: action}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
