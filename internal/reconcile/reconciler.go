package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/idgen"
)

// Reconciler applies incoming files to a project snapshot.
type Reconciler struct {
	logger zerolog.Logger
	ids    idgen.Generator
}

// New creates a Reconciler. A nil generator uses idgen.Default.
func New(logger zerolog.Logger, ids idgen.Generator) *Reconciler {
	if ids == nil {
		ids = idgen.Default
	}
	return &Reconciler{
		logger: logger.With().Str("component", "reconcile").Logger(),
		ids:    ids,
	}
}

// Result is the outcome of Apply.
type Result struct {
	// Files is the new snapshot. Paths and ids are unique.
	Files []domain.FileItem `json:"files"`
	Stats Stats             `json:"stats"`
	// Conflicts is the ValidateKeys report taken before repair.
	Conflicts Report  `json:"conflicts"`
	Remaps    []Remap `json:"remaps,omitempty"`
}

// Changed reports whether any file was added or modified.
func (r Result) Changed() bool {
	return r.Stats.Added > 0 || r.Stats.Modified > 0
}

// Apply runs Merge, Dedupe, ValidateKeys and FixDuplicateIDs in order.
// Neither input slice is modified. Applying the same incoming files twice
// yields the same snapshot.
func (r *Reconciler) Apply(existing, incoming []domain.FileItem) Result {
	merged, stats := merge(existing, incoming, r.ids)
	files := Dedupe(merged)

	res := Result{Files: files, Stats: stats, Conflicts: ValidateKeys(files)}
	if err := res.Conflicts.Err(); err != nil {
		r.logger.Warn().Err(err).Msg("reconciliation conflict detected, repairing ids")
		res.Files, res.Remaps = FixDuplicateIDs(files)
		for _, m := range res.Remaps {
			r.logger.Warn().
				Str("path", m.Path).
				Str("old_id", m.OldID).
				Str("new_id", m.NewID).
				Msg("file id remapped")
		}
	}

	r.logger.Debug().
		Int("added", stats.Added).
		Int("modified", stats.Modified).
		Int("unchanged", stats.Unchanged).
		Int("stale", stats.Stale).
		Int("rejected", stats.Rejected).
		Int("total", len(res.Files)).
		Msg("files reconciled")

	return res
}
