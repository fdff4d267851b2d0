// Package orchestrator turns user instructions into agent tasks, runs the
// behaviors of each flow in sequence and merges every result into the
// project files through the reconciler.
//
// Import rules:
//   - CAN import: internal/agents, internal/reconcile, internal/domain,
//     internal/errors, internal/idgen, internal/clock, internal/textutil
//   - MUST NOT import: internal/cli, internal/server, internal/store
package orchestrator

import (
	"fmt"
	"time"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
)

// ValidTransitions defines the allowed task status moves.
//
//	Pending → Working
//	Working → Completed, Failed
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusPending: {domain.TaskStatusWorking},
	domain.TaskStatusWorking: {domain.TaskStatusCompleted, domain.TaskStatusFailed},
}

// IsValidTransition checks if a task may move from one status to another.
// Returns false for terminal statuses and for staying in place.
func IsValidTransition(from, to domain.TaskStatus) bool {
	if from == to {
		return false
	}
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// transition validates and applies a status change, stamping StartTime
// on Working and EndTime on terminal statuses.
func transition(task *domain.AgentTask, to domain.TaskStatus, now time.Time) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", errors.ErrInvalidTransition)
	}
	if !IsValidTransition(task.Status, to) {
		return fmt.Errorf("%w: cannot transition task %s from %s to %s",
			errors.ErrInvalidTransition, task.ID, task.Status, to)
	}

	task.Status = to
	switch {
	case to == domain.TaskStatusWorking:
		task.StartTime = now
	case to.IsTerminal():
		end := now
		task.EndTime = &end
	}
	return nil
}
