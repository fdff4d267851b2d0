package store

import (
	"context"

	"github.com/mrz1836/forja/internal/domain"
)

// Snapshot is the persisted state of a project.
type Snapshot struct {
	Files    []domain.FileItem
	Tasks    []*domain.AgentTask
	Plan     *domain.Plan
	Proposal *domain.DesignProposal
}

// SaveSnapshot stores the file set, upserts the tasks and replaces the plan
// and proposal when they are set.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if err := s.SaveFiles(ctx, snap.Files); err != nil {
		return err
	}
	if err := s.SaveTasks(ctx, snap.Tasks); err != nil {
		return err
	}
	if snap.Plan != nil {
		if err := s.SavePlan(ctx, snap.Plan); err != nil {
			return err
		}
	}
	if snap.Proposal != nil {
		if err := s.SaveProposal(ctx, snap.Proposal); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads the whole project back. Tasks come back oldest first.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Files, err = s.LoadFiles(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Tasks, err = s.ListTasks(ctx, 0); err != nil {
		return Snapshot{}, err
	}
	if snap.Plan, err = s.LoadPlan(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Proposal, err = s.LoadProposal(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
