package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/mrz1836/forja/internal/domain"
)

// SavePlan stores p as the latest plan.
func (s *Store) SavePlan(ctx context.Context, p *domain.Plan) error {
	return s.saveArtifact(ctx, artifactPlan, p)
}

// LoadPlan returns the latest plan, or nil when none was saved.
func (s *Store) LoadPlan(ctx context.Context) (*domain.Plan, error) {
	var p domain.Plan
	ok, err := s.loadArtifact(ctx, artifactPlan, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SaveProposal stores p as the latest design proposal.
func (s *Store) SaveProposal(ctx context.Context, p *domain.DesignProposal) error {
	return s.saveArtifact(ctx, artifactProposal, p)
}

// LoadProposal returns the latest design proposal, or nil when none was saved.
func (s *Store) LoadProposal(ctx context.Context) (*domain.DesignProposal, error) {
	var p domain.DesignProposal
	ok, err := s.loadArtifact(ctx, artifactProposal, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) saveArtifact(ctx context.Context, kind string, v any) error {
	if err := s.check(); err != nil {
		return err
	}
	body, err := marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (kind, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		kind, body, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (s *Store) loadArtifact(ctx context.Context, kind string, v any) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM artifacts WHERE kind = ?`, kind).Scan(&body)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", kind, err)
	}
	if err := unmarshal(body, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", kind, err)
	}
	return true, nil
}

func unmarshal(body string, v any) error {
	return json.Unmarshal([]byte(body), v)
}
