package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
)

const taskColumns = `id, type, instruction, status, start_time, end_time, plan_id, target_file_id, error, result`

// SaveTask inserts or updates a task.
func (s *Store) SaveTask(ctx context.Context, t *domain.AgentTask) error {
	return s.SaveTasks(ctx, []*domain.AgentTask{t})
}

// SaveTasks upserts tasks in one transaction.
func (s *Store) SaveTasks(ctx context.Context, tasks []*domain.AgentTask) error {
	if err := s.check(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	for _, t := range tasks {
		if t == nil {
			continue
		}
		var end sql.NullString
		if t.EndTime != nil {
			end = sql.NullString{String: formatTime(*t.EndTime), Valid: true}
		}
		var result sql.NullString
		if t.Result != nil {
			body, err := marshal(t.Result)
			if err != nil {
				return fmt.Errorf("encode result of task %s: %w", t.ID, err)
			}
			result = sql.NullString{String: body, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				end_time = excluded.end_time,
				plan_id = excluded.plan_id,
				error = excluded.error,
				result = excluded.result`,
			t.ID, string(t.Type), t.Instruction, string(t.Status), formatTime(t.StartTime), end,
			t.PlanID, t.TargetFileID, t.Error, result,
		); err != nil {
			return fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetTask returns one task. Returns ErrTaskNotFound for unknown ids.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.AgentTask, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	return t, err
}

// ListTasks returns tasks oldest first. A positive limit keeps only the
// most recent ones.
func (s *Store) ListTasks(ctx context.Context, limit int) ([]*domain.AgentTask, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	query := `SELECT ` + taskColumns + ` FROM (
		SELECT *, rowid AS seq FROM tasks ORDER BY start_time DESC, seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `) ORDER BY start_time, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.AgentTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*domain.AgentTask, error) {
	var (
		t                            domain.AgentTask
		typ, status, start           string
		end, planID, target, errText sql.NullString
		result                       sql.NullString
	)
	if err := sc.Scan(&t.ID, &typ, &t.Instruction, &status, &start, &end, &planID, &target, &errText, &result); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Type = domain.TaskType(typ)
	t.Status = domain.TaskStatus(status)
	t.PlanID = planID.String
	t.TargetFileID = target.String
	t.Error = errText.String

	var err error
	if t.StartTime, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("task %s start_time: %w", t.ID, err)
	}
	if end.Valid && end.String != "" {
		et, err := parseTime(end.String)
		if err != nil {
			return nil, fmt.Errorf("task %s end_time: %w", t.ID, err)
		}
		t.EndTime = &et
	}
	if result.Valid && result.String != "" {
		var res domain.AgentResult
		if err := unmarshal(result.String, &res); err != nil {
			return nil, fmt.Errorf("decode result of task %s: %w", t.ID, err)
		}
		t.Result = &res
	}
	return &t, nil
}
