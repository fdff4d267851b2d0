package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "forja.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFiles_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)
	files := []domain.FileItem{
		{ID: "file-2", Name: "styles.css", Path: "/styles.css", Content: ":root {}", Language: "css",
			Size: 8, Timestamp: created, LastModified: created.Add(time.Minute), IsModified: true},
		{ID: "file-1", Name: "index.html", Path: "/index.html", Content: "<html></html>", Language: "html",
			Size: 13, IsNew: true},
	}
	require.NoError(t, s.SaveFiles(ctx, files))

	got, err := s.LoadFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, files, got)

	require.NoError(t, s.SaveFiles(ctx, files[1:]))
	got, err = s.LoadFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, files[1:], got)
}

func TestFiles_DuplicatePathRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	original := []domain.FileItem{{ID: "file-1", Name: "a.js", Path: "/a.js", Content: "1"}}
	require.NoError(t, s.SaveFiles(ctx, original))

	err := s.SaveFiles(ctx, []domain.FileItem{
		{ID: "x", Name: "b.js", Path: "/b.js", Content: "2"},
		{ID: "y", Name: "b.js", Path: "/b.js", Content: "3"},
	})
	require.Error(t, err)

	got, err := s.LoadFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestTasks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := &domain.AgentTask{ID: "task-1", Type: domain.TaskPlanner, Instruction: "crea", Status: domain.TaskStatusWorking, StartTime: start}
	second := &domain.AgentTask{ID: "task-2", Type: domain.TaskCodeModifier, Instruction: "cambia", Status: domain.TaskStatusPending,
		StartTime: start.Add(time.Second), TargetFileID: "file-1"}
	require.NoError(t, s.SaveTasks(ctx, []*domain.AgentTask{second, first, nil}))

	end := start.Add(2 * time.Second)
	first.Status = domain.TaskStatusCompleted
	first.EndTime = &end
	first.Result = &domain.AgentResult{Success: true, Message: "ok", Plan: &domain.Plan{ID: "plan-1", Title: "Plan"}}
	require.NoError(t, s.SaveTask(ctx, first))

	got, err := s.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	all, err := s.ListTasks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "task-1", all[0].ID)
	assert.Equal(t, "task-2", all[1].ID)
	assert.Equal(t, "file-1", all[1].TargetFileID)

	latest, err := s.ListTasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "task-2", latest[0].ID)

	_, err = s.GetTask(ctx, "task-404")
	require.ErrorIs(t, err, errors.ErrTaskNotFound)
}

func TestArtifacts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	plan, err := s.LoadPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, plan)

	want := &domain.Plan{ID: "plan-1", Title: "Landing", Steps: []domain.PlanStep{{ID: "s1", Title: "HTML"}}}
	require.NoError(t, s.SavePlan(ctx, want))
	want.Title = "Landing v2"
	require.NoError(t, s.SavePlan(ctx, want))
	plan, err = s.LoadPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, plan)

	proposal := &domain.DesignProposal{ID: "design-1", Title: "Azul", ColorPalette: domain.ColorPalette{Name: "Tech Blue", Primary: "#2563EB"}}
	require.NoError(t, s.SaveProposal(ctx, proposal))
	gotProposal, err := s.LoadProposal(ctx)
	require.NoError(t, err)
	assert.Equal(t, proposal, gotProposal)
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "forja.db"))
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.LoadFiles(ctx)
	require.ErrorIs(t, err, errors.ErrStoreClosed)
	require.ErrorIs(t, s.SaveTask(ctx, &domain.AgentTask{ID: "x"}), errors.ErrStoreClosed)
	require.ErrorIs(t, s.Ping(ctx), errors.ErrStoreClosed)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)
	snap := Snapshot{
		Files: []domain.FileItem{{ID: "file-1", Name: "index.html", Path: "/index.html", Content: "<html></html>", Language: "html"}},
		Tasks: []*domain.AgentTask{{
			ID: "task-1", Type: domain.TaskPlanner, Instruction: "crea una web",
			Status: domain.TaskStatusCompleted, StartTime: start, EndTime: &end,
		}},
		Plan: &domain.Plan{ID: "plan-1", Title: "Web", Steps: []domain.PlanStep{{ID: "plan-1-step-1", Title: "HTML"}}},
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Files, got.Files)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "task-1", got.Tasks[0].ID)
	assert.Equal(t, snap.Plan, got.Plan)
	assert.Nil(t, got.Proposal)
}
