package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/testutil"
)

type panickingBehavior struct{}

func (panickingBehavior) Type() domain.TaskType { return domain.TaskPlanner }

func (panickingBehavior) Execute(context.Context, *Input) *domain.AgentResult {
	panic("boom")
}

type nilBehavior struct{}

func (nilBehavior) Type() domain.TaskType { return domain.TaskFileObserver }

func (nilBehavior) Execute(context.Context, *Input) *domain.AgentResult { return nil }

func TestRun_Guards(t *testing.T) {
	t.Run("panic becomes failed result", func(t *testing.T) {
		res := Run(context.Background(), panickingBehavior{}, nil)
		require.NotNil(t, res)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "Planner")
		assert.Contains(t, res.Error, "boom")
	})

	t.Run("nil result becomes failed result", func(t *testing.T) {
		res := Run(context.Background(), nilBehavior{}, &Input{})
		require.NotNil(t, res)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "File Observer")
	})
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry(testDeps(testutil.Failing("unused")))

	assert.Len(t, r.Types(), 6)
	for _, typ := range r.Types() {
		b, err := r.Get(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, b.Type())
	}

	_, err := NewRegistry().Get(domain.TaskPlanner)
	require.ErrorIs(t, err, errors.ErrBehaviorNotFound)
}

func TestBase_CompleteWithoutCompleter(t *testing.T) {
	deps := testDeps(nil)
	res := NewPlanner(deps).Execute(context.Background(), task(domain.TaskPlanner, "crea un blog"))

	require.True(t, res.Success)
	assert.True(t, res.Fallback)
}

func TestInput_Instruction(t *testing.T) {
	var in *Input
	assert.Empty(t, in.Instruction())
	assert.Empty(t, (&Input{}).Instruction())
	assert.Equal(t, "hola", task(domain.TaskPlanner, "hola").Instruction())
}
