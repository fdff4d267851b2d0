package agents

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forja/internal/clock"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/idgen"
)

func testDeps(c Completer) Deps {
	return Deps{
		Completer: c,
		Clock:     clock.NewStepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second),
		IDs:       &idgen.Sequence{},
		Logger:    zerolog.Nop(),
	}
}

func task(t domain.TaskType, instruction string) *Input {
	return &Input{Task: &domain.AgentTask{ID: "task-1", Type: t, Instruction: instruction, Status: domain.TaskStatusWorking}}
}

func fileByName(files []domain.FileItem, name string) (domain.FileItem, bool) {
	if i := domain.FindByName(files, name); i >= 0 {
		return files[i], true
	}
	return domain.FileItem{}, false
}
