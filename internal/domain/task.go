// Package domain provides the shared types of the forja agent pipeline:
// tasks, files, design proposals, corrections, plans and the events the
// orchestrator emits.
package domain

import "time"

// TaskType identifies which agent behavior handles a task.
type TaskType string

// Agent task types.
const (
	TaskPlanner         TaskType = "planner"
	TaskCodeGenerator   TaskType = "code_generator"
	TaskDesignArchitect TaskType = "design_architect"
	TaskCodeModifier    TaskType = "code_modifier"
	TaskCodeCorrector   TaskType = "code_corrector"
	TaskFileObserver    TaskType = "file_observer"
)

// String returns the string representation of the TaskType.
func (t TaskType) String() string {
	return string(t)
}

// IsValid checks if the task type is a recognized agent kind.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskPlanner, TaskCodeGenerator, TaskDesignArchitect,
		TaskCodeModifier, TaskCodeCorrector, TaskFileObserver:
		return true
	}
	return false
}

// AgentName returns the display name of the agent handling this task type.
func (t TaskType) AgentName() string {
	switch t {
	case TaskPlanner:
		return "Planner"
	case TaskCodeGenerator:
		return "Code Generator"
	case TaskDesignArchitect:
		return "Design Architect"
	case TaskCodeModifier:
		return "Code Modifier"
	case TaskCodeCorrector:
		return "Code Corrector"
	case TaskFileObserver:
		return "File Observer"
	default:
		return string(t)
	}
}

// TaskStatus is the lifecycle status of an AgentTask.
// Status only moves forward: pending → working → completed | failed.
type TaskStatus string

// Task statuses.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusWorking   TaskStatus = "working"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// AgentTask is a unit of work dispatched to one agent behavior.
// Only the orchestrator mutates a task; behaviors receive a copy.
type AgentTask struct {
	ID           string       `json:"id"`
	Type         TaskType     `json:"type"`
	Instruction  string       `json:"instruction"`
	Status       TaskStatus   `json:"status"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      *time.Time   `json:"endTime,omitempty"`
	PlanID       string       `json:"planId,omitempty"`
	TargetFileID string       `json:"targetFileId,omitempty"`
	Result       *AgentResult `json:"result,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// Clone returns a copy of the task that shares no mutable state with t.
func (t *AgentTask) Clone() *AgentTask {
	if t == nil {
		return nil
	}
	c := *t
	if t.EndTime != nil {
		end := *t.EndTime
		c.EndTime = &end
	}
	if t.Result != nil {
		c.Result = t.Result.Clone()
	}
	return &c
}

// AgentResult is the typed envelope every behavior returns.
// When Success is false, Error holds the reason and the payload fields are empty.
type AgentResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Files         []FileItem         `json:"files,omitempty"`
	Plan          *Plan              `json:"plan,omitempty"`
	Proposal      *DesignProposal    `json:"proposal,omitempty"`
	Changes       []CorrectionChange `json:"changes,omitempty"`
	CorrectedCode string             `json:"correctedCode,omitempty"`
	Language      string             `json:"language,omitempty"`
	Stages        []StageReport      `json:"stages,omitempty"`

	// Message is a short human-readable summary for the chat stream.
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// Fallback is true when the payload was generated locally because the
	// model output could not be used.
	Fallback bool `json:"fallback,omitempty"`
}

// Failed builds the error variant of an AgentResult.
func Failed(msg string) *AgentResult {
	return &AgentResult{Success: false, Error: msg}
}

// Clone returns a deep copy of the result.
func (r *AgentResult) Clone() *AgentResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Files = append([]FileItem(nil), r.Files...)
	c.Changes = append([]CorrectionChange(nil), r.Changes...)
	c.Stages = append([]StageReport(nil), r.Stages...)
	c.Warnings = append([]string(nil), r.Warnings...)
	if r.Plan != nil {
		p := r.Plan.Clone()
		c.Plan = p
	}
	if r.Proposal != nil {
		p := r.Proposal.Clone()
		c.Proposal = p
	}
	return &c
}
