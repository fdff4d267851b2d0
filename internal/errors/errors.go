// Package errors provides centralized error handling for forja.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the response-resolution pipeline.
var (
	// ErrExtraction indicates the model reply contained no parseable JSON,
	// or the JSON was malformed beyond repair.
	ErrExtraction = errors.New("json extraction failed")

	// ErrValidation indicates parsed JSON lacked required fields.
	ErrValidation = errors.New("response validation failed")

	// ErrGateway indicates the completion capability returned an error
	// unrelated to quota, or the fallback capability failed as well.
	ErrGateway = errors.New("completion gateway error")

	// ErrQuota indicates a quota or availability failure on a capability.
	// It triggers the single fallback retry.
	ErrQuota = errors.New("capability quota exhausted")

	// ErrReconciliationConflict indicates duplicate ids or paths remained
	// after a merge.
	ErrReconciliationConflict = errors.New("reconciliation conflict")

	// ErrCapabilityNotFound indicates no capability is registered under the id.
	ErrCapabilityNotFound = errors.New("capability not found")

	// ErrEmptyCompletion indicates the capability answered with no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Sentinel errors for project and task state.
var (
	// ErrFileNotFound indicates the targeted file id is not in the project.
	ErrFileNotFound = errors.New("file not found")

	// ErrTaskNotFound indicates a task id is unknown to the orchestrator.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTransition indicates an attempt to move a task status backwards
	// or out of a terminal status.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrEmptyInstruction indicates an instruction with no text was submitted.
	ErrEmptyInstruction = errors.New("instruction is empty")

	// ErrInstructionFailed indicates at least one task of an instruction's flow failed.
	ErrInstructionFailed = errors.New("instruction finished with failed tasks")

	// ErrBehaviorNotFound indicates no agent behavior is registered for a task type.
	ErrBehaviorNotFound = errors.New("agent behavior not found")
)

// Sentinel errors for configuration and the outer surfaces.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidGateway indicates an invalid gateway configuration value.
	ErrConfigInvalidGateway = errors.New("invalid gateway configuration")

	// ErrConfigInvalidCapability indicates an invalid capability definition.
	ErrConfigInvalidCapability = errors.New("invalid capability configuration")

	// ErrConfigInvalidOrchestrator indicates an invalid orchestrator configuration value.
	ErrConfigInvalidOrchestrator = errors.New("invalid orchestrator configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrProjectLocked indicates another forja process is writing the project.
	ErrProjectLocked = errors.New("project is locked by another process")

	// ErrStoreClosed indicates the project store was used after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrPersistFailed indicates an outcome was merged but could not be saved.
	ErrPersistFailed = errors.New("failed to persist outcome")

	// ErrInvalidRequest indicates a malformed request body on the HTTP API.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidIntent indicates an explicit intent that is not one of the known flows.
	ErrInvalidIntent = errors.New("invalid intent")
)

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
// The original chain is preserved so errors.Is() keeps working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
