package domain

import "time"

// ProgressEvent reports a pipeline transition to the caller.
type ProgressEvent struct {
	Stage     string `json:"stage"`
	Percent   int    `json:"percent"`
	Message   string `json:"message"`
	AgentName string `json:"agentName,omitempty"`

	// StageStatus is set for sub-stage events of a single behavior.
	StageStatus StageStatus `json:"stageStatus,omitempty"`
}

// MessageType classifies chat messages.
type MessageType string

// Chat message types.
const (
	MessageText         MessageType = "text"
	MessageSuccess      MessageType = "success"
	MessageError        MessageType = "error"
	MessageNotification MessageType = "notification"
)

// ChatMessage is a user-facing notification in the chat stream.
type ChatMessage struct {
	ID        string      `json:"id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
}

// CompletionEnvelope is the normalized result of one model invocation.
// Exactly one of Content and Error is set.
type CompletionEnvelope struct {
	Content         string `json:"content,omitempty"`
	Error           string `json:"error,omitempty"`
	Capability      string `json:"capability,omitempty"`
	FallbackUsed    bool   `json:"fallbackUsed"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`

	// Err keeps the typed error chain for errors.Is checks.
	Err error `json:"-"`
}

// OK reports whether the envelope carries content.
func (e *CompletionEnvelope) OK() bool {
	return e.Error == "" && e.Err == nil
}
