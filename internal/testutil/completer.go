// Package testutil provides test doubles shared by forja's package tests.
// It should only be imported by test files (*_test.go).
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
)

// ScriptedCompleter answers prompts with scripted envelopes in order and
// records every prompt. The last reply repeats once the script runs out;
// an empty script fails every call like an unreachable model.
type ScriptedCompleter struct {
	mu      sync.Mutex
	prompts []string
	replies []func(preferred string) *domain.CompletionEnvelope
}

// Complete implements the agents completer contract.
func (s *ScriptedCompleter) Complete(_ context.Context, prompt, preferred string) *domain.CompletionEnvelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return failure(preferred, "connection refused")
	}
	next := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return next(preferred)
}

// Calls returns how many prompts were received.
func (s *ScriptedCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of the received prompts.
func (s *ScriptedCompleter) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Replies returns a completer answering with texts in order.
func Replies(texts ...string) *ScriptedCompleter {
	c := &ScriptedCompleter{}
	for _, t := range texts {
		c.replies = append(c.replies, func(string) *domain.CompletionEnvelope {
			return &domain.CompletionEnvelope{Content: t, Capability: "primary"}
		})
	}
	return c
}

// Failing returns a completer whose every call fails with a gateway error.
func Failing(msg string) *ScriptedCompleter {
	return &ScriptedCompleter{replies: []func(string) *domain.CompletionEnvelope{
		func(preferred string) *domain.CompletionEnvelope { return failure(preferred, msg) },
	}}
}

// Offline returns a completer that behaves like an unreachable model.
func Offline() *ScriptedCompleter {
	return &ScriptedCompleter{}
}

func failure(preferred, msg string) *domain.CompletionEnvelope {
	if preferred == "" {
		preferred = "primary"
	}
	err := fmt.Errorf("%w: %s", errors.ErrGateway, msg)
	return &domain.CompletionEnvelope{Capability: preferred, Error: err.Error(), Err: err}
}
