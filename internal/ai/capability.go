// Package ai connects agent behaviors to language models.
//
// A Capability is the single boundary to a model: send a prompt, receive
// text. The Gateway wraps capabilities with the quota fallback, timeouts,
// rate limiting and metrics, and normalizes every call into a
// domain.CompletionEnvelope.
package ai

import "context"

// Capability sends a prompt to a language model and returns its reply.
// capabilityID names the model or provider the caller asked for, so a
// single implementation can serve several ids.
type Capability interface {
	Complete(ctx context.Context, prompt, capabilityID string) (string, error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(ctx context.Context, prompt, capabilityID string) (string, error)

// Complete calls f.
func (f CapabilityFunc) Complete(ctx context.Context, prompt, capabilityID string) (string, error) {
	return f(ctx, prompt, capabilityID)
}

// Compile-time check that CapabilityFunc implements Capability.
var _ Capability = CapabilityFunc(nil)
