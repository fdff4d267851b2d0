package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mrz1836/forja/internal/errors"
)

// Registry maps capability ids to capabilities.
// It is safe for concurrent use and itself implements Capability by
// dispatching on the requested id.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

// Register adds or replaces the capability for id.
func (r *Registry) Register(id string, c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[id] = c
}

// Get returns the capability for id or errors.ErrCapabilityNotFound.
func (r *Registry) Get(id string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.capabilities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrCapabilityNotFound, id)
	}
	return c, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.capabilities[id]
	return ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.capabilities))
	for id := range r.capabilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Complete dispatches to the capability registered under capabilityID.
func (r *Registry) Complete(ctx context.Context, prompt, capabilityID string) (string, error) {
	c, err := r.Get(capabilityID)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, prompt, capabilityID)
}

// Compile-time check that Registry implements Capability.
var _ Capability = (*Registry)(nil)
