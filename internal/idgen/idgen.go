// Package idgen generates identifiers for tasks, files, proposals and
// correction changes.
package idgen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Common id prefixes.
const (
	PrefixTask      = "task"
	PrefixFile      = "file"
	PrefixProposal  = "design"
	PrefixComponent = "comp"
	PrefixChange    = "change"
	PrefixPlan      = "plan"
	PrefixMessage   = "msg"
)

// Generator produces identifiers.
type Generator interface {
	// NewID returns a new identifier of the form "<prefix>-<suffix>".
	// An empty prefix yields the bare suffix.
	NewID(prefix string) string
}

// UUIDGenerator issues random (version 4) UUID based identifiers.
// Identifiers never repeat for the lifetime of the process.
type UUIDGenerator struct{}

// NewID returns prefix-<uuid>.
func (UUIDGenerator) NewID(prefix string) string {
	return join(prefix, uuid.NewString())
}

// Default is the generator used when none is injected.
var Default Generator = UUIDGenerator{} //nolint:gochecknoglobals // stateless default

// New returns an identifier from the default generator.
func New(prefix string) string {
	return Default.NewID(prefix)
}

// Derive returns a deterministic identifier for the given parts.
// The same parts always produce the same id, so colliding ids can be
// regenerated reproducibly.
func Derive(parts ...string) string {
	name := strings.Join(parts, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Sequence is a deterministic Generator for tests: prefix-1, prefix-2, ...
// The counter is shared across prefixes.
type Sequence struct {
	mu sync.Mutex
	n  int
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()
	return join(prefix, fmt.Sprintf("%d", n))
}

func join(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}
