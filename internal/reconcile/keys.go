package reconcile

import (
	"sort"
	"strconv"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/idgen"
)

// Collision lists the positions of entries sharing one key.
type Collision struct {
	Key     string `json:"key"`
	Indexes []int  `json:"indexes"`
}

// Report is the diagnostic output of ValidateKeys.
type Report struct {
	PathCollisions []Collision `json:"pathCollisions,omitempty"`
	IDCollisions   []Collision `json:"idCollisions,omitempty"`
	EmptyIDs       []int       `json:"emptyIds,omitempty"`
}

// OK reports whether paths and ids are all unique and present.
func (r Report) OK() bool {
	return len(r.PathCollisions) == 0 && len(r.IDCollisions) == 0 && len(r.EmptyIDs) == 0
}

// Err returns nil when the report is clean and otherwise an error wrapping
// errors.ErrReconciliationConflict.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return errors.Wrapf(errors.ErrReconciliationConflict,
		"%d path collisions, %d id collisions, %d empty ids",
		len(r.PathCollisions), len(r.IDCollisions), len(r.EmptyIDs))
}

// ValidateKeys reports path and id collisions without changing anything.
func ValidateKeys(files []domain.FileItem) Report {
	var r Report

	paths := make(map[string][]int)
	ids := make(map[string][]int)
	for i, f := range files {
		p := NormalizePath(f.Path)
		paths[p] = append(paths[p], i)
		if f.ID == "" {
			r.EmptyIDs = append(r.EmptyIDs, i)
			continue
		}
		ids[f.ID] = append(ids[f.ID], i)
	}

	r.PathCollisions = collisions(paths)
	r.IDCollisions = collisions(ids)
	return r
}

func collisions(m map[string][]int) []Collision {
	var out []Collision
	for key, idx := range m {
		if len(idx) > 1 {
			out = append(out, Collision{Key: key, Indexes: idx})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Indexes[0] < out[j].Indexes[0] })
	return out
}

// Remap records an id replaced by FixDuplicateIDs.
type Remap struct {
	Path  string `json:"path"`
	OldID string `json:"oldId"`
	NewID string `json:"newId"`
}

// FixDuplicateIDs gives every entry whose id is empty or already used by an
// earlier entry a new id derived from its path, so repeated runs produce
// the same ids. The first holder of an id keeps it.
func FixDuplicateIDs(files []domain.FileItem) ([]domain.FileItem, []Remap) {
	out := domain.CloneFiles(files)

	taken := make(map[string]bool, len(out))
	for _, f := range out {
		if f.ID != "" {
			taken[f.ID] = true
		}
	}

	var remaps []Remap
	seen := make(map[string]bool, len(out))
	for i := range out {
		id := out[i].ID
		if id != "" && !seen[id] {
			seen[id] = true
			continue
		}

		var next string
		for n := 1; ; n++ {
			next = idgen.Derive(out[i].Path, strconv.Itoa(n))
			if !taken[next] {
				break
			}
		}
		taken[next] = true
		seen[next] = true
		remaps = append(remaps, Remap{Path: out[i].Path, OldID: id, NewID: next})
		out[i].ID = next
	}
	return out, remaps
}
