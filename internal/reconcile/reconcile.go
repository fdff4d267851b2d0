// Package reconcile merges and deduplicates project file collections.
//
// Identity follows path: a file written to an existing path keeps that
// path's id. Content follows recency: the copy with the greatest
// modification time wins. The Reconciler is the only writer of project
// file state; everything else hands it collections and receives a
// snapshot with unique paths and unique ids.
package reconcile

import (
	"path"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/idgen"
)

// NormalizePath canonicalizes a project path: surrounding space trimmed,
// backslashes turned into slashes, cleaned and rooted at "/".
// An empty input yields "".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	return path.Clean("/" + p)
}

// Dedupe collapses entries that share a normalized path. The surviving
// entry carries the content and metadata of the copy with the greatest
// modification time (ties go to the later occurrence) and the id of the
// first-seen copy. Output keeps first-appearance order. Dedupe is
// idempotent.
func Dedupe(files []domain.FileItem) []domain.FileItem {
	if files == nil {
		return nil
	}

	out := make([]domain.FileItem, 0, len(files))
	index := make(map[string]int, len(files))

	for _, f := range files {
		f.Path = NormalizePath(f.Path)
		i, ok := index[f.Path]
		if !ok {
			index[f.Path] = len(out)
			out = append(out, f)
			continue
		}

		cur := out[i]
		if !f.ModifiedAt().Before(cur.ModifiedAt()) {
			f.ID = cur.ID
			out[i] = f
		}
	}
	return out
}

// Merge folds incoming into existing. A file at an existing path replaces
// that entry's content and metadata but keeps its id, and is flagged
// IsModified when the content changed. An incoming copy strictly older than
// the existing one is ignored. A file at a new path is appended with
// IsNew set and an id from ids when it has none. Files without a usable
// path or name are dropped.
//
// Existing entries are deduplicated first, so the output never repeats a
// path. Incoming files with a zero modification time count as newest.
func Merge(existing, incoming []domain.FileItem, ids idgen.Generator) []domain.FileItem {
	out, _ := merge(existing, incoming, ids)
	return out
}

// Stats counts what a merge did with the incoming files.
type Stats struct {
	Added     int `json:"added"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
	Stale     int `json:"stale"`
	Rejected  int `json:"rejected"`
}

func merge(existing, incoming []domain.FileItem, ids idgen.Generator) ([]domain.FileItem, Stats) {
	if ids == nil {
		ids = idgen.Default
	}

	var stats Stats
	out := Dedupe(domain.CloneFiles(existing))
	if out == nil {
		out = make([]domain.FileItem, 0, len(incoming))
	}
	index := make(map[string]int, len(out)+len(incoming))
	for i, f := range out {
		index[f.Path] = i
	}

	for _, f := range incoming {
		if !normalizeIncoming(&f) {
			stats.Rejected++
			continue
		}

		i, ok := index[f.Path]
		if !ok {
			if f.ID == "" {
				f.ID = ids.NewID(idgen.PrefixFile)
			}
			f.IsNew = true
			f.IsModified = false
			index[f.Path] = len(out)
			out = append(out, f)
			stats.Added++
			continue
		}

		cur := out[i]
		if !f.LastModified.IsZero() || !f.Timestamp.IsZero() {
			if f.ModifiedAt().Before(cur.ModifiedAt()) {
				stats.Stale++
				continue
			}
		} else {
			f.LastModified = cur.ModifiedAt()
		}

		changed := f.Content != cur.Content
		f.ID = cur.ID
		if !cur.Timestamp.IsZero() {
			f.Timestamp = cur.Timestamp
		}
		f.IsNew = cur.IsNew && !changed
		f.IsModified = cur.IsModified || changed
		out[i] = f

		if changed {
			stats.Modified++
		} else {
			stats.Unchanged++
		}
	}
	return out, stats
}

// normalizeIncoming fills derived fields. It reports false when the file
// has neither a path nor a name.
func normalizeIncoming(f *domain.FileItem) bool {
	f.Path = NormalizePath(f.Path)
	if f.Path == "" || f.Path == "/" {
		f.Path = NormalizePath(f.Name)
	}
	if f.Path == "" || f.Path == "/" {
		return false
	}
	if f.Name == "" {
		f.Name = path.Base(f.Path)
	}
	if f.Language == "" {
		f.Language = domain.LanguageForPath(f.Path)
	}
	f.Size = int64(len(f.Content))
	return true
}
