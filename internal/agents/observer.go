package agents

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/reconcile"
)

//nolint:gochecknoglobals // compiled once
var assetRef = regexp.MustCompile(`(?i)\b(?:href|src)\s*=\s*["']([^"']+)["']`)

// FileObserver verifies the project file set without calling the model.
type FileObserver struct {
	base
}

// NewFileObserver creates the File Observer behavior.
func NewFileObserver(deps Deps) *FileObserver {
	return &FileObserver{base: newBase(domain.TaskFileObserver, deps)}
}

// Execute links styles.css and script.js into index.html when they are
// missing, and reports missing local assets and empty files. Only changed
// files are returned.
func (o *FileObserver) Execute(_ context.Context, in *Input) *domain.AgentResult {
	res := &domain.AgentResult{Success: true}
	var report []string

	for _, f := range in.Files {
		if strings.TrimSpace(f.Content) == "" {
			report = append(report, fmt.Sprintf("El archivo %s está vacío.", f.Path))
		}
	}

	if i := domain.FindByName(in.Files, "index.html"); i >= 0 {
		index := in.Files[i]
		hasCSS := domain.FindByName(in.Files, "styles.css") >= 0
		hasJS := domain.FindByName(in.Files, "script.js") >= 0
		if page, changed := LinkAssets(index.Content, hasCSS, hasJS); changed {
			now := o.deps.Clock.Now()
			index.Content = page
			index.Size = int64(len(page))
			index.LastModified = now
			index.IsModified = true
			index.IsNew = false
			res.Files = append(res.Files, index)
			report = append(report, fmt.Sprintf("Se enlazaron los recursos en %s.", index.Path))
		}
	}

	known := make(map[string]bool, len(in.Files))
	for _, f := range in.Files {
		known[reconcile.NormalizePath(f.Path)] = true
	}
	for _, f := range in.Files {
		if f.Language != "html" && !strings.EqualFold(path.Ext(f.Path), ".html") {
			continue
		}
		for _, ref := range MissingAssets(f, known) {
			report = append(report, fmt.Sprintf("%s hace referencia a %s, que no existe.", f.Path, ref))
		}
	}

	res.Warnings = report
	if len(report) == 0 {
		res.Message = fmt.Sprintf("Verificación completada: %d archivos sin problemas", len(in.Files))
	} else {
		res.Message = fmt.Sprintf("Verificación completada: %s", strings.Join(report, " "))
	}
	o.logger.Debug().
		Int("files", len(in.Files)).
		Int("changed", len(res.Files)).
		Int("findings", len(report)).
		Msg("file set verified")
	return res
}

// MissingAssets lists local href/src references of page that resolve to
// no path in known (normalized paths).
func MissingAssets(page domain.FileItem, known map[string]bool) []string {
	dir := path.Dir(reconcile.NormalizePath(page.Path))
	seen := make(map[string]bool)
	var missing []string
	for _, m := range assetRef.FindAllStringSubmatch(page.Content, -1) {
		ref := strings.TrimSpace(m[1])
		if !isLocalRef(ref) {
			continue
		}
		ref = strings.SplitN(strings.SplitN(ref, "#", 2)[0], "?", 2)[0]
		if ref == "" {
			continue
		}
		target := ref
		if !strings.HasPrefix(ref, "/") {
			target = path.Join(dir, ref)
		}
		target = reconcile.NormalizePath(target)
		if known[target] || seen[target] {
			continue
		}
		seen[target] = true
		missing = append(missing, ref)
	}
	return missing
}

func isLocalRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	lower := strings.ToLower(ref)
	for _, scheme := range []string{"http:", "https:", "data:", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}

var _ Behavior = (*FileObserver)(nil)
