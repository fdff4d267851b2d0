package agents

import (
	"path"
	"strings"
	"time"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/idgen"
	"github.com/mrz1836/forja/internal/prompts"
	"github.com/mrz1836/forja/internal/reconcile"
)

// Site file paths.
const (
	IndexPath  = "/index.html"
	StylesPath = "/styles.css"
	ScriptPath = "/script.js"
)

// maxPromptFiles bounds how many file contents go into one prompt.
const maxPromptFiles = 8

// newFile builds a new FileItem stamped with now.
func (b *base) newFile(p, content, language string, now time.Time) domain.FileItem {
	p = reconcile.NormalizePath(p)
	if language == "" {
		language = domain.LanguageForPath(p)
	}
	return domain.FileItem{
		ID:           b.deps.IDs.NewID(idgen.PrefixFile),
		Name:         path.Base(p),
		Path:         p,
		Content:      content,
		Language:     language,
		Size:         int64(len(content)),
		Timestamp:    now,
		LastModified: now,
		IsNew:        true,
	}
}

// siteFiles builds index.html, styles.css and script.js for s.
func (b *base) siteFiles(s Site) []domain.FileItem {
	now := b.deps.Clock.Now()
	page, _ := LinkAssets(s.HTML, true, true)
	js := s.JS
	if strings.TrimSpace(js) == "" {
		js = siteJS
	}
	return []domain.FileItem{
		b.newFile(IndexPath, page, "html", now),
		b.newFile(StylesPath, s.CSS, "css", now),
		b.newFile(ScriptPath, js, "javascript", now),
	}
}

// fileInfos converts project files to prompt listings. Only the first
// maxPromptFiles carry content when withContent is set.
func fileInfos(files []domain.FileItem, withContent bool) []prompts.FileInfo {
	out := make([]prompts.FileInfo, 0, len(files))
	for i, f := range files {
		info := prompts.FileInfo{Path: f.Path, Language: f.Language}
		if withContent && i < maxPromptFiles {
			info.Content = f.Content
		}
		out = append(out, info)
	}
	return out
}

func fileInfo(f domain.FileItem) prompts.FileInfo {
	lang := f.Language
	if lang == "" {
		lang = domain.LanguageForPath(f.Path)
	}
	return prompts.FileInfo{Path: f.Path, Language: lang, Content: f.Content}
}

// findByExt returns the preferred file by name, else the first file with ext.
func findByExt(files []domain.FileItem, name, ext string) (domain.FileItem, bool) {
	if i := domain.FindByName(files, name); i >= 0 {
		return files[i], true
	}
	for _, f := range files {
		if strings.EqualFold(path.Ext(f.Path), ext) {
			return f, true
		}
	}
	return domain.FileItem{}, false
}
