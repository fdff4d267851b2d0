package domain

import (
	"path"
	"strings"
	"time"
)

// FileItem is one project file. Path is its identity within a project;
// ID is stable across edits to the same path.
type FileItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Content      string    `json:"content"`
	Language     string    `json:"language"`
	Size         int64     `json:"size,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	LastModified time.Time `json:"lastModified"`
	IsNew        bool      `json:"isNew,omitempty"`
	IsModified   bool      `json:"isModified,omitempty"`
}

// ModifiedAt returns LastModified, falling back to Timestamp when unset.
func (f *FileItem) ModifiedAt() time.Time {
	if !f.LastModified.IsZero() {
		return f.LastModified
	}
	return f.Timestamp
}

// FindByID returns the index of the file with the given id, or -1.
func FindByID(files []FileItem, id string) int {
	for i := range files {
		if files[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByName returns the index of the first file whose base name matches, or -1.
func FindByName(files []FileItem, name string) int {
	for i := range files {
		if strings.EqualFold(path.Base(files[i].Path), name) {
			return i
		}
	}
	return -1
}

// CloneFiles returns a copy of the slice.
func CloneFiles(files []FileItem) []FileItem {
	if files == nil {
		return nil
	}
	return append(make([]FileItem, 0, len(files)), files...)
}

// LanguageForPath infers an editor language from the file extension.
func LanguageForPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".scss":
		return "scss"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".jsx":
		return "javascriptreact"
	case ".ts":
		return "typescript"
	case ".tsx":
		return "typescriptreact"
	case ".json":
		return "json"
	case ".md":
		return "markdown"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".php":
		return "php"
	case ".rb":
		return "ruby"
	case ".sql":
		return "sql"
	case ".yaml", ".yml":
		return "yaml"
	case ".sh":
		return "shell"
	default:
		return "plaintext"
	}
}
