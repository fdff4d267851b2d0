package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/common/*.tmpl templates/agents/*.tmpl
var templateFS embed.FS

// maxFileRunes caps file content embedded in a prompt.
const maxFileRunes = 12000

var (
	// ErrTemplateNotFound indicates the requested template doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateExecution indicates a failure during template execution.
	ErrTemplateExecution = errors.New("template execution failed")

	// ErrInvalidData indicates the provided data doesn't match expected type.
	ErrInvalidData = errors.New("invalid data type for template")
)

// library is the parsed template set. It is built once and never mutated.
type library map[PromptID]*template.Template

//nolint:gochecknoglobals // parsed once from the embedded templates
var loadLibrary = sync.OnceValues(parseLibrary)

func funcs() template.FuncMap {
	return template.FuncMap{
		"hasContent": func(s string) bool {
			return strings.TrimSpace(s) != ""
		},
		"clip": func(s string) string {
			if utf8.RuneCountInString(s) <= maxFileRunes {
				return s
			}
			return string([]rune(s)[:maxFileRunes]) + "\n/* ... contenido recortado ... */"
		},
	}
}

// parseLibrary parses templates/common into a base set named
// "common/<file>" and clones it under every agent template.
func parseLibrary() (library, error) {
	base := template.New("").Funcs(funcs()).Option("missingkey=error")
	if err := eachTemplate("templates/common", func(name, src string) error {
		_, err := base.New("common/" + name).Parse(src)
		return err
	}); err != nil {
		return nil, fmt.Errorf("parsing common templates: %w", err)
	}

	lib := make(library)
	err := eachTemplate("templates/agents", func(name, src string) error {
		set, err := base.Clone()
		if err != nil {
			return err
		}
		id := PromptID("agents/" + name)
		tmpl, err := set.New(string(id)).Parse(src)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		lib[id] = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing agent templates: %w", err)
	}
	return lib, nil
}

// eachTemplate calls fn with the base name and source of every .tmpl in dir.
func eachTemplate(dir string, fn func(name, src string) error) error {
	entries, err := fs.ReadDir(templateFS, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmpl") {
			continue
		}
		src, err := templateFS.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if err := fn(strings.TrimSuffix(e.Name(), ".tmpl"), string(src)); err != nil {
			return err
		}
	}
	return nil
}

func lookup(id PromptID) (*template.Template, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, err
	}
	tmpl, ok := lib[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}
