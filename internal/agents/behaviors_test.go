package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/testutil"
)

func TestPlanner(t *testing.T) {
	t.Run("model plan", func(t *testing.T) {
		reply := `{"title": "Landing", "summary": "Una página", "technologies": ["HTML"],
			"steps": [{"title": "Maquetar", "files": ["index.html"]}, {"title": ""}]}`
		c := testutil.Replies(reply)
		res := NewPlanner(testDeps(c)).Execute(context.Background(), task(domain.TaskPlanner, "crea una landing"))

		require.True(t, res.Success)
		assert.False(t, res.Fallback)
		require.NotNil(t, res.Plan)
		assert.Equal(t, "plan-1", res.Plan.ID)
		require.Len(t, res.Plan.Steps, 1)
		assert.Equal(t, "plan-1-step-1", res.Plan.Steps[0].ID)
		assert.Contains(t, res.Message, "Landing")
		assert.Equal(t, 1, c.Calls())
		assert.Contains(t, c.Prompts()[0], "crea una landing")
	})

	t.Run("fallback plan", func(t *testing.T) {
		res := NewPlanner(testDeps(testutil.Failing("quota"))).
			Execute(context.Background(), task(domain.TaskPlanner, "crea un sitio web para un restaurante azul"))

		require.True(t, res.Success)
		assert.True(t, res.Fallback)
		require.NotNil(t, res.Plan)
		assert.Len(t, res.Plan.Steps, 3)
		assert.Contains(t, res.Plan.Summary, "Tech Blue")
		for _, s := range res.Plan.Steps {
			assert.NotEmpty(t, s.ID)
		}
		assert.Contains(t, res.Plan.Markdown(), "1. **Estructura HTML**")
	})
}

func TestCodeGenerator(t *testing.T) {
	proposal := &domain.DesignProposal{
		ID:           "design-1",
		ColorPalette: paletteRoyalPurple,
		HTMLPreview:  "<html><head></head><body>Hola</body></html>",
		CSSPreview:   "body { color: var(--color-text); }",
	}

	t.Run("model files get palette", func(t *testing.T) {
		reply := `{"files": [
			{"path": "index.html", "content": "<html></html>"},
			{"path": "css\\styles.css", "content": "h1 { color: red; }"},
			{"path": "empty.js", "content": ""}
		]}`
		in := task(domain.TaskCodeGenerator, "genera el sitio")
		in.Proposal = proposal
		in.Plan = FallbackPlan("genera el sitio")

		c := testutil.Replies(reply)
		res := NewCodeGenerator(testDeps(c)).Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.False(t, res.Fallback)
		require.Len(t, res.Files, 2)
		assert.Equal(t, "/index.html", res.Files[0].Path)
		assert.Equal(t, "/css/styles.css", res.Files[1].Path)
		assert.Equal(t, "styles.css", res.Files[1].Name)
		assert.Equal(t, "css", res.Files[1].Language)
		assert.Contains(t, res.Files[1].Content, "--color-primary: #7C3AED;")
		assert.NotContains(t, res.Files[0].Content, "--color-primary")
		assert.Contains(t, c.Prompts()[0], "Estructura HTML")
	})

	t.Run("fallback uses proposal previews", func(t *testing.T) {
		in := task(domain.TaskCodeGenerator, "genera el sitio")
		in.Proposal = proposal

		res := NewCodeGenerator(testDeps(testutil.Replies(`{"files": []}`))).Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.True(t, res.Fallback)
		require.Len(t, res.Files, 3)
		index, _ := fileByName(res.Files, "index.html")
		assert.Contains(t, index.Content, "Hola")
		styles, _ := fileByName(res.Files, "styles.css")
		assert.Contains(t, styles.Content, "#7C3AED")
	})

	t.Run("fallback skeleton", func(t *testing.T) {
		res := NewCodeGenerator(testDeps(testutil.Failing("down"))).
			Execute(context.Background(), task(domain.TaskCodeGenerator, "tienda naranja"))

		require.True(t, res.Success)
		assert.True(t, res.Fallback)
		index, ok := fileByName(res.Files, "index.html")
		require.True(t, ok)
		assert.Contains(t, index.Content, "<title>tienda naranja</title>")
		styles, _ := fileByName(res.Files, "styles.css")
		assert.Contains(t, styles.Content, "#EA580C")
	})
}

func TestCodeModifier(t *testing.T) {
	files := []domain.FileItem{
		{ID: "file-1", Name: "styles.css", Path: "/styles.css", Content: "body {}", Language: "css", IsNew: true},
	}

	t.Run("unknown file id", func(t *testing.T) {
		in := task(domain.TaskCodeModifier, "pon el fondo negro")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-404"
		c := testutil.Replies(`{"content": "x"}`)

		res := NewCodeModifier(testDeps(c)).Execute(context.Background(), in)

		assert.False(t, res.Success)
		assert.Equal(t, "No se encontró el archivo con ID file-404", res.Error)
		assert.Empty(t, res.Files)
		assert.Equal(t, files, in.Files)
		assert.Zero(t, c.Calls())
	})

	t.Run("modifies content", func(t *testing.T) {
		in := task(domain.TaskCodeModifier, "pon el fondo negro")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"

		res := NewCodeModifier(testDeps(testutil.Replies(`{"content": "body { background: #000; }", "summary": "Fondo negro"}`))).
			Execute(context.Background(), in)

		require.True(t, res.Success)
		require.Len(t, res.Files, 1)
		f := res.Files[0]
		assert.Equal(t, "file-1", f.ID)
		assert.Equal(t, "/styles.css", f.Path)
		assert.Equal(t, "body { background: #000; }", f.Content)
		assert.True(t, f.IsModified)
		assert.False(t, f.IsNew)
		assert.Equal(t, "Fondo negro", res.Message)
		assert.Equal(t, "body {}", in.Files[0].Content)
	})

	t.Run("code block without json", func(t *testing.T) {
		in := task(domain.TaskCodeModifier, "pon el texto rojo")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"

		res := NewCodeModifier(testDeps(testutil.Replies("Listo:\n```css\nbody { color: red; }\n```"))).
			Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.Equal(t, "body { color: red; }\n", res.Files[0].Content)
		assert.NotEmpty(t, res.Warnings)
	})

	t.Run("gateway failure is not papered over", func(t *testing.T) {
		in := task(domain.TaskCodeModifier, "pon el texto rojo")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"

		res := NewCodeModifier(testDeps(testutil.Failing("upstream 500"))).Execute(context.Background(), in)

		assert.False(t, res.Success)
		assert.Equal(t, "El modelo de lenguaje devolvió un error.", res.Error)
		assert.NotContains(t, res.Error, "upstream 500")
		assert.Empty(t, res.Files)
	})
}

func TestCodeCorrector(t *testing.T) {
	js := "var total = 0;\nif (total == 0) {\n  console.log(total);\n}\n"
	files := []domain.FileItem{{ID: "file-1", Name: "script.js", Path: "/script.js", Content: js}}

	t.Run("local fallback stages", func(t *testing.T) {
		in := task(domain.TaskCodeCorrector, "corrige errores")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"
		var reports []domain.StageReport
		in.OnStage = func(r domain.StageReport) { reports = append(reports, r) }

		res := NewCodeCorrector(testDeps(testutil.Failing("down"))).Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.True(t, res.Fallback)
		assert.Equal(t, "javascript", res.Language)
		assert.Equal(t, []string{
			"analyze idle", "detect idle", "generate idle",
			"analyze working", "analyze success",
			"detect working", "detect warning",
			"generate working", "generate warning",
		}, stageSequence(reports))
		assert.Equal(t, "Analizando el código", reports[3].Message)
		require.Len(t, res.Stages, 3)
		assert.Equal(t, domain.StageSuccess, res.Stages[0].Status)
		assert.Contains(t, res.Stages[0].Message, "4 líneas")
		assert.Equal(t, domain.StageWarning, res.Stages[1].Status)
		assert.Equal(t, domain.StageWarning, res.Stages[2].Status)

		require.Len(t, res.Changes, 2)
		for _, c := range res.Changes {
			assert.NotEmpty(t, c.ID)
			assert.True(t, c.Type.IsValid())
		}
		assert.Contains(t, res.CorrectedCode, "let total = 0;")
		assert.Contains(t, res.CorrectedCode, "total === 0")
		assert.Equal(t, js, in.Files[0].Content)
	})

	t.Run("model stages", func(t *testing.T) {
		in := task(domain.TaskCodeCorrector, "corrige errores")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"
		c := testutil.Replies(
			`{"issues": [{"line": 1, "severity": "warning", "message": "var"}, {"line": 2, "message": ""}]}`,
			`{"correctedCode": "let total = 0;", "changes": [{"lineNumber": 1, "originalCode": "var", "correctedCode": "let", "reason": "scope", "type": "weird", "confidence": 3}]}`,
		)

		res := NewCodeCorrector(testDeps(c)).Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.False(t, res.Fallback)
		assert.Equal(t, 2, c.Calls())
		for _, s := range res.Stages {
			assert.Equal(t, domain.StageSuccess, s.Status, s.Name)
		}
		require.Len(t, res.Changes, 1)
		assert.Equal(t, domain.CorrectionFix, res.Changes[0].Type)
		assert.InDelta(t, 1.0, res.Changes[0].Confidence, 0.0001)
		assert.Equal(t, "let total = 0;", res.CorrectedCode)
	})

	t.Run("issues without a local fix", func(t *testing.T) {
		css := ".card { color: red !important; }"
		in := task(domain.TaskCodeCorrector, "corrige el estilo")
		in.Files = []domain.FileItem{{ID: "file-2", Name: "styles.css", Path: "/styles.css", Content: css}}
		in.TargetFileID = "file-2"
		var reports []domain.StageReport
		in.OnStage = func(r domain.StageReport) { reports = append(reports, r) }

		res := NewCodeCorrector(testDeps(testutil.Failing("down"))).Execute(context.Background(), in)

		require.True(t, res.Success)
		assert.True(t, res.Fallback)
		assert.Empty(t, res.Changes)
		assert.Equal(t, css, res.CorrectedCode)
		require.Len(t, res.Stages, 3)
		assert.Equal(t, domain.StageError, res.Stages[2].Status)
		assert.Contains(t, res.Stages[2].Message, "No se pudieron generar correcciones")

		seq := stageSequence(reports)
		require.NotEmpty(t, seq)
		assert.Equal(t, "generate error", seq[len(seq)-1])
		assert.Equal(t, "generate working", seq[len(seq)-2])
	})

	t.Run("unknown file id", func(t *testing.T) {
		in := task(domain.TaskCodeCorrector, "corrige")
		var reports []domain.StageReport
		in.OnStage = func(r domain.StageReport) { reports = append(reports, r) }

		res := NewCodeCorrector(testDeps(testutil.Failing("unused"))).Execute(context.Background(), in)

		assert.False(t, res.Success)
		assert.True(t, strings.HasPrefix(res.Error, "No se encontró el archivo"))
		assert.Equal(t, []string{"analyze idle", "detect idle", "generate idle", "analyze error"}, stageSequence(reports))
		assert.Equal(t, res.Error, reports[3].Message)
	})

	t.Run("nil stage callback", func(t *testing.T) {
		in := task(domain.TaskCodeCorrector, "corrige errores")
		in.Files = domain.CloneFiles(files)
		in.TargetFileID = "file-1"

		assert.NotPanics(t, func() {
			NewCodeCorrector(testDeps(testutil.Failing("down"))).Execute(context.Background(), in)
		})
	})
}

func stageSequence(reports []domain.StageReport) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.Name + " " + string(r.Status)
	}
	return out
}

func TestDetectIssuesAndApplyChanges(t *testing.T) {
	page := "<html>\n<body>\n  <img src=\"a.png\">  \n</body>\n</html>"
	issues := DetectIssues(page, "html")

	messages := make([]string, len(issues))
	for i, is := range issues {
		messages[i] = is.Message
	}
	assert.Contains(t, messages, doctypeMessage)
	assert.Contains(t, messages, "Añade texto alternativo (alt) a la imagen.")

	changes := localFixes(page, "html", issues)
	fixed, applied := ApplyChanges(page, changes)
	assert.Equal(t, len(changes), applied)
	assert.True(t, strings.HasPrefix(fixed, "<!DOCTYPE html>\n"))
	assert.Contains(t, fixed, `<html lang="es">`)
	assert.Contains(t, fixed, `<img alt="" src="a.png">`+"\n")

	out, n := ApplyChanges("a\nb", []domain.CorrectionChange{
		{LineNumber: 9, OriginalCode: "b", CorrectedCode: "B"},
		{LineNumber: 1, OriginalCode: "zzz", CorrectedCode: "y"},
	})
	assert.Equal(t, "a\nB", out)
	assert.Equal(t, 1, n)
}

func TestFileObserver(t *testing.T) {
	files := []domain.FileItem{
		{ID: "file-1", Name: "index.html", Path: "/index.html", Language: "html",
			Content: "<html><head></head><body><img src=\"img/logo.png\"><a href=\"https://x.io\">x</a><a href=\"#top\">top</a></body></html>"},
		{ID: "file-2", Name: "styles.css", Path: "/styles.css", Content: "body {}"},
		{ID: "file-3", Name: "script.js", Path: "/script.js", Content: " "},
	}
	in := task(domain.TaskFileObserver, "verifica")
	in.Files = domain.CloneFiles(files)

	res := NewFileObserver(testDeps(nil)).Execute(context.Background(), in)

	require.True(t, res.Success)
	require.Len(t, res.Files, 1)
	index := res.Files[0]
	assert.Equal(t, "file-1", index.ID)
	assert.True(t, index.IsModified)
	assert.Contains(t, index.Content, `href="styles.css"`)
	assert.Contains(t, index.Content, `src="script.js"`)

	report := strings.Join(res.Warnings, "\n")
	assert.Contains(t, report, "/script.js está vacío")
	assert.Contains(t, report, "img/logo.png")
	assert.NotContains(t, report, "x.io")
	assert.Equal(t, files, in.Files)

	clean := NewFileObserver(testDeps(nil)).Execute(context.Background(), &Input{Files: res.Files[:1]})
	assert.Empty(t, clean.Files)
}
