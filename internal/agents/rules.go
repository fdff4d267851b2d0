package agents

import (
	"regexp"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Issue is one problem found in a file.
type Issue struct {
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// lineRule is a local heuristic over single lines.
type lineRule struct {
	languages []string
	severity  string
	message   string
	kind      domain.CorrectionType
	match     func(line string) bool
	// fix returns the corrected line; nil means report only.
	fix func(line string) string
}

func (r lineRule) appliesTo(language string) bool {
	if len(r.languages) == 0 {
		return true
	}
	for _, l := range r.languages {
		if l == language {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // compiled once
var (
	varDecl     = regexp.MustCompile(`\bvar\s+`)
	looseEqual  = regexp.MustCompile(`([^=!<>])(==|!=)([^=])`)
	imgNoAlt    = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	htmlNoLang  = regexp.MustCompile(`(?i)<html\s*>`)
	consoleLog  = regexp.MustCompile(`\bconsole\.log\(`)
	importantKw = regexp.MustCompile(`!important`)
)

// lineRules are the local detection and fix heuristics.
//
//nolint:gochecknoglobals // read-only rule table
var lineRules = []lineRule{
	{
		languages: []string{"javascript", "typescript"},
		severity:  SeverityWarning,
		message:   "Usa let o const en lugar de var.",
		kind:      domain.CorrectionImprovement,
		match:     varDecl.MatchString,
		fix:       func(l string) string { return varDecl.ReplaceAllString(l, "let ") },
	},
	{
		languages: []string{"javascript", "typescript"},
		severity:  SeverityWarning,
		message:   "Usa comparaciones estrictas (=== y !==).",
		kind:      domain.CorrectionFix,
		match:     looseEqual.MatchString,
		fix:       func(l string) string { return looseEqual.ReplaceAllString(l, "$1$2=$3") },
	},
	{
		languages: []string{"javascript", "typescript"},
		severity:  SeverityInfo,
		message:   "Elimina console.log antes de publicar.",
		kind:      domain.CorrectionOptimization,
		match:     consoleLog.MatchString,
	},
	{
		languages: []string{"html"},
		severity:  SeverityWarning,
		message:   "Añade texto alternativo (alt) a la imagen.",
		kind:      domain.CorrectionFix,
		match: func(l string) bool {
			for _, tag := range imgNoAlt.FindAllString(l, -1) {
				if !strings.Contains(strings.ToLower(tag), "alt=") {
					return true
				}
			}
			return false
		},
		fix: func(l string) string {
			return imgNoAlt.ReplaceAllStringFunc(l, func(tag string) string {
				if strings.Contains(strings.ToLower(tag), "alt=") {
					return tag
				}
				return tag[:4] + ` alt=""` + tag[4:]
			})
		},
	},
	{
		languages: []string{"html"},
		severity:  SeverityInfo,
		message:   "Declara el idioma del documento en <html>.",
		kind:      domain.CorrectionImprovement,
		match:     htmlNoLang.MatchString,
		fix:       func(l string) string { return htmlNoLang.ReplaceAllString(l, `<html lang="es">`) },
	},
	{
		languages: []string{"css"},
		severity:  SeverityInfo,
		message:   "Evita !important; aumenta la especificidad del selector.",
		kind:      domain.CorrectionImprovement,
		match:     importantKw.MatchString,
	},
	{
		severity: SeverityInfo,
		message:  "Elimina los espacios al final de la línea.",
		kind:     domain.CorrectionOptimization,
		match: func(l string) bool {
			return l != strings.TrimRight(l, " \t")
		},
		fix: func(l string) string { return strings.TrimRight(l, " \t") },
	},
}

// doctypeMessage is reported when an HTML document lacks a doctype.
const doctypeMessage = "Falta la declaración <!DOCTYPE html>."

func missingDoctype(content, language string) bool {
	if language != "html" || strings.TrimSpace(content) == "" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "<!doctype")
}

// DetectIssues runs the local heuristics over content.
func DetectIssues(content, language string) []Issue {
	var issues []Issue
	if missingDoctype(content, language) {
		issues = append(issues, Issue{Line: 1, Severity: SeverityWarning, Message: doctypeMessage})
	}
	for i, line := range strings.Split(content, "\n") {
		for _, r := range lineRules {
			if r.appliesTo(language) && r.match(line) {
				issues = append(issues, Issue{Line: i + 1, Severity: r.severity, Message: r.message})
			}
		}
	}
	return issues
}

// localFixes proposes changes for the lines named by issues. Lines no rule
// can fix are skipped.
func localFixes(content, language string, issues []Issue) []domain.CorrectionChange {
	lines := strings.Split(content, "\n")
	wanted := make(map[int]bool, len(issues))
	doctype := false
	for _, is := range issues {
		if is.Line >= 1 && is.Line <= len(lines) {
			wanted[is.Line] = true
		}
		if is.Message == doctypeMessage {
			doctype = true
		}
	}

	var changes []domain.CorrectionChange
	if doctype && missingDoctype(content, language) {
		changes = append(changes, domain.CorrectionChange{
			LineNumber:    1,
			OriginalCode:  lines[0],
			CorrectedCode: "<!DOCTYPE html>\n" + lines[0],
			Reason:        doctypeMessage,
			Type:          domain.CorrectionFix,
			Confidence:    0.9,
		})
	}
	for n := 1; n <= len(lines); n++ {
		if !wanted[n] {
			continue
		}
		orig := lines[n-1]
		fixed := orig
		var reasons []string
		kind := domain.CorrectionImprovement
		for _, r := range lineRules {
			if r.fix == nil || !r.appliesTo(language) || !r.match(fixed) {
				continue
			}
			fixed = r.fix(fixed)
			reasons = append(reasons, r.message)
			if r.kind == domain.CorrectionFix {
				kind = domain.CorrectionFix
			}
		}
		if fixed == orig {
			continue
		}
		changes = append(changes, domain.CorrectionChange{
			LineNumber:    n,
			OriginalCode:  orig,
			CorrectedCode: fixed,
			Reason:        strings.Join(reasons, " "),
			Type:          kind,
			Confidence:    0.6,
		})
	}
	return changes
}

// ApplyChanges applies changes to content and reports how many applied.
// A change applies at its line when the line contains OriginalCode, else at
// the first occurrence anywhere. Changes that match nothing are skipped.
func ApplyChanges(content string, changes []domain.CorrectionChange) (string, int) {
	applied := 0
	for _, c := range changes {
		if c.OriginalCode == "" || c.OriginalCode == c.CorrectedCode {
			continue
		}
		lines := strings.Split(content, "\n")
		if c.LineNumber >= 1 && c.LineNumber <= len(lines) && strings.Contains(lines[c.LineNumber-1], c.OriginalCode) {
			lines[c.LineNumber-1] = strings.Replace(lines[c.LineNumber-1], c.OriginalCode, c.CorrectedCode, 1)
			content = strings.Join(lines, "\n")
			applied++
			continue
		}
		if strings.Contains(content, c.OriginalCode) {
			content = strings.Replace(content, c.OriginalCode, c.CorrectedCode, 1)
			applied++
		}
	}
	return content, applied
}
