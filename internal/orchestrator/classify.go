package orchestrator

import (
	"github.com/mrz1836/forja/internal/textutil"
)

// Intent is the top-level kind of an instruction. It selects the flow.
type Intent string

// Intents in classification priority order.
const (
	IntentProject    Intent = "project"
	IntentCorrection Intent = "correction"
	IntentStyle      Intent = "style"
	IntentModify     Intent = "modify"
	IntentGenerate   Intent = "generate"
)

// Intents lists every intent in priority order.
func Intents() []Intent {
	return []Intent{IntentProject, IntentCorrection, IntentStyle, IntentModify, IntentGenerate}
}

// IsValid checks the intent.
func (i Intent) IsValid() bool {
	for _, known := range Intents() {
		if i == known {
			return true
		}
	}
	return false
}

// Classifier picks the intent of an instruction.
type Classifier interface {
	Classify(in Instruction) Intent
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(in Instruction) Intent

// Classify implements Classifier.
func (f ClassifierFunc) Classify(in Instruction) Intent {
	return f(in)
}

// Rule maps keywords to an intent. Rules are evaluated in order.
type Rule struct {
	Name   string
	Intent Intent
	// Keywords match accent- and case-insensitively as substrings.
	// An empty list matches everything.
	Keywords []string
	// NeedsTarget skips the rule when the instruction has no target file.
	NeedsTarget bool
}

// DefaultRules returns the built-in classification rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   string(IntentProject),
			Intent: IntentProject,
			Keywords: []string{
				"crea un sitio", "crear un sitio", "crea una web", "crea una página", "crea una landing",
				"sitio web", "página web", "nuevo proyecto", "nuevo sitio", "website", "mockup",
			},
		},
		{
			Name:   string(IntentCorrection),
			Intent: IntentCorrection,
			Keywords: []string{
				"corrige", "corregir", "arregla", "arreglar", "depura", "bug", "fix",
				"hay un error", "hay errores", "tiene un error", "tiene errores", "da error", "no funciona",
			},
			NeedsTarget: true,
		},
		{
			Name:     string(IntentStyle),
			Intent:   IntentStyle,
			Keywords: []string{"color", "colores", "paleta", "palette", "estilo visual", "tipografía", "fondo"},
		},
		{
			Name:   string(IntentModify),
			Intent: IntentModify,
			Keywords: []string{
				"modifica", "cambia", "agrega", "añade", "elimina", "quita", "actualiza", "reemplaza", "edita", "mueve",
			},
			NeedsTarget: true,
		},
		{
			Name:   string(IntentGenerate),
			Intent: IntentGenerate,
		},
	}
}

// KeywordClassifier classifies with an ordered rule list.
type KeywordClassifier struct {
	rules []Rule
}

// NewKeywordClassifier builds a classifier from DefaultRules. overrides
// replaces the keywords of the rule with the same name.
func NewKeywordClassifier(overrides map[string][]string) *KeywordClassifier {
	rules := DefaultRules()
	for i := range rules {
		if kw, ok := overrides[rules[i].Name]; ok && len(kw) > 0 {
			rules[i].Keywords = append([]string(nil), kw...)
		}
	}
	return &KeywordClassifier{rules: rules}
}

// NewRuleClassifier builds a classifier from explicit rules.
func NewRuleClassifier(rules []Rule) *KeywordClassifier {
	return &KeywordClassifier{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the rule list.
func (c *KeywordClassifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Classify returns the intent of the first matching rule, or
// IntentGenerate when none matches.
func (c *KeywordClassifier) Classify(in Instruction) Intent {
	text := textutil.Fold(in.Text)
	for _, r := range c.rules {
		if r.NeedsTarget && in.TargetFileID == "" {
			continue
		}
		if len(r.Keywords) == 0 || textutil.ContainsAny(text, r.Keywords) {
			return r.Intent
		}
	}
	return IntentGenerate
}

var (
	_ Classifier = (*KeywordClassifier)(nil)
	_ Classifier = ClassifierFunc(nil)
)
