package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/forja/internal/domain"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier(nil)

	tests := []struct {
		name string
		in   Instruction
		want Intent
	}{
		{"project", Instruction{Text: "Crea un sitio web para un restaurante azul"}, IntentProject},
		{"project beats correction", Instruction{Text: "crea un sitio web y corrige errores", TargetFileID: "f"}, IntentProject},
		{"correction with target", Instruction{Text: "Corrige el error del menú", TargetFileID: "f"}, IntentCorrection},
		{"correction without target falls through", Instruction{Text: "corrige el error"}, IntentGenerate},
		{"error phrase with target", Instruction{Text: "hay un error en el menú", TargetFileID: "f"}, IntentCorrection},
		{"broken feature with target", Instruction{Text: "el formulario no funciona", TargetFileID: "f"}, IntentCorrection},
		{"error as a noun is a modification", Instruction{Text: "cambia el mensaje de error en index.html", TargetFileID: "f"}, IntentModify},
		{"error text to add is a modification", Instruction{Text: "añade un texto de error al formulario", TargetFileID: "f"}, IntentModify},
		{"style", Instruction{Text: "usa una paleta más cálida"}, IntentStyle},
		{"style beats modify", Instruction{Text: "cambia los colores", TargetFileID: "f"}, IntentStyle},
		{"modify with target", Instruction{Text: "Añade un botón de contacto", TargetFileID: "f"}, IntentModify},
		{"modify without target falls through", Instruction{Text: "añade un botón de contacto"}, IntentGenerate},
		{"generate", Instruction{Text: "una galería de imágenes"}, IntentGenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.in))
		})
	}
}

func TestKeywordClassifier_Overrides(t *testing.T) {
	c := NewKeywordClassifier(map[string][]string{
		"project": {"nueva web"},
		"unknown": {"ignored"},
		"style":   {},
	})

	assert.Equal(t, IntentProject, c.Classify(Instruction{Text: "quiero una NUEVA WEB"}))
	assert.Equal(t, IntentGenerate, c.Classify(Instruction{Text: "crea un sitio"}))
	assert.Equal(t, IntentStyle, c.Classify(Instruction{Text: "otra paleta"}))

	rules := c.Rules()
	rules[0].Keywords[0] = "mutated"
	assert.Equal(t, "nueva web", c.Rules()[0].Keywords[0])
}

func TestNewRuleClassifier(t *testing.T) {
	c := NewRuleClassifier([]Rule{{Name: "only", Intent: IntentStyle, Keywords: []string{"verde"}}})
	assert.Equal(t, IntentStyle, c.Classify(Instruction{Text: "todo verde"}))
	assert.Equal(t, IntentGenerate, c.Classify(Instruction{Text: "rojo"}))
}

func TestFlow(t *testing.T) {
	assert.Equal(t, []domain.TaskType{
		domain.TaskPlanner, domain.TaskDesignArchitect, domain.TaskCodeGenerator, domain.TaskFileObserver,
	}, Flow(IntentProject))
	assert.Equal(t, []domain.TaskType{domain.TaskCodeModifier}, Flow(IntentModify))
	assert.Equal(t, []domain.TaskType{domain.TaskCodeCorrector}, Flow(IntentCorrection))
	for _, i := range Intents() {
		assert.NotEmpty(t, Flow(i), i)
	}
	assert.False(t, Intent("other").IsValid())
}
