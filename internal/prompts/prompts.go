// Package prompts provides the model prompts of every agent behavior.
// Prompts are text/template files embedded at compile time; files under
// templates/common are shared partials named "common/<file>".
package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
)

// Render executes a prompt template with the provided data.
// The data type must match the prompt; see ValidateData.
//
// Example:
//
//	prompt, err := prompts.Render(prompts.Planner, prompts.PlannerData{
//	    Instruction: "crea una landing para una cafetería",
//	})
func Render(id PromptID, data any) (string, error) {
	if err := ValidateData(id, data); err != nil {
		return "", err
	}

	tmpl, err := lookup(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}
	return buf.String(), nil
}

// List returns all registered prompt IDs in sorted order.
func List() []PromptID {
	lib, err := loadLibrary()
	if err != nil {
		return nil
	}
	ids := make([]PromptID, 0, len(lib))
	for id := range lib {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Exists checks if a prompt ID is registered.
func Exists(id PromptID) bool {
	_, err := lookup(id)
	return err == nil
}

// GetTemplate returns the raw template source for a prompt ID.
func GetTemplate(id PromptID) (string, error) {
	if !Exists(id) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	src, err := templateFS.ReadFile("templates/" + string(id) + ".tmpl")
	return string(src), err
}

// ValidateData checks that data has the type the prompt expects.
func ValidateData(id PromptID, data any) error {
	var ok bool
	switch id {
	case Planner:
		_, ok = data.(PlannerData)
	case CodeGenerator:
		_, ok = data.(CodeGeneratorData)
	case DesignProposal, DesignEnhance, DesignColor, DesignComponents:
		_, ok = data.(DesignData)
	case CodeModifier:
		_, ok = data.(CodeModifierData)
	case CorrectorDetect:
		_, ok = data.(CorrectorDetectData)
	case CorrectorGenerate:
		_, ok = data.(CorrectorGenerateData)
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %s got %T", ErrInvalidData, id, data)
	}
	return nil
}
