// Package extract pulls a JSON object out of free-form model replies.
//
// Model output is treated as adversarial input: the payload may be wrapped
// in Markdown fences, surrounded by prose, or carry comments and trailing
// commas. The extractor repairs only those malformations and otherwise
// fails with an *ExtractionError. It never returns partial data.
package extract

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrz1836/forja/internal/errors"
)

// fencePattern matches Markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_-]*)[^\\n`]*\\n?(.*?)```") //nolint:gochecknoglobals // compiled once

// ExtractionError reports model text that held no parseable JSON object.
// It matches errors.ErrExtraction.
type ExtractionError struct {
	// Raw is the original model text, kept for diagnostics.
	Raw string
	// Reason describes what failed.
	Reason string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", errors.ErrExtraction.Error(), e.Reason)
}

// Is reports whether target is errors.ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == errors.ErrExtraction //nolint:errorlint // sentinel identity
}

// Unwrap returns the underlying parse error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Object extracts and parses the JSON object in text.
func Object(text string) (map[string]any, error) {
	return Decode[map[string]any](text)
}

// Decode extracts the JSON object in text and decodes it into T.
// Syntax failures return *ExtractionError. A well-formed payload whose
// shape does not fit T returns an error wrapping errors.ErrValidation.
func Decode[T any](text string) (T, error) {
	var zero T

	candidates := Candidates(text)
	if len(candidates) == 0 {
		return zero, &ExtractionError{Raw: text, Reason: "no JSON object found"}
	}

	var firstErr error
	for _, c := range candidates {
		var out T
		err := json.Unmarshal([]byte(Clean(c)), &out)
		if err == nil {
			return out, nil
		}
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			return zero, errors.Wrapf(errors.ErrValidation, "field %q: expected %s, got %s",
				typeErr.Field, typeErr.Type, typeErr.Value)
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return zero, &ExtractionError{Raw: text, Reason: firstErr.Error(), Err: firstErr}
}

// Candidates returns the spans of text that may hold the payload, most
// preferred first: a ```json fence, then a bare fence whose body starts
// with '{', then the greedy span from the first '{' to the last '}'.
func Candidates(text string) []string {
	var (
		tagged, bare []string
		seen         = make(map[string]bool)
	)
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		lang, body := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		span, ok := objectSpan(body)
		if !ok {
			continue
		}
		switch {
		case lang == "json" || lang == "jsonc" || lang == "json5":
			tagged = append(tagged, span)
		case lang == "" && strings.HasPrefix(body, "{"):
			bare = append(bare, span)
		}
	}

	out := make([]string, 0, len(tagged)+len(bare)+1)
	for _, c := range append(tagged, bare...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if span, ok := objectSpan(text); ok && !seen[span] {
		out = append(out, span)
	}
	return out
}

// objectSpan returns s from its first '{' to its last '}'.
func objectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
