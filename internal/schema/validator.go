package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

// ValidationError reports why a candidate object is not a valid form.
// Fields holds one human-readable message per offending leaf.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "form validation failed"
	}
	return "form validation failed: " + strings.Join(e.Fields, "; ")
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(Build())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("form.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("form.json")
	})
	return compiled, compileErr
}

// Validate checks a decoded JSON value against the form schema and converts
// it into a FormRecord. Absent keys become defaults, unknown keys are
// dropped, and type mismatches fail with a *ValidationError naming each
// offending field. The conversion is idempotent: validating an already-valid
// record yields an equal record.
func Validate(input any) (model.FormRecord, error) {
	if input == nil {
		return model.FormRecord{}, &ValidationError{Fields: []string{"form: no object to validate"}}
	}

	// The schema library walks generic JSON values, so normalize typed input
	// (e.g. a FormRecord being re-validated) through a JSON round trip first.
	raw, err := json.Marshal(input)
	if err != nil {
		return model.FormRecord{}, fmt.Errorf("encode candidate form: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return model.FormRecord{}, fmt.Errorf("decode candidate form: %w", err)
	}
	if _, ok := generic.(map[string]any); !ok {
		return model.FormRecord{}, &ValidationError{Fields: []string{"form: expected a JSON object"}}
	}

	s, err := compiledSchema()
	if err != nil {
		return model.FormRecord{}, err
	}
	if err := s.Validate(generic); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return model.FormRecord{}, &ValidationError{Fields: flatten(ve)}
		}
		return model.FormRecord{}, fmt.Errorf("validate form: %w", err)
	}

	var record model.FormRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return model.FormRecord{}, fmt.Errorf("decode form: %w", err)
	}
	return record, nil
}

// flatten walks the validation error tree and collects leaf messages as
// "dotted.path: message" lines.
func flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		return []string{fmt.Sprintf("%s: %s", pointerToPath(ve.InstanceLocation), ve.Message)}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}

// pointerToPath converts a JSON pointer ("/header/date") to the dotted field
// path used everywhere else ("header.date").
func pointerToPath(ptr string) string {
	trimmed := strings.TrimPrefix(ptr, "/")
	if trimmed == "" {
		return "form"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}
