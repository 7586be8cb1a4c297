// Package validation checks decoded JSON documents against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// JSONSchema is a typed object schema for inbound documents. It marshals to
// a standard JSON-schema document.
type JSONSchema struct {
	Type                 string              `json:"type,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one violation. Code is the gojsonschema error type,
// e.g. "required", "enum" or "string_lte".
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled schema and is safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// Compile accepts a JSONSchema or any value that marshals to a schema
// document, such as map[string]interface{}.
func Compile(schema interface{}) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// MustCompile is Compile for schemas fixed at build time.
func MustCompile(schema interface{}) *Validator {
	v, err := Compile(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks document against the schema. String lengths are counted
// in characters.
func (v *Validator) Validate(document interface{}) *ValidationResult {
	res, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   rootField,
			Message: err.Error(),
			Code:    "unreadable_document",
		}}}
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, convert(e))
	}
	return out
}

// convert names the offending property for errors gojsonschema reports on
// the parent object.
func convert(e gojsonschema.ResultError) ValidationError {
	field := e.Field()
	switch e.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := e.Details()["property"].(string); ok {
			field = joinField(field, prop)
		}
	}
	return ValidationError{Field: field, Message: e.Description(), Code: e.Type()}
}

func joinField(parent, child string) string {
	if parent == "" || parent == rootField {
		return child
	}
	return parent + "." + child
}

// Fields returns the distinct top-level field names that failed.
func (vr *ValidationResult) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, err := range vr.Errors {
		name := err.Field
		if i := strings.IndexAny(name, ".["); i > 0 {
			name = name[:i]
		}
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return fields
}

// GetErrorMessages returns "field: message" for every violation.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
