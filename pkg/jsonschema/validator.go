// Package jsonschema wraps JSON Schema compilation and validation for the
// input files volley accepts (collection definitions and request-body data
// sets, in JSON or YAML form).
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors collects every schema violation found in a document.
type ValidationErrors []error

// Error implements the error interface for ValidationErrors.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled JSON Schema ready for repeated validation.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile parses and compiles a schema definition. The name appears in
// error messages and must be unique per compiler invocation.
func Compile(name, definition string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	resource := name + ".schema.json"

	if err := compiler.AddResource(resource, strings.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("invalid %s schema: %w", name, err)
	}

	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("invalid %s schema: %w", name, err)
	}

	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile is Compile for schemas embedded in the binary; it panics on
// a compile failure since that is a programming error, not user input.
func MustCompile(name, definition string) *Schema {
	s, err := Compile(name, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded document against the schema. The document may
// come from encoding/json or yaml.v3; it is normalized through a JSON
// round-trip so both decoders' type shapes are accepted. Returns nil when
// the document is valid, otherwise a ValidationErrors listing every
// violation.
func (s *Schema) Validate(doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: document is not JSON-representable: %w", s.name, err)
	}
	return s.ValidateBytes(raw)
}

// ValidateBytes checks a raw JSON document against the schema.
func (s *Schema) ValidateBytes(raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: invalid JSON: %w", s.name, err)
	}

	if err := s.compiled.Validate(doc); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			if flat := flatten(verr); len(flat) > 0 {
				return flat
			}
		}
		return ValidationErrors{err}
	}
	return nil
}

// flatten walks a jsonschema.ValidationError tree and returns the leaf
// causes, which carry the messages users can act on.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return ValidationErrors{fmt.Errorf("at %s: %s", loc, err.Message)}
	}

	var errors ValidationErrors
	for _, cause := range err.Causes {
		errors = append(errors, flatten(cause)...)
	}
	return errors
}
