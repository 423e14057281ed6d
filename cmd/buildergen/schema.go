package main

import (
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Schema
// ─────────────────────────────────────────────────────────────────────────────

// Schema is the decoded form of models/schema.yaml.
type Schema struct {
	Package  string   `yaml:"package"`
	Entities []Entity `yaml:"entities"`
}

// Entity is one immutable entity shape with its ordered field list.
type Entity struct {
	Name   string      `yaml:"name"`
	Doc    string      `yaml:"doc"`
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec describes a single field. Name is the unexported struct field and
// wire name, Go is the exported accessor/setter suffix.
type FieldSpec struct {
	Name string `yaml:"name"`
	Go   string `yaml:"go"`
	Type string `yaml:"type"`
}

var (
	// ErrInvalidSchema is returned for every schema validation failure.
	ErrInvalidSchema = errors.New("buildergen: invalid schema")
)

// formatters maps the supported field types to the rendering helper used by
// the generated String method.
var formatters = map[string]string{
	"int":     "formatInt",
	"string":  "formatString",
	"float64": "formatFloat",
}

// equalers maps field types that need more than == in the generated Equal
// method to their comparison helper.
var equalers = map[string]string{
	"float64": "equalFloat",
}

// Method names every entity already defines.
var reservedMethods = map[string]bool{
	"String":        true,
	"Equal":         true,
	"ToBuilder":     true,
	"MarshalJSON":   true,
	"UnmarshalJSON": true,
}

// LoadSchema reads and validates a schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("buildergen: read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes YAML schema bytes and validates the result.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("buildergen: decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every entity and field produces compilable code.
func (s *Schema) Validate() error {
	if !token.IsIdentifier(s.Package) {
		return fmt.Errorf("%w: package %q is not an identifier", ErrInvalidSchema, s.Package)
	}
	if len(s.Entities) == 0 {
		return fmt.Errorf("%w: no entities", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("%w: entity with empty name", ErrInvalidSchema)
		}
		if !token.IsIdentifier(e.Name) || !token.IsExported(e.Name) {
			return fmt.Errorf("%w: entity %q must be an exported identifier", ErrInvalidSchema, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate entity %q", ErrInvalidSchema, e.Name)
		}
		seen[e.Name] = true

		if err := e.validateFields(); err != nil {
			return err
		}
	}
	return nil
}

func (e Entity) validateFields() error {
	if len(e.Fields) == 0 {
		return fmt.Errorf("%w: entity %s has no fields", ErrInvalidSchema, e.Name)
	}

	names := make(map[string]bool, len(e.Fields))
	goNames := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		switch {
		case !token.IsIdentifier(f.Name) || token.IsExported(f.Name):
			return fmt.Errorf("%w: %s.%s must be an unexported identifier", ErrInvalidSchema, e.Name, f.Name)
		case f.Name == "b":
			// Setters use b as the receiver name.
			return fmt.Errorf("%w: %s.%s shadows the builder receiver", ErrInvalidSchema, e.Name, f.Name)
		case !token.IsIdentifier(f.Go) || !token.IsExported(f.Go):
			return fmt.Errorf("%w: %s.%s has non-exported go name %q", ErrInvalidSchema, e.Name, f.Name, f.Go)
		case reservedMethods[f.Go]:
			return fmt.Errorf("%w: %s.%s go name %q collides with a generated method", ErrInvalidSchema, e.Name, f.Name, f.Go)
		case formatters[f.Type] == "":
			return fmt.Errorf("%w: %s.%s has unsupported type %q", ErrInvalidSchema, e.Name, f.Name, f.Type)
		case names[f.Name]:
			return fmt.Errorf("%w: %s has duplicate field %q", ErrInvalidSchema, e.Name, f.Name)
		case goNames[f.Go]:
			return fmt.Errorf("%w: %s has duplicate go name %q", ErrInvalidSchema, e.Name, f.Go)
		}
		names[f.Name] = true
		goNames[f.Go] = true
	}
	return nil
}
