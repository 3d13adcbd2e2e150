// Package extraction classifies real estate documents and extracts their typed fields with a chat model.
package extraction

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// FieldKind is the value type of an extracted field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date"
	KindList   FieldKind = "list"
)

// Field is one extractable field of a document type.
type Field struct {
	Name string    `yaml:"name" json:"name"`
	Kind FieldKind `yaml:"kind" json:"kind"`
}

// DocumentType describes a document category and its fields.
type DocumentType struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Fields      []Field `yaml:"fields" json:"fields"`
}

// FieldNames returns the field names in schema order.
func (d DocumentType) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Field looks up a field by name.
func (d DocumentType) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Schema is the set of known document types.
type Schema struct {
	DocumentTypes []DocumentType `yaml:"document_types" json:"document_types"`
}

// LoadSchema parses and validates a YAML schema.
func LoadSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse extraction schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultSchema returns the built-in schema for settlement statements,
// purchase agreements and income verifications.
func DefaultSchema() (*Schema, error) {
	return LoadSchema(defaultSchemaYAML)
}

// Type looks up a document type by name.
func (s *Schema) Type(name string) (DocumentType, bool) {
	for _, t := range s.DocumentTypes {
		if t.Name == name {
			return t, true
		}
	}
	return DocumentType{}, false
}

// TypeNames returns the document type names in schema order.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.DocumentTypes))
	for _, t := range s.DocumentTypes {
		names = append(names, t.Name)
	}
	return names
}

func (s *Schema) validate() error {
	if len(s.DocumentTypes) == 0 {
		return fmt.Errorf("extraction schema defines no document types")
	}

	seenTypes := make(map[string]bool, len(s.DocumentTypes))
	for _, t := range s.DocumentTypes {
		if t.Name == "" {
			return fmt.Errorf("extraction schema has a document type without a name")
		}
		if seenTypes[t.Name] {
			return fmt.Errorf("duplicate document type %q", t.Name)
		}
		seenTypes[t.Name] = true

		if len(t.Fields) == 0 {
			return fmt.Errorf("document type %q has no fields", t.Name)
		}
		seenFields := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if f.Name == "" {
				return fmt.Errorf("document type %q has a field without a name", t.Name)
			}
			if seenFields[f.Name] {
				return fmt.Errorf("document type %q repeats field %q", t.Name, f.Name)
			}
			seenFields[f.Name] = true

			switch f.Kind {
			case KindString, KindNumber, KindDate, KindList:
			default:
				return fmt.Errorf("field %s.%s has unknown kind %q", t.Name, f.Name, f.Kind)
			}
		}
	}
	return nil
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
