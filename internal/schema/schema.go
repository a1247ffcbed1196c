// Package schema describes the editable fields of a record type and converts
// between records, form drafts, and request bodies.
package schema

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

// Kind is the value kind of a field.
type Kind int

const (
	String Kind = iota
	Integer
	Number
	Date
	Enum
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Number:
		return "number"
	case Date:
		return "date"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one editable field. Name is the JSON key and column name.
//
// Rule is an extra go-playground/validator tag applied after the kind's own
// checks, e.g. "min=2,max=100" for strings or "gte=0,lte=120" for numbers.
type Field struct {
	Name       string
	Label      string
	Kind       Kind
	Required   bool
	Rule       string
	Options    []string
	Default    string
	Filterable bool
	Searchable bool
}

// Draft is the in-progress edit text of a record, keyed by field name.
type Draft map[string]string

// Clone returns a copy of d.
func (d Draft) Clone() Draft {
	if d == nil {
		return Draft{}
	}
	return maps.Clone(d)
}

// Body is a request payload built from a validated Draft.
type Body map[string]any

// Schema is the field descriptor of one record type.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
}

var validName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// New builds a Schema. It panics on an invalid or duplicate field name, or an
// enum field without options; schemas are package-level declarations.
func New(name string, fields ...Field) *Schema {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if !validName.MatchString(f.Name) {
			panic(fmt.Sprintf("schema %s: invalid field name %q", name, f.Name))
		}
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", name, f.Name))
		}
		if f.Kind == Enum && len(f.Options) == 0 {
			panic(fmt.Sprintf("schema %s: enum field %q has no options", name, f.Name))
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		f.Options = slices.Clone(f.Options)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Name returns the record type name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// RequiredFields returns the names of required fields.
func (s *Schema) RequiredFields() []string {
	return s.collect(func(f Field) bool { return f.Required })
}

// FilterKeys returns the names of fields usable as list filters.
func (s *Schema) FilterKeys() []string {
	return s.collect(func(f Field) bool { return f.Filterable })
}

// SearchKeys returns the names of fields matched by free-text search.
func (s *Schema) SearchKeys() []string {
	return s.collect(func(f Field) bool { return f.Searchable })
}

// Columns returns every field name.
func (s *Schema) Columns() []string {
	return s.collect(func(Field) bool { return true })
}

// EnumOptions returns the options of every enum field.
func (s *Schema) EnumOptions() map[string][]string {
	out := make(map[string][]string)
	for _, f := range s.fields {
		if f.Kind == Enum {
			out[f.Name] = slices.Clone(f.Options)
		}
	}
	return out
}

// Headers returns the field labels in declaration order.
func (s *Schema) Headers() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Label
	}
	return out
}

// Defaults returns a Draft holding each field's default text.
func (s *Schema) Defaults() Draft {
	d := make(Draft, len(s.fields))
	for _, f := range s.fields {
		d[f.Name] = f.Default
	}
	return d
}

// Row returns the draft values in field order.
func (s *Schema) Row(d Draft) []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = d[f.Name]
	}
	return out
}

func (s *Schema) collect(keep func(Field) bool) []string {
	var out []string
	for _, f := range s.fields {
		if keep(f) {
			out = append(out, f.Name)
		}
	}
	return out
}
