package records

import (
	"fmt"
	"slices"

	"github.com/agentstation/bibsync/pkg/errors"
)

// PropertyType is the remote property type backing a field.
type PropertyType string

// Property types understood by the service codec.
const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertyURL         PropertyType = "url"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyRelation    PropertyType = "relation"
)

// ValueKind returns the value kind stored in a property of type p.
func (p PropertyType) ValueKind() Kind {
	switch p {
	case PropertySelect:
		return KindChoice
	case PropertyMultiSelect:
		return KindMultiChoice
	case PropertyRelation:
		return KindRelation
	default:
		return KindText
	}
}

// Valid reports whether p is a known property type.
func (p PropertyType) Valid() bool {
	switch p {
	case PropertyTitle, PropertyRichText, PropertyURL, PropertySelect, PropertyMultiSelect, PropertyRelation:
		return true
	}
	return false
}

// FieldSpec describes one field of a collection.
type FieldSpec struct {
	Name     string       `json:"name" yaml:"name"`
	Property PropertyType `json:"property" yaml:"property"`
	// Default is applied when an entry does not set the field.
	Default Value `json:"default,omitempty" yaml:"default,omitempty"`
}

// Schema is the field layout of a remote collection.
type Schema struct {
	// TitleField holds the natural key used for fuzzy matching.
	TitleField string `json:"title_field" yaml:"title_field"`
	// KeyField holds the exact match key. For authors it equals TitleField.
	KeyField string `json:"key_field" yaml:"key_field"`
	// AliasField optionally holds ";" separated alternate keys.
	AliasField string      `json:"alias_field,omitempty" yaml:"alias_field,omitempty"`
	Fields     []FieldSpec `json:"fields" yaml:"fields"`
}

// Field returns the FieldSpec called name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i := slices.IndexFunc(s.Fields, func(f FieldSpec) bool { return f.Name == name })
	if i < 0 {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// ApplyDefaults returns a copy of f with schema defaults added for fields
// it does not set.
func (s *Schema) ApplyDefaults(f Fields) Fields {
	out := f.Clone()
	for _, spec := range s.Fields {
		if spec.Default == nil || out.Has(spec.Name) {
			continue
		}
		out.Set(spec.Name, Clone(spec.Default))
	}
	return out
}

// Check verifies that every field in f is declared with a matching kind.
func (s *Schema) Check(f Fields) error {
	for _, field := range f {
		spec, ok := s.Field(field.Name)
		if !ok {
			return errors.NewValidationError(field.Name, field.Value, "field is not part of the collection schema")
		}
		if field.Value != nil && field.Value.Kind() != spec.Property.ValueKind() {
			return errors.NewValidationError(field.Name, field.Value,
				fmt.Sprintf("%s value cannot be stored in a %s property", field.Value.Kind(), spec.Property))
		}
	}
	return nil
}

// Validate checks the schema itself.
func (s *Schema) Validate() error {
	if s.TitleField == "" {
		return errors.NewValidationError("title_field", nil, "is required")
	}
	if s.KeyField == "" {
		return errors.NewValidationError("key_field", nil, "is required")
	}
	seen := make(map[string]bool, len(s.Fields))
	titles := 0
	for _, f := range s.Fields {
		if !f.Property.Valid() {
			return errors.NewValidationError(f.Name, f.Property, "unknown property type")
		}
		if seen[f.Name] {
			return errors.NewValidationError(f.Name, nil, "declared twice")
		}
		seen[f.Name] = true
		if f.Property == PropertyTitle {
			titles++
		}
		if f.Default != nil && f.Default.Kind() != f.Property.ValueKind() {
			return errors.NewValidationError(f.Name, f.Default, "default does not match property type")
		}
	}
	if titles != 1 {
		return errors.NewValidationError("fields", titles, "exactly one title property is required")
	}
	for _, name := range []string{s.TitleField, s.KeyField, s.AliasField} {
		if name != "" && !seen[name] {
			return errors.NewValidationError(name, nil, "referenced field is not declared")
		}
	}
	return nil
}

// Standard field names.
const (
	FieldTitle       = "Title"
	FieldID          = "ID"
	FieldAuthors     = "Authors"
	FieldStatus      = "Status"
	FieldKeywords    = "Keywords"
	FieldFolders     = "Folders"
	FieldFields      = "Fields"
	FieldMethods     = "Methods"
	FieldTopics      = "Topics"
	FieldVenue       = "Venue"
	FieldURL         = "URL"
	FieldName        = "Name"
	FieldAliases     = "Aliases"
	FieldDisciplines = "Disciplines"
	FieldArticles    = "Articles"
)

// ArticleSchema returns the default article layout. With relational set,
// Authors is a relation to the author collection; otherwise a multi select
// of author names.
func ArticleSchema(relational bool) *Schema {
	authors := PropertyMultiSelect
	if relational {
		authors = PropertyRelation
	}
	return &Schema{
		TitleField: FieldTitle,
		KeyField:   FieldID,
		Fields: []FieldSpec{
			{Name: FieldTitle, Property: PropertyTitle},
			{Name: FieldID, Property: PropertyRichText},
			{Name: FieldAuthors, Property: authors},
			{Name: FieldStatus, Property: PropertySelect},
			{Name: FieldKeywords, Property: PropertyMultiSelect},
			{Name: FieldFolders, Property: PropertyMultiSelect},
			{Name: FieldFields, Property: PropertyMultiSelect},
			{Name: FieldMethods, Property: PropertyMultiSelect},
			{Name: FieldTopics, Property: PropertyMultiSelect},
			{Name: FieldVenue, Property: PropertySelect},
			{Name: FieldURL, Property: PropertyURL},
		},
	}
}

// AuthorSchema returns the default author layout.
func AuthorSchema() *Schema {
	return &Schema{
		TitleField: FieldName,
		KeyField:   FieldName,
		AliasField: FieldAliases,
		Fields: []FieldSpec{
			{Name: FieldName, Property: PropertyTitle},
			{Name: FieldAliases, Property: PropertyRichText},
			{Name: FieldDisciplines, Property: PropertyMultiSelect, Default: MultiChoice{{Name: "🥼 Research", Color: ColorDefault}}},
			{Name: FieldArticles, Property: PropertyRelation},
		},
	}
}

// ColorDefault is the service's neutral option color.
const ColorDefault = "default"

// Colors lists the option colors the service accepts.
var Colors = []string{
	"default", "gray", "brown", "orange", "yellow",
	"green", "blue", "purple", "pink", "red",
}

// ValidColor returns c when the service accepts it, otherwise ColorDefault.
func ValidColor(c string) string {
	if slices.Contains(Colors, c) {
		return c
	}
	return ColorDefault
}
