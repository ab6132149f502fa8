package notion

import (
	"strings"
	"unicode/utf8"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/records"
)

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Type      string       `json:"type,omitempty"`
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type selectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type relationRef struct {
	ID string `json:"id"`
}

// property is a page property value as returned by the API. Relations
// carry at most 25 references; HasMore reports that the rest must be read
// through the property endpoint.
type property struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	HasMore     bool           `json:"has_more"`
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Select      *selectOption  `json:"select"`
	MultiSelect []selectOption `json:"multi_select"`
	Relation    []relationRef  `json:"relation"`
	URL         *string        `json:"url"`
}

// page is a database row.
type page struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	InTrash    bool                `json:"in_trash"`
	Properties map[string]property `json:"properties"`
}

// propertyNames maps lower cased schema field names to the property names
// used in a database whose columns were renamed.
type propertyNames map[string]string

func newPropertyNames(in map[string]string) propertyNames {
	out := make(propertyNames, len(in))
	for field, name := range in {
		if name = strings.TrimSpace(name); name != "" {
			out[strings.ToLower(field)] = name
		}
	}
	return out
}

func (n propertyNames) of(field string) string {
	if name, ok := n[strings.ToLower(field)]; ok {
		return name
	}
	return field
}

// encodeFields converts fields to the properties object of a create or
// update request. Fields the schema does not declare are skipped. Empty
// values are sent explicitly so that updates clear them.
func encodeFields(schema *records.Schema, names propertyNames, fields records.Fields) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		spec, ok := schema.Field(f.Name)
		if !ok {
			continue
		}
		v := f.Value
		if v == nil {
			v = records.Zero(spec.Property.ValueKind())
		}
		props[names.of(f.Name)] = encodeValue(spec.Property, v)
	}
	return props
}

func encodeValue(p records.PropertyType, v records.Value) map[string]any {
	switch p {
	case records.PropertyTitle:
		return map[string]any{"title": textChunks(v.String())}
	case records.PropertyRichText:
		return map[string]any{"rich_text": textChunks(v.String())}
	case records.PropertyURL:
		if v.IsEmpty() {
			return map[string]any{"url": nil}
		}
		return map[string]any{"url": v.String()}
	case records.PropertySelect:
		c, _ := v.(records.Choice)
		if c.IsEmpty() {
			return map[string]any{"select": nil}
		}
		return map[string]any{"select": option(c)}
	case records.PropertyMultiSelect:
		m, _ := v.(records.MultiChoice)
		opts := make([]selectOption, 0, len(m))
		for _, c := range m {
			opts = append(opts, option(c))
		}
		return map[string]any{"multi_select": opts}
	case records.PropertyRelation:
		r, _ := v.(records.Relation)
		refs := make([]relationRef, 0, len(r))
		for _, id := range r {
			refs = append(refs, relationRef{ID: id})
		}
		return map[string]any{"relation": refs}
	default:
		return nil
	}
}

func option(c records.Choice) selectOption {
	return selectOption{Name: c.Name, Color: records.ValidColor(c.Color)}
}

// textChunks splits s into rich text objects no longer than the service's
// per object limit.
func textChunks(s string) []richText {
	chunks := []richText{}
	for s != "" {
		n := len(s)
		if utf8.RuneCountInString(s) > constants.MaxTextLength {
			n = 0
			for i := 0; i < constants.MaxTextLength; i++ {
				_, size := utf8.DecodeRuneInString(s[n:])
				n += size
			}
		}
		chunks = append(chunks, richText{Type: "text", Text: &textContent{Content: s[:n]}})
		s = s[n:]
	}
	return chunks
}

// decodePage converts a page into a record, keeping only properties the
// schema declares, in schema order.
func decodePage(schema *records.Schema, names propertyNames, p *page) *records.Record {
	rec := &records.Record{RemoteID: p.ID}
	for _, spec := range schema.Fields {
		prop, ok := p.Properties[names.of(spec.Name)]
		if !ok {
			continue
		}
		rec.Fields = append(rec.Fields, records.Field{Name: spec.Name, Value: decodeValue(spec.Property, prop)})
	}
	rec.NaturalKey = rec.Fields.Text(schema.TitleField)
	return rec
}

func decodeValue(p records.PropertyType, prop property) records.Value {
	switch p {
	case records.PropertyTitle:
		return records.Text(plainText(prop.Title))
	case records.PropertyRichText:
		return records.Text(plainText(prop.RichText))
	case records.PropertyURL:
		if prop.URL == nil {
			return records.Text("")
		}
		return records.Text(*prop.URL)
	case records.PropertySelect:
		if prop.Select == nil {
			return records.Choice{}
		}
		return records.Choice{Name: prop.Select.Name, Color: prop.Select.Color}
	case records.PropertyMultiSelect:
		m := make(records.MultiChoice, 0, len(prop.MultiSelect))
		for _, o := range prop.MultiSelect {
			m = append(m, records.Choice{Name: o.Name, Color: o.Color})
		}
		return m
	case records.PropertyRelation:
		r := make(records.Relation, 0, len(prop.Relation))
		for _, ref := range prop.Relation {
			r = append(r, ref.ID)
		}
		return r
	default:
		return nil
	}
}

func plainText(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.PlainText != "":
			b.WriteString(p.PlainText)
		case p.Text != nil:
			b.WriteString(p.Text.Content)
		}
	}
	return b.String()
}
