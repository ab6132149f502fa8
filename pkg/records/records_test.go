package records_test

import (
	"testing"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b records.Value
		want bool
	}{
		{name: "same text", a: records.Text("Deep Nets"), b: records.Text("Deep Nets"), want: true},
		{name: "different text", a: records.Text("Deep Nets"), b: records.Text("deep nets"), want: false},
		{name: "choice ignores color", a: records.Choice{Name: "Done", Color: "green"}, b: records.Choice{Name: "Done"}, want: true},
		{name: "different choice", a: records.Choice{Name: "Done"}, b: records.Choice{Name: "Unread"}, want: false},
		{
			name: "multi choice is a set",
			a:    records.NewMultiChoice("", "ml", "stats", "ml"),
			b:    records.NewMultiChoice("blue", "stats", "ml"),
			want: true,
		},
		{
			name: "multi choice differs",
			a:    records.NewMultiChoice("", "ml"),
			b:    records.NewMultiChoice("", "ml", "stats"),
			want: false,
		},
		{
			name: "relation by normalized id",
			a:    records.Relation{"0F1E2D3C-4B5A-6978-8796-A5B4C3D2E1F0"},
			b:    records.Relation{"0f1e2d3c4b5a69788796a5b4c3d2e1f0"},
			want: true,
		},
		{name: "relation order matters", a: records.Relation{"a", "b"}, b: records.Relation{"b", "a"}, want: false},
		{name: "kind mismatch", a: records.Text("ml"), b: records.NewMultiChoice("", "ml"), want: false},
		{name: "nil equals empty", a: nil, b: records.MultiChoice{}, want: true},
		{name: "nil differs from data", a: records.Text("x"), b: nil, want: false},
		{name: "both nil", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, records.Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, records.Equal(tt.b, tt.a))
		})
	}
}

func TestFieldsPreserveOrder(t *testing.T) {
	var f records.Fields
	f.Set("Title", records.Text("a"))
	f.Set("ID", records.Text("b"))
	f.Set("Title", records.Text("c"))

	assert.Equal(t, []string{"Title", "ID"}, f.Names())
	assert.Equal(t, "c", f.Text("Title"))
	assert.Equal(t, "", f.Text("Missing"))
}

func TestEntryWithAttributeCopies(t *testing.T) {
	entry := &records.Entry{
		Kind:        records.KindArticle,
		ExternalID:  "Doe2020",
		TitleOrName: "Deep Nets",
		Attributes:  records.Fields{{Name: "Keywords", Value: records.NewMultiChoice("", "ml")}},
	}

	updated := entry.WithAttribute("Authors", records.Relation{"r1"})

	assert.False(t, entry.Attributes.Has("Authors"))
	assert.True(t, updated.Attributes.Has("Authors"))
	assert.Equal(t, "Doe2020", updated.ExactKey())

	author := &records.Entry{Kind: records.KindAuthor, TitleOrName: "Jane Doe"}
	assert.Equal(t, "Jane Doe", author.ExactKey())
}

func TestSchemaDefaultsAndCheck(t *testing.T) {
	schema := records.AuthorSchema()
	require.NoError(t, schema.Validate())

	fields := schema.ApplyDefaults(records.Fields{{Name: "Name", Value: records.Text("Jane Doe")}})
	v, ok := fields.Get("Disciplines")
	require.True(t, ok)
	assert.Equal(t, records.KindMultiChoice, v.Kind())
	require.NoError(t, schema.Check(fields))

	err := schema.Check(records.Fields{{Name: "Name", Value: records.Choice{Name: "x"}}})
	assert.True(t, errors.IsValidationError(err))

	err = schema.Check(records.Fields{{Name: "Unknown", Value: records.Text("x")}})
	assert.True(t, errors.IsValidationError(err))
}

func TestArticleSchemaValidate(t *testing.T) {
	require.NoError(t, records.ArticleSchema(true).Validate())
	require.NoError(t, records.ArticleSchema(false).Validate())

	spec, ok := records.ArticleSchema(true).Field("Authors")
	require.True(t, ok)
	assert.Equal(t, records.PropertyRelation, spec.Property)

	broken := &records.Schema{TitleField: "Title", KeyField: "ID", Fields: []records.FieldSpec{
		{Name: "Title", Property: records.PropertyTitle},
	}}
	assert.Error(t, broken.Validate())
}

func TestValidColor(t *testing.T) {
	assert.Equal(t, "blue", records.ValidColor("blue"))
	assert.Equal(t, "default", records.ValidColor("turquoise"))
}

func TestRawAccessors(t *testing.T) {
	raw := records.Raw{
		"ID":       "Doe2020",
		"year":     2020,
		"keywords": "ml; stats, status:done",
		"tags":     []any{"a", 1, "b"},
		"nested":   map[string]any{"x": "y"},
	}

	assert.Equal(t, "Doe2020", raw.String("ID"))
	assert.Equal(t, "2020", raw.String("year"))
	assert.Equal(t, "", raw.String("nested"))
	assert.Equal(t, []string{"ml", "stats", "status:done"}, raw.Strings("keywords"))
	assert.Equal(t, []string{"a", "b"}, raw.Strings("tags"))
	assert.Nil(t, raw.Strings("missing"))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]records.EntryKind{
		"articles": records.KindArticle,
		"Article":  records.KindArticle,
		" authors": records.KindAuthor,
		"AUTHOR":   records.KindAuthor,
	} {
		got, err := records.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := records.ParseKind("venues")
	assert.Error(t, err)
}
