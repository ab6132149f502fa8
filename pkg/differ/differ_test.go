package differ_test

import (
	"testing"

	"github.com/agentstation/bibsync/pkg/differ"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/stretchr/testify/assert"
)

func TestFieldsReportsOnlyChangedFields(t *testing.T) {
	existing := records.Fields{
		{Name: "Title", Value: records.Text("Deep Nets")},
		{Name: "Status", Value: records.Choice{Name: "Unread", Color: "gray"}},
		{Name: "Keywords", Value: records.NewMultiChoice("", "b", "a")},
		{Name: "Notes", Value: records.Text("kept on the remote side only")},
	}
	updated := records.Fields{
		{Name: "Title", Value: records.Text("Deep Nets")},
		{Name: "Status", Value: records.Choice{Name: "Finished", Color: "green"}},
		{Name: "Keywords", Value: records.NewMultiChoice("default", "a", "b")},
		{Name: "Venue", Value: records.Choice{Name: "NeurIPS"}},
	}

	cs := differ.New().Fields(existing, updated)

	assert.True(t, cs.HasChanges())
	assert.Equal(t, []string{"Status", "Venue"}, cs.Fields())
	assert.Equal(t, differ.ChangeTypeUpdate, cs.Changes[0].Type)
	assert.Equal(t, "Unread", cs.Changes[0].OldValue)
	assert.Equal(t, "Finished", cs.Changes[0].NewValue)
	assert.Equal(t, differ.ChangeTypeAdd, cs.Changes[1].Type)
	assert.Equal(t, `Status: "Unread" -> "Finished"; Venue: + "NeurIPS"`, cs.String())
}

func TestFieldsEmptyValuesMatchMissing(t *testing.T) {
	cs := differ.New().Fields(nil, records.Fields{
		{Name: "Keywords", Value: records.MultiChoice{}},
		{Name: "Authors", Value: records.Relation{}},
	})

	assert.True(t, cs.IsEmpty())
	assert.Equal(t, "no changes", cs.String())
}

func TestWithIgnoredFields(t *testing.T) {
	d := differ.New(differ.WithIgnoredFields("Title"))

	cs := d.Fields(
		records.Fields{{Name: "Title", Value: records.Text("old")}},
		records.Fields{{Name: "Title", Value: records.Text("new")}},
	)

	assert.False(t, cs.HasChanges())
}

func TestNilChangeset(t *testing.T) {
	var cs *differ.Changeset
	assert.False(t, cs.HasChanges())
	assert.Nil(t, cs.Fields())
}
