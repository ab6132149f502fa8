package differ

import (
	"github.com/agentstation/bibsync/pkg/records"
)

// Differ handles change detection between entry attributes and a remote
// record.
type Differ interface {
	// Fields compares every field of updated against existing. Fields that
	// only exist on the remote side are not reported.
	Fields(existing, updated records.Fields) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fields compares two attribute sets using value kind aware equality.
func (d *differ) Fields(existing, updated records.Fields) *Changeset {
	changeset := &Changeset{Changes: []FieldChange{}}

	for _, field := range updated {
		if d.ignoreFields[field.Name] {
			continue
		}

		current, ok := existing.Get(field.Name)
		if records.Equal(current, field.Value) {
			continue
		}

		change := FieldChange{
			Field:    field.Name,
			NewValue: stringOf(field.Value),
			Type:     ChangeTypeUpdate,
		}
		if ok && current != nil {
			change.OldValue = current.String()
		} else {
			change.Type = ChangeTypeAdd
		}
		changeset.Changes = append(changeset.Changes, change)
	}

	return changeset
}

func stringOf(v records.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
