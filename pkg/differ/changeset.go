// Package differ compares the attributes of a canonical entry with the
// snapshot of a remote record and reports which fields changed.
package differ

import (
	"fmt"
	"strings"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a field the remote record does not carry yet.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a field whose value differs.
	ChangeTypeUpdate ChangeType = "update"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Field    string     `json:"field" yaml:"field"`
	OldValue string     `json:"old,omitempty" yaml:"old,omitempty"`
	NewValue string     `json:"new" yaml:"new"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// Changeset lists field changes in attribute order.
type Changeset struct {
	Changes []FieldChange `json:"changes" yaml:"changes"`
}

// HasChanges returns true if any field changed.
func (c *Changeset) HasChanges() bool {
	return c != nil && len(c.Changes) > 0
}

// IsEmpty returns true if no field changed.
func (c *Changeset) IsEmpty() bool {
	return !c.HasChanges()
}

// Fields returns the names of the changed fields.
func (c *Changeset) Fields() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Changes))
	for _, ch := range c.Changes {
		names = append(names, ch.Field)
	}
	return names
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "no changes"
	}
	var sb strings.Builder
	for i, ch := range c.Changes {
		if i > 0 {
			sb.WriteString("; ")
		}
		switch ch.Type {
		case ChangeTypeAdd:
			fmt.Fprintf(&sb, "%s: + %q", ch.Field, ch.NewValue)
		default:
			fmt.Fprintf(&sb, "%s: %q -> %q", ch.Field, ch.OldValue, ch.NewValue)
		}
	}
	return sb.String()
}
