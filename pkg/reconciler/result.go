package reconciler

import (
	"fmt"

	"github.com/agentstation/bibsync/pkg/differ"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/matcher"
	"github.com/agentstation/bibsync/pkg/records"
)

// State is the final disposition of one entry.
type State string

// Entry states.
const (
	StateCreated State = "created"
	StateUpdated State = "updated"
	StateSkipped State = "skipped"
	StateFailed  State = "failed"
)

// Label returns the capitalized state used in status lines.
func (s State) Label() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateUpdated:
		return "Updated"
	case StateSkipped:
		return "Skipped"
	default:
		return "Failed"
	}
}

// Outcome describes what happened to one entry.
type Outcome struct {
	Kind       records.EntryKind `json:"kind" yaml:"kind"`
	Title      string            `json:"title" yaml:"title"`
	ExternalID string            `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	State      State             `json:"state" yaml:"state"`
	RemoteID   string            `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	// Changed lists the fields that differed, for updates.
	Changed []string          `json:"changed,omitempty" yaml:"changed,omitempty"`
	Changes *differ.Changeset `json:"-" yaml:"-"`
	Match   string            `json:"match,omitempty" yaml:"match,omitempty"`
	Score   int               `json:"score,omitempty" yaml:"score,omitempty"`
	Reason  string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	DryRun  bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Err     error             `json:"-" yaml:"-"`
}

// String renders the status line, e.g. "Updated: Deep Nets".
func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.State.Label(), o.Title)
}

// Failed builds a failed outcome for entry. Entry may be nil when the raw
// record could not be normalized; title then labels the record.
func Failed(entry *records.Entry, title string, err error) Outcome {
	o := Outcome{
		State:  StateFailed,
		Title:  title,
		Reason: errors.Reason(err),
		Err:    err,
	}
	if entry != nil {
		o.Kind = entry.Kind
		o.Title = entry.TitleOrName
		o.ExternalID = entry.ExternalID
	}
	return o
}

func newOutcome(entry *records.Entry, state State, match matcher.Result) Outcome {
	o := Outcome{
		Kind:       entry.Kind,
		Title:      entry.TitleOrName,
		ExternalID: entry.ExternalID,
		State:      state,
		RemoteID:   match.RemoteID,
	}
	if match.Found() {
		o.Match = match.Type.String()
		o.Score = match.Score
	}
	return o
}

// Counts tallies outcomes by state.
type Counts struct {
	Created int `json:"created" yaml:"created"`
	Updated int `json:"updated" yaml:"updated"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Add counts one outcome.
func (c *Counts) Add(o Outcome) {
	switch o.State {
	case StateCreated:
		c.Created++
	case StateUpdated:
		c.Updated++
	case StateSkipped:
		c.Skipped++
	case StateFailed:
		c.Failed++
	}
}

// Total returns the number of counted outcomes.
func (c Counts) Total() int {
	return c.Created + c.Updated + c.Skipped + c.Failed
}

// Changes returns the number of writes.
func (c Counts) Changes() int {
	return c.Created + c.Updated
}

// String returns a human-readable summary.
func (c Counts) String() string {
	return fmt.Sprintf("%d created, %d updated, %d skipped, %d failed", c.Created, c.Updated, c.Skipped, c.Failed)
}
