package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
)

// Result represents the complete result of a sync run.
type Result struct {
	Collections []*CollectionResult `json:"collections" yaml:"collections"`

	// Operation metadata
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	StartTime utc.Time      `json:"start_time" yaml:"start_time"`
	EndTime   utc.Time      `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// CollectionResult represents the outcomes for one collection.
type CollectionResult struct {
	Kind records.EntryKind `json:"kind" yaml:"kind"`
	Name string            `json:"name" yaml:"name"`

	Outcomes []reconciler.Outcome `json:"outcomes" yaml:"outcomes"`
	Counts   reconciler.Counts    `json:"counts" yaml:"counts"`

	// InputCount is the number of entries read for this collection and
	// RemoteCount the number of records found before the run.
	InputCount  int `json:"input_count" yaml:"input_count"`
	RemoteCount int `json:"remote_count" yaml:"remote_count"`
	Shadowed    int `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`

	source string
	remote string
}

// NewResult starts a result for a run.
func NewResult(dryRun bool) *Result {
	return &Result{
		DryRun:    dryRun,
		StartTime: utc.Now(),
	}
}

// Collection adds a collection result, labelled for summaries with the
// input and remote names from opts.
func (r *Result) Collection(kind records.EntryKind, name string, opts *Options) *CollectionResult {
	cr := &CollectionResult{Kind: kind, Name: name}
	if opts != nil {
		cr.source, cr.remote = opts.Source, opts.Remote
	}
	r.Collections = append(r.Collections, cr)
	return cr
}

// Get returns the result for kind, or nil when that phase did not run.
func (r *Result) Get(kind records.EntryKind) *CollectionResult {
	for _, cr := range r.Collections {
		if cr.Kind == kind {
			return cr
		}
	}
	return nil
}

// Finalize records the end time.
func (r *Result) Finalize() {
	r.EndTime = utc.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Counts totals the outcomes of every collection.
func (r *Result) Counts() reconciler.Counts {
	var total reconciler.Counts
	for _, cr := range r.Collections {
		total.Created += cr.Counts.Created
		total.Updated += cr.Counts.Updated
		total.Skipped += cr.Counts.Skipped
		total.Failed += cr.Counts.Failed
	}
	return total
}

// Outcomes returns every outcome in run order.
func (r *Result) Outcomes() []reconciler.Outcome {
	var out []reconciler.Outcome
	for _, cr := range r.Collections {
		out = append(out, cr.Outcomes...)
	}
	return out
}

// HasChanges returns true if any record was created or updated.
func (r *Result) HasChanges() bool {
	return r.Counts().Changes() > 0
}

// HasFailures returns true if any entry failed.
func (r *Result) HasFailures() bool {
	return r.Counts().Failed > 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	lines := make([]string, 0, len(r.Collections)+1)
	for _, cr := range r.Collections {
		lines = append(lines, cr.Summary())
	}
	total := r.Counts().String()
	if r.DryRun {
		total += " (dry run)"
	}
	lines = append(lines, total)
	return strings.Join(lines, "\n")
}

// Add records one outcome.
func (cr *CollectionResult) Add(o reconciler.Outcome) {
	cr.Outcomes = append(cr.Outcomes, o)
	cr.Counts.Add(o)
}

// Summary returns the input and remote counts, e.g.
// "Found 12 Articles in BibTeX and 30 on Notion."
func (cr *CollectionResult) Summary() string {
	source, remote := cr.source, cr.remote
	if source == "" {
		source = "the input"
	}
	if remote == "" {
		remote = "the remote"
	}
	return fmt.Sprintf("Found %d %s in %s and %d on %s.", cr.InputCount, Plural(cr.Kind), source, cr.RemoteCount, remote)
}

// Plural returns the display name of a collection kind, e.g. "Articles".
func Plural(kind records.EntryKind) string {
	return cases.Title(language.English).String(string(kind) + "s")
}
