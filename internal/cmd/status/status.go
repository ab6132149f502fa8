// Package status prints per record status lines and run summaries.
package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/agentstation/bibsync/internal/cmd/emoji"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
)

// Writer prints status lines such as "Created: Deep Nets".
type Writer struct {
	w       io.Writer
	color   bool
	symbols bool
	verbose bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithColor colors the state label. Terminals get symbols as well.
func WithColor(enabled bool) Option {
	return func(s *Writer) {
		s.color = enabled
		s.symbols = enabled
	}
}

// WithVerbose adds the changed fields of updates and the reason for
// failures.
func WithVerbose(enabled bool) Option {
	return func(s *Writer) {
		s.verbose = enabled
	}
}

// New creates a Writer printing to w.
func New(w io.Writer, opts ...Option) *Writer {
	s := &Writer{w: w}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Writer) paint(attr color.Attribute, text string) string {
	if !s.color {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

func stateStyle(state reconciler.State) (color.Attribute, string) {
	switch state {
	case reconciler.StateCreated:
		return color.FgGreen, emoji.Created
	case reconciler.StateUpdated:
		return color.FgBlue, emoji.Updated
	case reconciler.StateSkipped:
		return color.FgYellow, emoji.Skipped
	default:
		return color.FgRed, emoji.Failed
	}
}

// Outcome prints the status line for o.
func (s *Writer) Outcome(o reconciler.Outcome) {
	attr, symbol := stateStyle(o.State)
	line := s.paint(attr, o.State.Label()+":") + " " + o.Title
	if s.symbols {
		line = s.paint(attr, symbol) + " " + line
	}
	if s.verbose {
		switch {
		case o.State == reconciler.StateUpdated && len(o.Changed) > 0:
			line += " (" + strings.Join(o.Changed, ", ") + ")"
		case o.State == reconciler.StateFailed && o.Reason != "":
			line += " (" + o.Reason + ")"
		}
	}
	if o.DryRun {
		line += " [dry run]"
	}
	fmt.Fprintln(s.w, line)
}

// Result prints one "Found N ..." line per collection and the totals.
func (s *Writer) Result(result *sync.Result) {
	for _, cr := range result.Collections {
		fmt.Fprintln(s.w, cr.Summary())
	}
	counts := result.Counts()
	switch {
	case counts.Failed > 0:
		s.line(color.FgRed, emoji.Warning, counts.String())
	case result.DryRun:
		s.line(color.FgYellow, emoji.Warning, counts.String()+" (dry run, nothing was written)")
	default:
		s.line(color.FgGreen, emoji.Success, counts.String())
	}
}

// Archived prints one line per record removed by clean.
func (s *Writer) Archived(kind records.EntryKind, recs []*records.Record, dryRun bool) {
	label := "Archived:"
	if dryRun {
		label = "Would archive:"
	}
	for _, rec := range recs {
		line := s.paint(color.FgRed, label) + " " + rec.NaturalKey
		if s.symbols {
			line = s.paint(color.FgRed, emoji.Archived) + " " + line
		}
		fmt.Fprintln(s.w, line)
	}
	summary := fmt.Sprintf("Archived %d %s.", len(recs), sync.Plural(kind))
	if dryRun {
		summary = fmt.Sprintf("%d %s would be archived.", len(recs), sync.Plural(kind))
	}
	s.line(color.FgGreen, emoji.Success, summary)
}

func (s *Writer) line(attr color.Attribute, symbol, text string) {
	if s.symbols {
		text = symbol + " " + text
	}
	fmt.Fprintln(s.w, s.paint(attr, text))
}
