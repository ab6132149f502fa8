// Package clean implements the clean command, which archives records that
// are not linked to anything.
package clean

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/cmd/application"
	"github.com/agentstation/bibsync/internal/cmd/output"
	"github.com/agentstation/bibsync/internal/cmd/status"
	"github.com/agentstation/bibsync/internal/cmd/table"
	"github.com/agentstation/bibsync/pkg/records"
)

// NewCommand creates the clean command.
func NewCommand(app application.Application) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "clean <authors|articles>",
		GroupID: "management",
		Short:   "Archive authors without articles, or articles without authors",
		Long: `Clean archives the records of one database whose relation to the other
database is empty: authors that no article links to, or articles with no
author. Both databases must be configured and linked by a relation.

Archived pages can be restored from the Notion trash.`,
		Example: `  bibsync clean authors --dry-run   # List orphaned authors
  bibsync clean authors             # Archive them`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"authors", "articles"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := records.ParseKind(args[0])
			if err != nil {
				return err
			}
			return Run(cmd.Context(), app, kind, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the records without archiving them")
	return cmd
}

// Run archives the orphaned records of kind and prints them. Records
// archived before a failure are still printed.
func Run(ctx context.Context, app application.Application, kind records.EntryKind, dryRun bool) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	cleaned, cleanErr := client.Clean(ctx, kind, dryRun)

	out := app.Out()
	switch {
	case format.Structured():
		if cleaned == nil {
			cleaned = []*records.Record{}
		}
		if err := output.NewFormatter(format).Format(out, cleaned); err != nil {
			return err
		}
	case app.OutputFormat() == string(output.FormatTable):
		if err := output.NewFormatter(format).Format(out, table.RecordsToTableData(cleaned)); err != nil {
			return err
		}
	default:
		status.New(out, status.WithColor(app.Color())).Archived(kind, cleaned, dryRun)
	}
	return cleanErr
}
