// Package get implements the get command, which prints one Notion record.
package get

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/cmd/application"
	"github.com/agentstation/bibsync/internal/cmd/output"
	"github.com/agentstation/bibsync/internal/cmd/table"
	"github.com/agentstation/bibsync/pkg/records"
)

// NewCommand creates the get command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "get <articles|authors> <key>",
		GroupID: "core",
		Short:   "Show one article or author from Notion",
		Long: `Get looks up a single record by its exact key: the citation key of an
article, or the name of an author.`,
		Example: `  bibsync get articles vaswani2017attention
  bibsync get authors "Ada Lovelace" -o yaml`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"articles", "authors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := records.ParseKind(args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := client.Get(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}

			var data any = rec
			if !format.Structured() {
				data = table.RecordToTableData(rec)
			}
			return output.NewFormatter(format).Format(app.Out(), data)
		},
	}
}
