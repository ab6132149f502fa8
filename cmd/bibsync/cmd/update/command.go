// Package update implements the sync command, which reconciles a Paperpile
// export with the Notion databases.
package update

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/cmd/application"
	"github.com/agentstation/bibsync/pkg/records"
)

// Flags holds the sync command flags.
type Flags struct {
	File    string
	DryRun  bool
	Strict  bool
	Timeout time.Duration
	Details bool

	// strictSet is true when --strict was given, overriding the config.
	strictSet bool
}

// NewCommand creates the sync command. Its articles and authors
// subcommands run one phase only.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync [file]",
		Aliases: []string{"update-db"},
		GroupID: "core",
		Short:   "Sync authors and articles from a Paperpile export",
		Long: `Sync reads a Paperpile BibTeX (.bib) or JSON (.json) export and brings the
Notion databases in line with it.

Authors are resolved first: every distinct author of the export is matched
against the author database by exact name, alias or fuzzy name and created
when missing. Articles follow: each entry is matched by its citation key,
then by fuzzy title, and is created, updated or skipped. One status line is
printed per record.`,
		Example: `  bibsync sync library.bib                 # Sync authors, then articles
  bibsync sync --refs library.json         # Read a JSON export
  bibsync sync library.bib --dry-run       # Show what would change
  bibsync sync articles library.bib        # Articles only
  bibsync sync library.bib -o json         # Print the full result as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, args)
			return Run(cmd.Context(), app, flags)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&flags.File, "refs", "r", "", "the BibTeX or JSON file exported from Paperpile")
	f.BoolVar(&flags.DryRun, "dry-run", false, "report what would change without writing")
	f.BoolVar(&flags.Strict, "strict", false, "fail when a database holds two records with the same key")
	f.DurationVar(&flags.Timeout, "timeout", 0, "stop the run after this long (0 for no limit)")
	f.BoolVar(&flags.Details, "details", false, "show changed fields and failure reasons")

	cmd.AddCommand(
		newPhaseCommand(app, flags, records.KindArticle),
		newPhaseCommand(app, flags, records.KindAuthor),
	)
	return cmd
}

func newPhaseCommand(app application.Application, flags *Flags, kind records.EntryKind) *cobra.Command {
	name := string(kind) + "s"
	return &cobra.Command{
		Use:   name + " [file]",
		Short: "Sync " + name + " only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, args)
			return Run(cmd.Context(), app, flags, kind)
		},
	}
}

// resolve applies the positional file argument and records whether
// --strict was given.
func (f *Flags) resolve(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		f.File = args[0]
	}
	f.strictSet = cmd.Flags().Changed("strict")
}
