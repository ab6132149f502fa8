package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/pkg/logging"
)

// Execute runs the bibsync CLI with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bibsync",
		Short:   "Sync a Paperpile library into Notion",
		Version: a.version,
		Long: `Bibsync keeps a Notion article database, and optionally an author
database, in line with a Paperpile BibTeX or JSON export.

Each run resolves the authors of the export, then creates or updates one
Notion page per article. Status, topic, field and method tags become select
options; folders, venues and links become their own properties. Records are
never deleted by a sync; use clean to archive orphaned pages.

The Notion integration token is read from NOTION_INTEGRATION_TOKEN,
NOTION_TOKEN or TOKEN, from a .env file, or from --token.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.settings.ConfigFile, "config", "", "config file (default: bibsync.yaml, then the user config directory)")
	f.StringVarP(&a.settings.Token, "token", "t", "", "Notion integration token (overrides the environment)")
	f.BoolVarP(&a.settings.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	f.BoolVarP(&a.settings.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	f.BoolVar(&a.settings.NoColor, "no-color", a.settings.NoColor, "disable colored output")
	f.StringVarP(&a.settings.Format, "format", "o", "", "output format: table, json, yaml")
	f.StringVar(&a.settings.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("bibsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	a.settings.Verbose = mustGetBool(cmd, "verbose")
	a.settings.Quiet = mustGetBool(cmd, "quiet")
	a.settings.NoColor = mustGetBool(cmd, "no-color")
	a.settings.Format = mustGetString(cmd, "format")
	a.settings.LogLevel = mustGetString(cmd, "log-level")

	// Reinitialize logger with updated settings
	logger := NewLogger(a.settings)
	a.logger = &logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, a.logger))
	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
