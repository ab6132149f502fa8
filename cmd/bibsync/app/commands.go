package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/cmd/bibsync/cmd/clean"
	configcmd "github.com/agentstation/bibsync/cmd/bibsync/cmd/config"
	"github.com/agentstation/bibsync/cmd/bibsync/cmd/get"
	"github.com/agentstation/bibsync/cmd/bibsync/cmd/update"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(get.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(clean.NewCommand(a))
	rootCmd.AddCommand(configcmd.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command. With -v it adds the build
// details.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			out := a.Out()
			fmt.Fprintf(out, "bibsync %s\n", a.version)
			if !a.settings.Verbose {
				return
			}
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "built by: %s\n", a.builtBy)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
