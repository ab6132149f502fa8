// Package config implements the config command group.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibsync/cmd/application"
	bibconfig "github.com/agentstation/bibsync/internal/config"
)

// NewCommand creates the config command and its subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "management",
		Short:   "Manage the bibsync configuration file",
		Long: `Config creates, shows and edits the YAML file that holds the database
references, the status and topic rules, the venue abbreviations and the
Notion client settings.

The file is searched in the working directory (bibsync.yaml, config.yaml)
and then in the user config directory. --config names one explicitly.`,
		Example: `  bibsync config init        # Write the default file
  bibsync config show        # Print the effective configuration
  bibsync config edit        # Open the file in $EDITOR`,
	}

	cmd.AddCommand(
		newInitCommand(),
		newShowCommand(app),
		newPathCommand(app),
		newEditCommand(app),
	)
	return cmd
}

func newInitCommand() *cobra.Command {
	var (
		force bool
		path  string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				p, err := bibconfig.UserPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := bibconfig.Init(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&path, "path", "", "where to write the file (default: user config directory)")
	return cmd
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Show prints the configuration after merging the defaults, the config
file and the environment as YAML. The Notion token is never printed.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			return cfg.Write(app.Out())
		},
	}
}

func newPathCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the path of the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, found, err := configPath(app)
			if err != nil {
				return err
			}
			if !found {
				path += " (not found)"
			}
			fmt.Fprintln(app.Out(), path)
			return nil
		},
	}
}

func newEditCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration file in your editor",
		Long: `Edit opens the configuration file in $VISUAL or $EDITOR, falling back to
vi. The default file is written first when none exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, found, err := configPath(app)
			if err != nil {
				return err
			}
			if !found {
				if err := bibconfig.Init(path, false); err != nil {
					return err
				}
			}
			app.Logger().Debug().Str("path", path).Strs("editor", bibconfig.Editor()).Msg("Opening config")
			return bibconfig.Edit(cmd.Context(), path, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// configPath returns the file loaded by the application, or the user
// config path when no file was found.
func configPath(app application.Application) (string, bool, error) {
	cfg, err := app.Config()
	if err != nil {
		return "", false, err
	}
	if cfg.File != "" {
		return cfg.File, true, nil
	}
	path, err := bibconfig.UserPath()
	return path, false, err
}
