package cli

import (
	"fmt"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/infra/config"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the data directory",
		Long: `Initialize the taskboard data directory.

This command creates:
- config.toml: commented default configuration (kept if it already exists)
- taskboard.db: SQLite database with the board schema
- logs/: directory for the global and per-transcript logs

Running init again is safe; it only adds what is missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitBoardUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitBoardInput{
				DataDir: c.Config.DataDir,
				Config:  domain.NewDefaultConfig(c.Config.DataDir),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.ConfigCreated {
				_, _ = fmt.Fprintf(w, "Wrote config to %s\n", out.ConfigPath)
			}
			_, _ = fmt.Fprintf(w, "Initialized taskboard in %s\n", out.DataDir)
			return nil
		},
	}
}

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	var paths bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration in effect as TOML.

Values are merged from built-in defaults, the global config
($XDG_CONFIG_HOME/taskboard/config.toml), <data_dir>/config.toml
and TASKBOARD_* environment variables, in that order.

Examples:
  taskboard config
  taskboard config --paths`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if paths {
				_, _ = fmt.Fprintf(w, "data_dir = %s\n", c.Config.DataDir)
				_, _ = fmt.Fprintf(w, "config   = %s\n", domain.ConfigPath(c.Config.DataDir))
				_, _ = fmt.Fprintf(w, "database = %s\n", c.Config.DBPath)
				_, _ = fmt.Fprintf(w, "logs     = %s\n", domain.LogsDir(c.Config.DataDir))
				return nil
			}

			out, err := config.Marshal(c.AppConfig)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(w, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&paths, "paths", false, "Show file locations instead of values")
	return cmd
}
