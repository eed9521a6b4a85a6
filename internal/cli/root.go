// Package cli provides the command-line interface for taskboard.
package cli

import (
	"fmt"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupBoard    = "board"
	groupMeetings = "meetings"
)

// NewRootCommand creates the root command for taskboard.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Team task board with meeting transcript processing",
		Long: `taskboard tracks team tasks, projects and goals, and turns meeting
transcripts into task updates with an AI extractor.

Data lives in $TASKBOARD_HOME (default ~/.local/share/taskboard).
Run 'taskboard init' once to create the database and a commented config file.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupBoard, Title: "Board Management:"},
		&cobra.Group{ID: groupMeetings, Title: "Meetings:"},
	)

	grouped := func(id string, cmds ...*cobra.Command) []*cobra.Command {
		for _, cmd := range cmds {
			cmd.GroupID = id
		}
		return cmds
	}

	root.AddCommand(grouped(groupSetup,
		newInitCommand(c),
		newConfigCommand(c),
		newServeCommand(c, version),
	)...)
	root.AddCommand(grouped(groupBoard,
		newTaskCommand(c),
		newUserCommand(c),
		newProjectCommand(c),
		newTagCommand(c),
		newGoalCommand(c),
		newStatsCommand(c),
	)...)
	root.AddCommand(grouped(groupMeetings,
		newTranscriptCommand(c),
	)...)

	return root
}
