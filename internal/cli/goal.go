package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

// newGoalCommand creates the goal command group.
func newGoalCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage long-horizon goals",
	}
	cmd.AddCommand(
		newGoalAddCommand(c),
		newGoalListCommand(c),
		newGoalShowCommand(c),
		newGoalEditCommand(c),
		newGoalRmCommand(c),
	)
	return cmd
}

func newGoalAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Description string
		Status      string
		Owner       string
		Target      string
	}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal",
		Long: `Create a goal.

Statuses: not_started (default), in_progress, achieved, abandoned.

Examples:
  taskboard goal add "Launch v2" --owner Alice --target 2024-06-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := usecase.CreateGoalInput{
				Title:       args[0],
				Description: opts.Description,
				Status:      domain.GoalStatus(opts.Status),
			}
			if opts.Owner != "" {
				id, err := resolveUser(ctx, c, opts.Owner)
				if err != nil {
					return err
				}
				input.OwnerID = &id
			}
			if opts.Target != "" {
				var err error
				if input.TargetDate, err = parseDate("target", opts.Target); err != nil {
					return err
				}
			}

			goal, err := c.CreateGoalUseCase().Execute(ctx, input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created goal #%d: %s\n", goal.ID, goal.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Description, "body", "", "Goal description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Initial status (default not_started)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Owning user (ID or name)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Target date (YYYY-MM-DD)")
	return cmd
}

func newGoalListCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			goals, err := c.ListGoalsUseCase().Execute(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, nonNil(goals))
			}
			if len(goals) == 0 {
				_, _ = fmt.Fprintln(w, "No goals")
				return nil
			}

			names, err := userNames(ctx, c)
			if err != nil {
				return err
			}
			st := newStyles(w)
			t := table{header: []string{"ID", "STATUS", "OWNER", "TARGET", "TITLE"}}
			for _, g := range goals {
				owner := "-"
				if g.OwnerID != nil {
					owner = orDash(names[*g.OwnerID])
				}
				t.add(
					fmt.Sprintf("%d", g.ID),
					string(g.Status),
					owner,
					formatDate(g.TargetDate),
					truncate(g.Title, maxTitleWidth),
				)
			}
			t.render(w, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func newGoalShowCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display goal details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			goal, err := c.ShowGoalUseCase().Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), goal)
			}
			printGoalDetails(cmd.OutOrStdout(), goal)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func printGoalDetails(w io.Writer, g *domain.Goal) {
	_, _ = fmt.Fprintf(w, "# Goal %d: %s\n\n", g.ID, g.Title)
	if g.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", g.Description)
	}
	_, _ = fmt.Fprintf(w, "Status: %s\n", g.Status)
	_, _ = fmt.Fprintf(w, "Owner: %s\n", formatOptionalID(g.OwnerID))
	_, _ = fmt.Fprintf(w, "Target: %s\n", formatDate(g.TargetDate))
	_, _ = fmt.Fprintf(w, "Created: %s\n", g.CreatedAt.Format(time.RFC3339))
	if g.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "Achieved: %s\n", g.CompletedAt.Format(time.RFC3339))
	}
}

func newGoalEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Status      string
		Owner       string
		Target      string
		NoOwner     bool
		NoTarget    bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			input := usecase.UpdateGoalInput{
				GoalID:          id,
				ClearOwner:      opts.NoOwner,
				ClearTargetDate: opts.NoTarget,
			}
			if flags.Changed("title") {
				input.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Description = &opts.Description
			}
			if flags.Changed("status") {
				st := domain.GoalStatus(opts.Status)
				input.Status = &st
			}
			if flags.Changed("owner") {
				uid, err := resolveUser(ctx, c, opts.Owner)
				if err != nil {
					return err
				}
				input.OwnerID = &uid
			}
			if flags.Changed("target") {
				if input.TargetDate, err = parseDate("target", opts.Target); err != nil {
					return err
				}
			}

			goal, err := c.UpdateGoalUseCase().Execute(ctx, input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated goal #%d\n", goal.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "New owner (ID or name)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "New target date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.NoOwner, "no-owner", false, "Remove the owner")
	cmd.Flags().BoolVar(&opts.NoTarget, "no-target", false, "Clear the target date")
	cmd.MarkFlagsMutuallyExclusive("owner", "no-owner")
	cmd.MarkFlagsMutuallyExclusive("target", "no-target")
	return cmd
}

func newGoalRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			if err := c.DeleteGoalUseCase().Execute(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal #%d\n", id)
			return nil
		},
	}
}
