package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

// newTaskCommand creates the task command group.
func newTaskCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskNewCommand(c),
		newTaskListCommand(c),
		newTaskShowCommand(c),
		newTaskEditCommand(c),
		newTaskRmCommand(c),
	)
	return cmd
}

// resolveUser accepts a user ID ("3", "#3") or a user name.
func resolveUser(ctx context.Context, c *app.Container, ref string) (int64, error) {
	if id, err := parseID("user", ref); err == nil {
		return id, nil
	}
	u, err := c.Users.FindByName(ctx, strings.TrimSpace(ref))
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrUserNotFound, ref)
	}
	return u.ID, nil
}

// userNames maps user IDs to names for display.
func userNames(ctx context.Context, c *app.Container) (map[int64]string, error) {
	out, err := c.ListUsersUseCase().Execute(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(out.Users))
	for _, u := range out.Users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func parseTagIDs(refs []string) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		id, err := parseID("tag", ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newTaskNewCommand creates the task new command.
func newTaskNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Creator     string
		Assignee    string
		Project     string
		Priority    string
		Status      string
		Due         string
		Tags        []string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task.

Users may be given by ID or by name. The task starts as 'todo' with
'medium' priority unless --status or --priority is given.

Examples:
  taskboard task new --title "Write release notes" --creator Alice
  taskboard task new --title "Fix login" --creator 1 --assignee Bob --priority high --due 2024-03-15
  taskboard task new --title "Tidy backlog" --creator 1 --tag 2 --tag 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			input := usecase.CreateTaskInput{
				Title:       opts.Title,
				Description: opts.Description,
				Status:      domain.Status(opts.Status),
				Priority:    domain.Priority(opts.Priority),
			}

			creatorID, err := resolveUser(ctx, c, opts.Creator)
			if err != nil {
				return err
			}
			input.CreatorID = creatorID

			if opts.Assignee != "" {
				id, err := resolveUser(ctx, c, opts.Assignee)
				if err != nil {
					return err
				}
				input.AssigneeID = &id
			}
			if opts.Project != "" {
				id, err := parseID("project", opts.Project)
				if err != nil {
					return err
				}
				input.ProjectID = &id
			}
			if opts.Due != "" {
				if input.DueDate, err = parseDate("due", opts.Due); err != nil {
					return err
				}
			}
			if input.TagIDs, err = parseTagIDs(opts.Tags); err != nil {
				return err
			}

			out, err := c.CreateTaskUseCase().Execute(ctx, input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().StringVar(&opts.Creator, "creator", "", "Creating user, ID or name (required)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assigned user, ID or name")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project ID")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority: low, medium, high, urgent")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Initial status (default todo)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "Tag ID (can specify multiple)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("creator")

	return cmd
}

// newTaskListCommand creates the task list command.
func newTaskListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Assignee string
		Project  string
		Status   string
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display tasks, newest first.

Filters are combined with AND.

Output columns:
  ID, STATUS, PRIORITY, ASSIGNEE, DUE, TITLE

Examples:
  taskboard task list
  taskboard task list --status in_progress --assignee Alice
  taskboard task list --project 2 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var input usecase.ListTasksInput

			if opts.Assignee != "" {
				id, err := resolveUser(ctx, c, opts.Assignee)
				if err != nil {
					return err
				}
				input.AssigneeID = &id
			}
			if opts.Project != "" {
				id, err := parseID("project", opts.Project)
				if err != nil {
					return err
				}
				input.ProjectID = &id
			}
			if opts.Status != "" {
				st, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return err
				}
				input.Status = &st
			}

			out, err := c.ListTasksUseCase().Execute(ctx, input)
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), nonNil(out.Tasks))
			}

			names, err := userNames(ctx, c)
			if err != nil {
				return err
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, names)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Filter by assignee (ID or name)")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Filter by project ID")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskList prints tasks as an aligned table.
func printTaskList(w io.Writer, tasks []*domain.Task, names map[int64]string) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks")
		return
	}

	st := newStyles(w)
	t := table{header: []string{"ID", "STATUS", "PRIORITY", "ASSIGNEE", "DUE", "TITLE"}}
	for _, task := range tasks {
		assignee := "-"
		if task.AssigneeID != nil {
			assignee = orDash(names[*task.AssigneeID])
		}
		t.add(
			fmt.Sprintf("%d", task.ID),
			st.statusText(task.Status),
			st.priorityText(task.Priority),
			assignee,
			formatDate(task.DueDate),
			truncate(task.Title, maxTitleWidth),
		)
	}
	t.render(w, st)
}

// newTaskShowCommand creates the task show command.
func newTaskShowCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: id})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), out.Task)
			}

			names, err := userNames(cmd.Context(), c)
			if err != nil {
				return err
			}
			printTaskDetails(cmd.OutOrStdout(), out.Task, names)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func printTaskDetails(w io.Writer, task *domain.Task, names map[int64]string) {
	st := newStyles(w)

	// Header
	_, _ = fmt.Fprintf(w, "# Task %d: %s\n\n", task.ID, task.Title)

	// Description
	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Description)
	}

	_, _ = fmt.Fprintf(w, "Status: %s\n", st.statusText(task.Status))
	_, _ = fmt.Fprintf(w, "Priority: %s\n", st.priorityText(task.Priority))
	_, _ = fmt.Fprintf(w, "Creator: %s\n", orDash(names[task.CreatorID]))

	if task.AssigneeID != nil {
		_, _ = fmt.Fprintf(w, "Assignee: %s\n", orDash(names[*task.AssigneeID]))
	} else {
		_, _ = fmt.Fprintln(w, "Assignee: none")
	}

	_, _ = fmt.Fprintf(w, "Project: %s\n", formatOptionalID(task.ProjectID))
	_, _ = fmt.Fprintf(w, "Due: %s\n", formatDate(task.DueDate))

	if len(task.Tags) > 0 {
		tags := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			tags = append(tags, tag.Name)
		}
		_, _ = fmt.Fprintf(w, "Tags: [%s]\n", strings.Join(tags, ", "))
	} else {
		_, _ = fmt.Fprintln(w, "Tags: none")
	}

	_, _ = fmt.Fprintf(w, "Created: %s\n", task.CreatedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "Updated: %s\n", task.UpdatedAt.Format(time.RFC3339))
	if task.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "Completed: %s\n", task.CompletedAt.Format(time.RFC3339))
	}
}

// newTaskEditCommand creates the task edit command.
func newTaskEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Status      string
		Priority    string
		Assignee    string
		Project     string
		Due         string
		Tags        []string
		NoAssignee  bool
		NoProject   bool
		NoDue       bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit task fields. Only the given flags are changed.

Moving a task to 'done' records its completion time; moving it out
of 'done' clears it. --tag replaces the whole tag set.

Examples:
  taskboard task edit 3 --status in_progress
  taskboard task edit 3 --assignee Bob --due 2024-04-01
  taskboard task edit 3 --no-assignee --no-due
  taskboard task edit 3 --tag 1 --tag 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			input := usecase.UpdateTaskInput{
				TaskID:        id,
				ClearAssignee: opts.NoAssignee,
				ClearProject:  opts.NoProject,
				ClearDueDate:  opts.NoDue,
			}
			if flags.Changed("title") {
				input.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Description = &opts.Description
			}
			if flags.Changed("status") {
				st := domain.Status(opts.Status)
				input.Status = &st
			}
			if flags.Changed("priority") {
				p := domain.Priority(opts.Priority)
				input.Priority = &p
			}
			if flags.Changed("assignee") {
				uid, err := resolveUser(ctx, c, opts.Assignee)
				if err != nil {
					return err
				}
				input.AssigneeID = &uid
			}
			if flags.Changed("project") {
				pid, err := parseID("project", opts.Project)
				if err != nil {
					return err
				}
				input.ProjectID = &pid
			}
			if flags.Changed("due") {
				if input.DueDate, err = parseDate("due", opts.Due); err != nil {
					return err
				}
			}
			if flags.Changed("tag") {
				tagIDs, err := parseTagIDs(opts.Tags)
				if err != nil {
					return err
				}
				input.TagIDs = &tagIDs
			}

			out, err := c.UpdateTaskUseCase().Execute(ctx, input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.PreviousStatus != out.Task.Status {
				_, _ = fmt.Fprintf(w, "Updated task #%d (%s → %s)\n", out.Task.ID, out.PreviousStatus, out.Task.Status)
			} else {
				_, _ = fmt.Fprintf(w, "Updated task #%d\n", out.Task.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "New assignee (ID or name)")
	cmd.Flags().StringVar(&opts.Project, "project", "", "New project ID")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "Replace tags with these IDs (can specify multiple)")
	cmd.Flags().BoolVar(&opts.NoAssignee, "no-assignee", false, "Unassign the task")
	cmd.Flags().BoolVar(&opts.NoProject, "no-project", false, "Remove the task from its project")
	cmd.Flags().BoolVar(&opts.NoDue, "no-due", false, "Clear the due date")
	cmd.MarkFlagsMutuallyExclusive("assignee", "no-assignee")
	cmd.MarkFlagsMutuallyExclusive("project", "no-project")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")

	return cmd
}

// newTaskRmCommand creates the task rm command.
func newTaskRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}

			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: id})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d: %s\n", out.Task.ID, out.Task.Title)
			return nil
		},
	}
}
