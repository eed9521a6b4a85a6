package cli

import (
	"fmt"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

// newUserCommand creates the user command group.
func newUserCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage team members",
	}

	var email string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a team member",
		Long: `Add a team member. Names are unique, ignoring case, and are what the
transcript extractor uses to resolve assignees.

Examples:
  taskboard user add Alice
  taskboard user add "Bob Smith" --email bob@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CreateUserUseCase().Execute(cmd.Context(), usecase.CreateUserInput{
				Name:  args[0],
				Email: email,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created user #%d: %s\n", out.User.ID, out.User.Name)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "Email address")

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List team members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListUsersUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, nonNil(out.Users))
			}
			if len(out.Users) == 0 {
				_, _ = fmt.Fprintln(w, "No users")
				return nil
			}
			st := newStyles(w)
			t := table{header: []string{"ID", "NAME", "EMAIL"}}
			for _, u := range out.Users {
				t.add(fmt.Sprintf("%d", u.ID), u.Name, orDash(u.Email))
			}
			t.render(w, st)
			return nil
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(add, list)
	return cmd
}

// newProjectCommand creates the project command group.
func newProjectCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var description string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CreateProjectUseCase().Execute(cmd.Context(), usecase.CreateProjectInput{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project #%d: %s\n", out.Project.ID, out.Project.Name)
			return nil
		},
	}
	add.Flags().StringVar(&description, "body", "", "Project description")

	var listOpts struct {
		All  bool
		JSON bool
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long: `List projects. Archived projects are hidden unless --all is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListProjectsUseCase().Execute(cmd.Context(), usecase.ListProjectsInput{
				IncludeArchived: listOpts.All,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if listOpts.JSON {
				return writeJSON(w, nonNil(out.Projects))
			}
			if len(out.Projects) == 0 {
				_, _ = fmt.Fprintln(w, "No projects")
				return nil
			}
			st := newStyles(w)
			t := table{header: []string{"ID", "NAME", "ARCHIVED", "DESCRIPTION"}}
			for _, p := range out.Projects {
				archived := "no"
				if p.Archived {
					archived = st.muted.Render("yes")
				}
				t.add(fmt.Sprintf("%d", p.ID), p.Name, archived, truncate(orDash(p.Description), maxTitleWidth))
			}
			t.render(w, st)
			return nil
		},
	}
	list.Flags().BoolVarP(&listOpts.All, "all", "a", false, "Include archived projects")
	list.Flags().BoolVar(&listOpts.JSON, "json", false, "Output in JSON format")

	archive := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a project",
		Long: `Archive a project. Archiving hides the project from the default
listing and leaves its tasks untouched. It cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			p, err := c.ArchiveProjectUseCase().Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Archived project #%d: %s\n", p.ID, p.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, archive)
	return cmd
}

// newTagCommand creates the tag command group.
func newTagCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := c.CreateTagUseCase().Execute(cmd.Context(), usecase.CreateTagInput{
				Name:  args[0],
				Color: color,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created tag #%d: %s\n", tag.ID, tag.Name)
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", domain.DefaultTagColor, "Display color")

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := c.ListTagsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, nonNil(tags))
			}
			if len(tags) == 0 {
				_, _ = fmt.Fprintln(w, "No tags")
				return nil
			}
			st := newStyles(w)
			t := table{header: []string{"ID", "NAME", "COLOR"}}
			for _, tag := range tags {
				t.add(fmt.Sprintf("%d", tag.ID), tag.Name, tag.Color)
			}
			t.render(w, st)
			return nil
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(add, list)
	return cmd
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
