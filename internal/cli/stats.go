package cli

import (
	"fmt"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/spf13/cobra"
)

// newStatsCommand creates the stats command.
func newStatsCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show board statistics",
		Long: `Show task counts by status, priority and assignee.

Unassigned tasks are counted in the totals but in no assignee row.
With --json the output has the same shape as GET /stats.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ComputeStatsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, out.Stats.Dashboard())
			}

			st := newStyles(w)
			_, _ = fmt.Fprintf(w, "Total tasks: %d\n\n", out.Stats.Total)

			byStatus := table{header: []string{"STATUS", "TASKS"}}
			for _, s := range domain.AllStatuses() {
				byStatus.add(st.statusText(s), fmt.Sprintf("%d", out.Stats.ByStatus[s]))
			}
			byStatus.render(w, st)
			_, _ = fmt.Fprintln(w)

			byPriority := table{header: []string{"PRIORITY", "TASKS"}}
			for _, p := range domain.AllPriorities() {
				byPriority.add(st.priorityText(p), fmt.Sprintf("%d", out.Stats.ByPriority[p]))
			}
			byPriority.render(w, st)

			if len(out.Stats.ByAssignee) > 0 {
				_, _ = fmt.Fprintln(w)
				byUser := table{header: []string{"ASSIGNEE", "TASKS"}}
				for _, a := range out.Stats.ByAssignee {
					name := a.Name
					if name == "" {
						name = fmt.Sprintf("#%d", a.UserID)
					}
					byUser.add(name, fmt.Sprintf("%d", a.Count))
				}
				byUser.render(w, st)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}
