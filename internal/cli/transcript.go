package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

// newTranscriptCommand creates the transcript command group.
func newTranscriptCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Upload and process meeting transcripts",
	}
	cmd.AddCommand(
		newTranscriptAddCommand(c),
		newTranscriptListCommand(c),
		newTranscriptShowCommand(c),
		newTranscriptProcessCommand(c),
	)
	return cmd
}

// newTranscriptAddCommand creates the transcript add command.
func newTranscriptAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title string
		Text  string
		File  string
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a meeting transcript",
		Long: `Upload a meeting transcript. It is stored unprocessed; run
'taskboard transcript process <id>' to extract tasks from it.

The text comes from --text, from --file, or from stdin when --file is "-".
A file may start with YAML front matter carrying the title:

  ---
  title: Weekly sync
  ---
  Alice: I finished the login page.

Without a title the file name is used.

Examples:
  taskboard transcript add --title "Standup" --text "Alice: done with login"
  taskboard transcript add --file notes/2024-03-01.md
  pbpaste | taskboard transcript add --file - --title "Planning"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			title, text := opts.Title, opts.Text

			if opts.File != "" {
				if opts.Text != "" {
					return fmt.Errorf("%w: use either --text or --file", domain.ErrValidation)
				}
				content, err := readInput(cmd.InOrStdin(), opts.File)
				if err != nil {
					return err
				}
				draft, err := domain.ParseTranscriptFile(content)
				if err != nil {
					return err
				}
				text = draft.Text
				if title == "" {
					title = draft.Title
				}
				if title == "" && opts.File != "-" {
					title = strings.TrimSuffix(filepath.Base(opts.File), filepath.Ext(opts.File))
				}
			}

			out, err := c.CreateTranscriptUseCase().Execute(cmd.Context(), usecase.CreateTranscriptInput{
				Title: title,
				Text:  text,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded transcript #%d: %s\n", out.Transcript.ID, out.Transcript.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Meeting title")
	cmd.Flags().StringVar(&opts.Text, "text", "", "Transcript text")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the transcript from a file (- for stdin)")

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

// newTranscriptListCommand creates the transcript list command.
func newTranscriptListCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListTranscriptsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, nonNil(out.Transcripts))
			}
			if len(out.Transcripts) == 0 {
				_, _ = fmt.Fprintln(w, "No transcripts")
				return nil
			}

			st := newStyles(w)
			t := table{header: []string{"ID", "STATE", "ACTIONS", "UPLOADED", "TITLE"}}
			for _, tr := range out.Transcripts {
				t.add(
					fmt.Sprintf("%d", tr.ID),
					stateText(st, tr.State),
					fmt.Sprintf("%d", len(tr.Actions)),
					tr.CreatedAt.Format("2006-01-02 15:04"),
					truncate(tr.Title, maxTitleWidth),
				)
			}
			t.render(w, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func stateText(st styles, s domain.TranscriptState) string {
	switch s {
	case domain.TranscriptProcessed:
		return st.status[domain.StatusDone].Render(string(s))
	case domain.TranscriptFailed:
		return st.status[domain.StatusBlocked].Render(string(s))
	case domain.TranscriptProcessing:
		return st.status[domain.StatusInProgress].Render(string(s))
	default:
		return string(s)
	}
}

// newTranscriptShowCommand creates the transcript show command.
func newTranscriptShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
		Text bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display a transcript and its recorded actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("transcript", args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTranscriptUseCase().Execute(cmd.Context(), usecase.ShowTranscriptInput{TranscriptID: id})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), out.Transcript)
			}
			printTranscriptDetails(cmd.OutOrStdout(), out.Transcript, opts.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.Text, "text", false, "Include the full transcript text")
	return cmd
}

func printTranscriptDetails(w io.Writer, tr *domain.Transcript, withText bool) {
	st := newStyles(w)

	_, _ = fmt.Fprintf(w, "# Transcript %d: %s\n\n", tr.ID, tr.Title)
	_, _ = fmt.Fprintf(w, "State: %s\n", stateText(st, tr.State))
	_, _ = fmt.Fprintf(w, "Uploaded: %s\n", tr.CreatedAt.Format(time.RFC3339))
	if tr.ProcessedAt != nil {
		_, _ = fmt.Fprintf(w, "Processed: %s\n", tr.ProcessedAt.Format(time.RFC3339))
	}
	if tr.LastError != "" {
		_, _ = fmt.Fprintf(w, "Last error: %s\n", tr.LastError)
	}
	if tr.Summary != "" {
		_, _ = fmt.Fprintf(w, "\nSummary:\n  %s\n", tr.Summary)
	}

	if len(tr.Actions) > 0 {
		_, _ = fmt.Fprintln(w, "\nActions:")
		for _, a := range tr.Actions {
			_, _ = fmt.Fprintf(w, "  [%s] %-9s %-5s %s\n",
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.Type,
				formatOptionalID(a.TaskID),
				a.Description,
			)
		}
	}

	if withText {
		_, _ = fmt.Fprintf(w, "\nTranscript:\n%s\n", tr.Text)
	}
}

// newTranscriptProcessCommand creates the transcript process command.
func newTranscriptProcessCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Extract tasks from a transcript",
		Long: `Send the transcript to the configured extractor and apply the
resulting actions: new tasks are created, referenced tasks are completed
or updated, and every applied action is recorded on the transcript.

Actions that cannot be applied (unknown assignee, missing task, invalid
priority) are skipped and listed. A transcript is processed only once;
if extraction fails it stays unprocessed and can be retried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("transcript", args[0])
			if err != nil {
				return err
			}

			uc, err := c.ProcessTranscriptUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ProcessTranscriptInput{TranscriptID: id})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, processResult(out))
			}
			printProcessResult(w, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

type processResultJSON struct {
	Summary        string                    `json:"summary"`
	RunID          string                    `json:"run_id"`
	Actions        []domain.TranscriptAction `json:"actions"`
	CreatedTaskIDs []int64                   `json:"created_tasks"`
	UpdatedTaskIDs []int64                   `json:"updated_tasks"`
	Skipped        []usecase.SkippedAction   `json:"skipped"`
	TranscriptID   int64                     `json:"transcript_id"`
}

func processResult(out *usecase.ProcessTranscriptOutput) processResultJSON {
	return processResultJSON{
		TranscriptID:   out.Transcript.ID,
		RunID:          out.RunID,
		Summary:        out.Summary,
		Actions:        nonNil(out.Actions),
		CreatedTaskIDs: nonNil(out.CreatedTaskIDs),
		UpdatedTaskIDs: nonNil(out.UpdatedTaskIDs),
		Skipped:        nonNil(out.Skipped),
	}
}

func printProcessResult(w io.Writer, out *usecase.ProcessTranscriptOutput) {
	_, _ = fmt.Fprintf(w, "Processed transcript #%d (run %s)\n", out.Transcript.ID, out.RunID)
	if out.Summary != "" {
		_, _ = fmt.Fprintf(w, "\nSummary:\n  %s\n", out.Summary)
	}

	_, _ = fmt.Fprintf(w, "\nCreated %d, updated %d, skipped %d\n",
		len(out.CreatedTaskIDs), len(out.UpdatedTaskIDs), len(out.Skipped))
	for _, a := range out.Actions {
		_, _ = fmt.Fprintf(w, "  %-9s %-5s %s\n", a.Type, formatOptionalID(a.TaskID), a.Description)
	}
	for _, s := range out.Skipped {
		_, _ = fmt.Fprintf(w, "  skipped   #%d (%s): %s\n", s.Index+1, orDash(string(s.Kind)), s.Reason)
	}
}
