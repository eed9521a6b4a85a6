package extractor

import (
	"fmt"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
)

const systemPrompt = "You are a helpful assistant that extracts actionable items from meeting transcripts."

// buildPrompt renders the team roster, open tasks and transcript into the user message.
func buildPrompt(req domain.ExtractionRequest) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant helping to process meeting transcripts and extract actionable items.\n\n")

	b.WriteString("Available Team Members:\n")
	if len(req.Users) == 0 {
		b.WriteString("No team members\n")
	}
	for _, u := range req.Users {
		fmt.Fprintf(&b, "- %s (ID: %d)\n", u.Name, u.ID)
	}

	b.WriteString("\nCurrent Active Tasks:\n")
	if len(req.OpenTasks) == 0 {
		b.WriteString("No active tasks\n")
	}
	for _, t := range req.OpenTasks {
		assignee := t.AssigneeName
		if assignee == "" {
			assignee = "Unassigned"
		}
		fmt.Fprintf(&b, "- Task #%d: %s (Status: %s, Assigned to: %s)\n", t.ID, t.Title, t.Status, assignee)
	}

	b.WriteString("\nMeeting Transcript:\n")
	b.WriteString(req.Text)
	b.WriteString(`

Please analyze this transcript and provide:

1. A concise meeting summary (2-3 sentences)
2. New action items/tasks that should be created
3. Any updates or completions to existing tasks mentioned

Return your response as a JSON object with this structure:
{
  "summary": "Brief meeting summary",
  "actions": [
    {
      "type": "create",
      "title": "Task title",
      "description": "Task description",
      "assignee_name": "Name of person assigned (or null)",
      "priority": "low|medium|high|urgent",
      "due_date": "YYYY-MM-DD or null"
    },
    {
      "type": "complete",
      "task_id": 123,
      "note": "Description of what was finished"
    },
    {
      "type": "update",
      "task_id": 123,
      "status": "todo|in_progress|in_review|done|blocked (optional)",
      "priority": "low|medium|high|urgent (optional)",
      "assignee_name": "New assignee (optional)",
      "note": "Description of what changed"
    }
  ]
}

List actions in the order they were discussed. Be specific and extract only clearly actionable items.
If someone is assigned a task, use their exact name from the team members list.
Only reference task IDs from the active tasks list.
`)
	return b.String()
}
