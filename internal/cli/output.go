package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/runoshun/taskboard/internal/domain"
)

// Column widths for list output.
const (
	maxTitleWidth = 48
	columnGap     = 3
)

// dateLayout is the format used for due and target dates on the command line.
const dateLayout = "2006-01-02"

// styles colors list output. Colors are dropped automatically when w is not a terminal.
type styles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	status   map[domain.Status]lipgloss.Style
	priority map[domain.Priority]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return styles{
		header: r.NewStyle().Bold(true),
		muted:  color("#6C7086"),
		status: map[domain.Status]lipgloss.Style{
			domain.StatusTodo:       color("#89B4FA"),
			domain.StatusInProgress: color("#F9E2AF"),
			domain.StatusInReview:   color("#CBA6F7"),
			domain.StatusDone:       color("#A6E3A1"),
			domain.StatusBlocked:    color("#F38BA8"),
		},
		priority: map[domain.Priority]lipgloss.Style{
			domain.PriorityLow:    color("#6C7086"),
			domain.PriorityMedium: color("#CDD6F4"),
			domain.PriorityHigh:   color("#FAB387"),
			domain.PriorityUrgent: color("#F38BA8").Bold(true),
		},
	}
}

func (s styles) statusText(st domain.Status) string {
	if style, ok := s.status[st]; ok {
		return style.Render(string(st))
	}
	return string(st)
}

func (s styles) priorityText(p domain.Priority) string {
	if style, ok := s.priority[p]; ok {
		return style.Render(string(p))
	}
	return string(p)
}

// table renders aligned columns. Cell widths are measured without ANSI
// sequences, so styled cells line up.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer, st styles) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	writeRow := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+columnGap))
			}
		}
		_, _ = fmt.Fprintln(w, b.String())
	}

	header := make([]string, len(t.header))
	for i, h := range t.header {
		header[i] = st.header.Render(h)
	}
	writeRow(header)
	for _, row := range t.rows {
		writeRow(row)
	}
}

// truncate shortens s to width display cells, counting wide characters as two.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, width, "…")
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseID parses an entity ID, accepting a leading '#'.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s ID %q", domain.ErrValidation, kind, s)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD date as midnight UTC.
func parseDate(flag, s string) (*time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: --%s must be YYYY-MM-DD", domain.ErrValidation, flag)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatOptionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return "#" + strconv.FormatInt(*id, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
