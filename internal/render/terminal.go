package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/valter-silva-au/iar/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Preview renders a report for the terminal: header fields followed by a
// bordered week table. Weeks without tasks are listed so the full grid is
// visible.
func Preview(report *models.Report) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("INDIVIDUAL ACCOMPLISHMENT REPORT"))
	sb.WriteString("\n\n")
	writeField(&sb, "NAME", report.Employee.Name)
	writeField(&sb, "POSITION", report.Employee.Position)
	writeField(&sb, "OFFICE", report.Employee.Office)
	writeField(&sb, "DATE", report.Period.Label())
	sb.WriteString("\n")
	sb.WriteString(WeekTable(report.Assignment))
	sb.WriteString("\n")
	return sb.String()
}

// WeekTable renders the week grid with its tasks as a lipgloss table.
func WeekTable(a *models.WeekAssignment) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("PERIOD/ WEEK", "ACCOMPLISHMENT / OUTPUT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return cellStyle.Width(70)
			}
			return cellStyle
		})

	if a != nil {
		for _, wt := range a.Weeks {
			lines := make([]string, len(wt.Tasks))
			for i, task := range wt.Tasks {
				lines[i] = "• " + task
			}
			t.Row(wt.Key, strings.Join(lines, "\n"))
		}
	}
	return t.Render()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(label + ":"))
	sb.WriteString(" ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

// WeekGrid renders the working-day weeks of a period, one row per week.
func WeekGrid(weeks []models.Week) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("WEEK", "FROM", "TO", "DAYS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, w := range weeks {
		t.Row(w.Key(), w.Start.Format("Mon Jan 2"), w.End.Format("Mon Jan 2"), strconv.Itoa(w.Days()))
	}
	return t.Render()
}
