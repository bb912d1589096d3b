// Package render turns generated accomplishment reports into documents:
// a Markdown file for submission and a terminal table for previews.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/valter-silva-au/iar/pkg/models"
)

const markdownTemplate = `# INDIVIDUAL ACCOMPLISHMENT REPORT

**NAME:** {{ .Employee.Name }}
**POSITION:** {{ .Employee.Position }}
**OFFICE:** {{ .Employee.Office }}
**DATE:** {{ .Period.Label }}

| PERIOD/ WEEK | ACCOMPLISHMENT / OUTPUT |
|---|---|
{{- range .Assignment.Weeks }}{{ if .Tasks }}
| {{ .Key }} | {{ bullets .Tasks }} |
{{- end }}{{ end }}

---

| | |
|---|---|
| **Prepared by:**<br><br>{{ signature (prepared .Employee) }} | **Reviewed by:**<br><br>{{ signature .Signatories.ReviewedBy }} |
| **Verified by:**<br><br>{{ signature .Signatories.VerifiedBy }} | **Approved by:**<br><br>{{ signature .Signatories.ApprovedBy }} |
| **Accepted by:**<br><br>{{ signature .Signatories.AcceptedBy }} | |
`

// MarkdownRenderer renders a report as a Markdown document with one table
// row per week that received tasks.
type MarkdownRenderer struct {
	tmpl *template.Template
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"bullets":   bulletCell,
		"signature": signatureCell,
		"prepared":  preparedBy,
	}).Parse(markdownTemplate))
	return &MarkdownRenderer{tmpl: tmpl}
}

// Render implements core.ReportRenderer.
func (r *MarkdownRenderer) Render(w io.Writer, report *models.Report) error {
	if report == nil || report.Assignment == nil {
		return fmt.Errorf("report has no week assignment")
	}
	if err := r.tmpl.Execute(w, report); err != nil {
		return fmt.Errorf("executing markdown template: %w", err)
	}
	return nil
}

// Extension implements core.ReportRenderer.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// bulletCell joins tasks into a single table cell, one bullet per line.
func bulletCell(tasks []string) string {
	items := make([]string, len(tasks))
	for i, t := range tasks {
		items[i] = "• " + escapeCell(t)
	}
	return strings.Join(items, "<br>")
}

// signatureCell prints the first line of a signatory in bold and the
// remaining detail lines below it.
func signatureCell(value string) string {
	lines := models.SignatureLines(value)
	if len(lines) == 0 {
		return "<br><br>"
	}
	out := make([]string, len(lines))
	out[0] = "**" + escapeCell(lines[0]) + "**"
	for i, l := range lines[1:] {
		out[i+1] = escapeCell(l)
	}
	return strings.Join(out, "<br>")
}

func preparedBy(e models.Employee) string {
	return strings.Join([]string{e.Name, e.Position, e.Office}, "\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
