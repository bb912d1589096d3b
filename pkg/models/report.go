package models

import "strings"

// Employee identifies the person the report is prepared for.
type Employee struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Position string `yaml:"position" mapstructure:"position"`
	Office   string `yaml:"office" mapstructure:"office"`
}

// Signatories holds the optional sign-off blocks printed under the table.
// Each value is a name optionally followed by detail lines.
type Signatories struct {
	ReviewedBy string `yaml:"reviewed_by" mapstructure:"reviewed_by"`
	VerifiedBy string `yaml:"verified_by" mapstructure:"verified_by"`
	ApprovedBy string `yaml:"approved_by" mapstructure:"approved_by"`
	AcceptedBy string `yaml:"accepted_by" mapstructure:"accepted_by"`
}

// ReportRequest carries everything needed to generate one report.
type ReportRequest struct {
	Employee    Employee
	Period      Period
	Tasks       []string
	Signatories Signatories
	// OutputPath is the file to write. Empty selects DefaultReportFilename
	// inside the configured output directory.
	OutputPath string
}

// Report is the generated, renderer-ready result of a ReportRequest.
type Report struct {
	RunID       string
	Employee    Employee
	Period      Period
	Assignment  *WeekAssignment
	Signatories Signatories
}

// SignatureLines splits a signatory value into its lines. Both real newlines
// and the two-character sequence `\n` (as typed in config files) separate
// lines; empty values yield nil.
func SignatureLines(value string) []string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	lines := strings.Split(value, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
