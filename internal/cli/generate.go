package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/render"
	"github.com/valter-silva-au/iar/pkg/models"
)

var (
	genInput     string
	genYear      int
	genMonth     int
	genHalf      int
	genTasks     []string
	genOutput    string
	genName      string
	genPosition  string
	genOffice    string
	genNoEnhance bool
	genNoInput   bool
	genPreview   bool
)

// stdinIsTerminal reports whether prompts can be shown. Replaced in tests.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an accomplishment report",
	Long: `Generate an Individual Accomplishment Report for a half-month period.

Report fields are taken from .iarconfig, then the --input task file, then
flags. When run on a terminal, missing fields (name, position, office,
year, month, period, tasks) are prompted for unless --no-input is given.

Each task is rewritten as a past-tense accomplishment and placed into the
week matching the first date it mentions; tasks without a date in the
period are spread evenly across the weeks.`,
	Example: `  iar generate --input tasks.txt
  iar generate --year 2025 --month 11 --half 2 --task "Review budget Nov 17" --preview`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func runGenerate(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := currentConfig()

	var draft reportDraft
	if genInput != "" {
		tf, err := core.LoadTaskFile(genInput)
		if err != nil {
			return err
		}
		tf.ApplyTo(cfg)
		draft.applyTaskFile(tf)
	}
	draft.Employee = cfg.Employee
	draft.Signatories = cfg.Signatories
	draft.applyFlags(cmd)

	if ConfigMgr != nil {
		if err := ConfigMgr.ValidateConfig(cfg); err != nil {
			return err
		}
	}

	if missing := draft.missing(); len(missing) > 0 {
		if genNoInput || !stdinIsTerminal() {
			if required := withoutField(missing, fieldTasks); len(required) > 0 {
				return fmt.Errorf("missing required report fields: %s (set them in %s, the --input file, or flags)",
					strings.Join(required, ", "), core.ConfigFileName)
			}
		} else if err := runPrompt(&draft, missing); err != nil {
			return err
		}
	}

	period, err := models.NewPeriod(draft.Year, draft.Month, models.Half(draft.Half))
	if err != nil {
		return fmt.Errorf("invalid report period: %w", err)
	}

	var enhancer core.TextEnhancer
	if !genNoEnhance {
		enhancer = newEnhancer(ctx, cfg.Enhancer)
	}
	gen := core.NewReportGenerator(enhancer, render.NewMarkdownRenderer(), cfg.Output.Dir, Events, logger)

	report, err := gen.Generate(ctx, models.ReportRequest{
		Employee:    draft.Employee,
		Period:      period,
		Tasks:       draft.Tasks,
		Signatories: draft.Signatories,
		OutputPath:  genOutput,
	})
	if errors.Is(err, core.ErrNoTasks) {
		return fmt.Errorf("%w: add tasks after the TASKS marker of the input file or pass --task", err)
	}
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	out := cmd.OutOrStdout()
	if genPreview {
		fmt.Fprintln(out, render.Preview(report))
	}

	path, err := gen.WriteReport(report, genOutput)
	if err != nil {
		return err
	}
	logger.Debug("report written", zap.String("run_id", report.RunID), zap.String("path", path))

	fmt.Fprintf(out, "Report for %s written to %s (%d tasks in %d weeks)\n",
		period.Label(), path, report.Assignment.TaskCount(), len(report.Assignment.Weeks))
	return nil
}

// Report fields that can be missing before generation.
const (
	fieldName     = "name"
	fieldPosition = "position"
	fieldOffice   = "office"
	fieldYear     = "year"
	fieldMonth    = "month"
	fieldPeriod   = "period"
	fieldTasks    = "tasks"
)

// reportDraft collects report fields from config, task file, flags and
// prompts before they are turned into a ReportRequest.
type reportDraft struct {
	Employee    models.Employee
	Signatories models.Signatories
	Year        int
	Month       int
	Half        int
	Tasks       []string
}

func (d *reportDraft) applyTaskFile(tf *core.TaskFile) {
	if tf.Year != nil {
		d.Year = *tf.Year
	}
	if tf.Month != nil {
		d.Month = *tf.Month
	}
	if tf.Period != nil {
		d.Half = *tf.Period
	}
	d.Tasks = append(d.Tasks, tf.Tasks...)
}

func (d *reportDraft) applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		d.Employee.Name = genName
	}
	if flags.Changed("position") {
		d.Employee.Position = genPosition
	}
	if flags.Changed("office") {
		d.Employee.Office = genOffice
	}
	if flags.Changed("year") {
		d.Year = genYear
	}
	if flags.Changed("month") {
		d.Month = genMonth
	}
	if flags.Changed("half") {
		d.Half = genHalf
	}
	d.Tasks = append(d.Tasks, genTasks...)
}

// missing lists the required fields that are still empty, in prompt order.
func (d *reportDraft) missing() []string {
	var fields []string
	if strings.TrimSpace(d.Employee.Name) == "" {
		fields = append(fields, fieldName)
	}
	if strings.TrimSpace(d.Employee.Position) == "" {
		fields = append(fields, fieldPosition)
	}
	if strings.TrimSpace(d.Employee.Office) == "" {
		fields = append(fields, fieldOffice)
	}
	if d.Year == 0 {
		fields = append(fields, fieldYear)
	}
	if d.Month == 0 {
		fields = append(fields, fieldMonth)
	}
	if d.Half == 0 {
		fields = append(fields, fieldPeriod)
	}
	if len(d.Tasks) == 0 {
		fields = append(fields, fieldTasks)
	}
	return fields
}

// set validates and stores a single prompted value.
func (d *reportDraft) set(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	switch field {
	case fieldName:
		d.Employee.Name = value
	case fieldPosition:
		d.Employee.Position = value
	case fieldOffice:
		d.Employee.Office = value
	case fieldYear:
		y, err := strconv.Atoi(value)
		if err != nil || y < 1 || y > 9999 {
			return fmt.Errorf("year must be a number between 1 and 9999")
		}
		d.Year = y
	case fieldMonth:
		m, ok := parseMonth(value)
		if !ok {
			return fmt.Errorf("month must be 1-12 or a month name")
		}
		d.Month = m
	case fieldPeriod:
		if value != "1" && value != "2" {
			return fmt.Errorf("period must be 1 (days 1-15) or 2 (day 16 to end of month)")
		}
		d.Half, _ = strconv.Atoi(value)
	case fieldTasks:
		d.Tasks = append(d.Tasks, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func parseMonth(value string) (int, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, n >= 1 && n <= 12
	}
	lower := strings.ToLower(value)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) >= 3 && strings.HasPrefix(name, lower)) {
			return int(m), true
		}
	}
	return 0, false
}

func withoutField(fields []string, drop string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genInput, "input", "i", "", "Task file with KEY: value header lines and a TASKS section")
	f.IntVar(&genYear, "year", 0, "Report year")
	f.IntVar(&genMonth, "month", 0, "Report month (1-12)")
	f.IntVar(&genHalf, "half", 0, "Report period: 1 for days 1-15, 2 for day 16 to end of month")
	f.StringArrayVarP(&genTasks, "task", "t", nil, "Task description (repeatable)")
	f.StringVarP(&genOutput, "output", "o", "", "Output file (default: ACCOMPLISHMENT_REPORT_<Month>_<start>-<end>_<year>.md in output.dir)")
	f.StringVar(&genName, "name", "", "Employee name")
	f.StringVar(&genPosition, "position", "", "Employee position")
	f.StringVar(&genOffice, "office", "", "Employee office")
	f.BoolVar(&genNoEnhance, "no-enhance", false, "Keep tasks exactly as written")
	f.BoolVar(&genNoInput, "no-input", false, "Never prompt; fail when required fields are missing")
	f.BoolVar(&genPreview, "preview", false, "Print the report table to the terminal before writing it")
	_ = generateCmd.RegisterFlagCompletionFunc("half", completeHalf)
	_ = generateCmd.RegisterFlagCompletionFunc("month", completeMonth)
	_ = generateCmd.RegisterFlagCompletionFunc("input", completeTaskFile)
	rootCmd.AddCommand(generateCmd)
}
