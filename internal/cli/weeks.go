package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/render"
	"github.com/valter-silva-au/iar/pkg/models"
)

var (
	weeksYear  int
	weeksMonth int
	weeksHalf  int
	weeksJSON  bool
	weeksYAML  bool
)

type weekRow struct {
	Key   string `json:"key" yaml:"key"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Days  int    `json:"days" yaml:"days"`
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Show the working-day weeks of a report period",
	Long: `Show the weeks a report period is split into. Weekends are skipped and a
new week starts whenever a working day falls more than four days after the
first day of the current week.`,
	Example: `  iar weeks --year 2025 --month 11 --half 2
  iar weeks --year 2025 --month 11 --half 1 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if weeksJSON && weeksYAML {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}
		period, err := models.NewPeriod(weeksYear, weeksMonth, models.Half(weeksHalf))
		if err != nil {
			return fmt.Errorf("invalid report period: %w", err)
		}

		weeks := core.PlanWeeks(period)
		rows := make([]weekRow, len(weeks))
		for i, w := range weeks {
			rows[i] = weekRow{
				Key:   w.Key(),
				Start: w.Start.Format(time.DateOnly),
				End:   w.End.Format(time.DateOnly),
				Days:  w.Days(),
			}
		}

		out := cmd.OutOrStdout()
		switch {
		case weeksJSON:
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting weeks as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case weeksYAML:
			data, err := yaml.Marshal(rows)
			if err != nil {
				return fmt.Errorf("formatting weeks as YAML: %w", err)
			}
			fmt.Fprint(out, string(data))
		default:
			fmt.Fprintf(out, "%s (%d weeks)\n", period.Label(), len(weeks))
			fmt.Fprintln(out, render.WeekGrid(weeks))
		}
		return nil
	},
}

func init() {
	weeksCmd.Flags().IntVar(&weeksYear, "year", 0, "Report year")
	weeksCmd.Flags().IntVar(&weeksMonth, "month", 0, "Report month (1-12)")
	weeksCmd.Flags().IntVar(&weeksHalf, "half", 0, "Report period: 1 for days 1-15, 2 for day 16 to end of month")
	weeksCmd.Flags().BoolVar(&weeksJSON, "json", false, "Output weeks as JSON")
	weeksCmd.Flags().BoolVar(&weeksYAML, "yaml", false, "Output weeks as YAML")
	_ = weeksCmd.MarkFlagRequired("year")
	_ = weeksCmd.MarkFlagRequired("month")
	_ = weeksCmd.MarkFlagRequired("half")
	_ = weeksCmd.RegisterFlagCompletionFunc("half", completeHalf)
	_ = weeksCmd.RegisterFlagCompletionFunc("month", completeMonth)
	rootCmd.AddCommand(weeksCmd)
}
