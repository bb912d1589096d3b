package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/iar/internal/core"
)

var (
	enhanceNoModel bool
	enhanceJSON    bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <task>...",
	Short: "Rewrite tasks as past-tense accomplishments",
	Long: `Rewrite each argument as a professional past-tense accomplishment sentence
and print it with the tier that produced it (offline, hosted or rule_based).

The backends are the ones configured in .iarconfig; --no-model skips them
and applies only the rule-based rewrite.`,
	Example: `  iar enhance "review the quarterly budget"
  iar enhance --no-model "prepare minutes of the meeting" "update inventory"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		enhancer := core.RuleBasedEnhancer()
		if !enhanceNoModel {
			enhancer = newEnhancer(ctx, currentConfig().Enhancer)
		}

		results := make([]core.Enhancement, 0, len(args))
		for _, task := range args {
			if strings.TrimSpace(task) == "" {
				continue
			}
			results = append(results, enhancer.EnhanceDetailed(ctx, task))
		}

		out := cmd.OutOrStdout()
		if enhanceJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting results as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		for _, r := range results {
			via := string(r.Tier)
			if r.Backend != "" {
				via += ", " + r.Backend
			}
			fmt.Fprintf(out, "%s  [%s]\n", r.Text, via)
		}
		return nil
	},
}

func init() {
	enhanceCmd.Flags().BoolVar(&enhanceNoModel, "no-model", false, "Use only the rule-based rewrite")
	enhanceCmd.Flags().BoolVar(&enhanceJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(enhanceCmd)
}
