package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/pkg/models"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter .iarconfig and task file",
	Long: `Initialize a directory for report generation: a .iarconfig with the
default enhancer settings, a sample tasks.txt for the current period, and a
.gitignore for generated reports and the event log.

Safe to run on existing directories -- files that already exist are skipped
and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		position, _ := cmd.Flags().GetString("position")
		office, _ := cmd.Flags().GetString("office")

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath: absPath,
			Employee: models.Employee{Name: name, Position: position, Office: office},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "Employee name for the starter config")
	initCmd.Flags().String("position", "", "Employee position for the starter config")
	initCmd.Flags().String("office", "", "Employee office for the starter config")
	rootCmd.AddCommand(initCmd)
}
