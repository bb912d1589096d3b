package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/iar/internal/core"
	iarmcp "github.com/valter-silva-au/iar/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the iar MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the iar MCP server on stdio",
	Long: `Start the iar MCP server on stdio transport.

The server exposes report planning as MCP tools that AI assistants can
call: plan_weeks, assign_tasks, enhance_task, sanitize_output, get_stats.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cfg := currentConfig()
		enhancer := newEnhancer(ctx, cfg.Enhancer)
		sanitizer := core.Sanitizer{SimilarityThreshold: cfg.Enhancer.SimilarityThreshold}

		srv := iarmcp.NewServer(enhancer, sanitizer, StatsCalc, appVersion)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
