// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/parts-engine/internal/pipeline"
	"github.com/pdiddy/parts-engine/internal/runlog"
	"github.com/pdiddy/parts-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [description]",
	Short: "Run the parts pipeline on a project description",
	Long: `Run executes the full pipeline on a free-text project description:
requirement extraction, search planning, web search, component synthesis,
final selection, and catalog enrichment. The completed run is written to
the runs directory as YAML and recorded in the history database.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("json", false, "print the full run result as JSON")
	runCmd.Flags().String("runs-dir", "runs", "directory for run YAML artifacts")
	runCmd.Flags().Bool("no-history", false, "do not record the run in the history database")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return fmt.Errorf("provide a project description, e.g. \"a solar-powered weather station\"")
	}

	logger, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p := buildPipeline(pipelineConfig(), logger)
	result, err := p.Run(cmd.Context(), description)
	if err != nil {
		return err
	}

	runsDir, _ := cmd.Flags().GetString("runs-dir")
	runPath := filepath.Join(runsDir, result.ID+".yaml")
	if err := pipeline.WriteRunFile(runPath, result); err != nil {
		return fmt.Errorf("writing run file: %w", err)
	}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := recordRun(cmd.Context(), result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run in history failed: %v\n", err)
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printRunResult(result, runPath)
	return nil
}

func recordRun(ctx context.Context, result *types.RunResult) error {
	store, err := runlog.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(ctx, result)
}

func printRunResult(result *types.RunResult, runPath string) {
	color.Cyan("Parts list for: %s\n", result.Description)

	if len(result.FinalList.FinalParts) == 0 {
		color.Yellow("No parts were selected.")
	}
	for _, part := range result.FinalList.FinalParts {
		color.Green("%s / %s", part.Category, part.Component)
		fmt.Printf("  selected:  %s\n", part.SelectedOption.Name)
		if price := vendorPrice(part.SelectedOption); price != "" {
			fmt.Printf("  price:     %s\n", price)
		}
		if part.SelectedOption.DatasheetLink != "" {
			fmt.Printf("  datasheet: %s\n", part.SelectedOption.DatasheetLink)
		}
		if part.CompatibilityNotes != "" {
			fmt.Printf("  notes:     %s\n", part.CompatibilityNotes)
		}
	}

	fmt.Println()
	if result.FinalList.TotalEstimatedCost != "" {
		color.Yellow("Total estimated cost: %s", result.FinalList.TotalEstimatedCost)
	}
	if result.FinalList.CompatibilitySummary != "" {
		fmt.Printf("Compatibility: %s\n", result.FinalList.CompatibilitySummary)
	}
	if runPath != "" {
		fmt.Printf("\nRun saved to %s\n", runPath)
	}
}

// vendorPrice returns the first vendor-reported price for an option.
func vendorPrice(opt types.ComponentOption) string {
	for _, v := range opt.VendorLinks {
		if v.Price != "" {
			return v.Price
		}
	}
	return ""
}
