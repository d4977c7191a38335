// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/parts-engine/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Render a run as a Markdown bill of materials",
	Long: `Report renders a stored run (or a run YAML file via --file) as a Markdown
bill of materials: the final selections, totals, the candidates that were
considered, and warnings for datasheet links pointing outside the known
manufacturer and distributor domains.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("file", "", "render a run YAML file instead of a stored run")
	reportCmd.Flags().String("output", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	result, err := loadRun(cmd, args)
	if err != nil {
		return err
	}

	markdown := report.GenerateMarkdown(result)

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Print(markdown)
		return nil
	}
	if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", output)
	return nil
}
