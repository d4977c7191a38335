// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/parts-engine/internal/runlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and inspect past pipeline runs",
	Long: `History lists completed runs from the local history database, newest
first. With --search, runs are matched by full-text search over their
descriptions. Use "history show" with a run ID to print one run in full.`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print one stored run",
	Long: `Show prints a stored run's final parts list. Use --steps to include the
stage-by-stage trace the pipeline emitted while the run executed.`,
	RunE: runHistoryShow,
}

func init() {
	historyCmd.Flags().String("search", "", "full-text search over run descriptions")
	historyCmd.Flags().Int("limit", 0, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	historyShowCmd.Flags().Bool("steps", false, "include the stage trace")
	historyShowCmd.Flags().Bool("json", false, "output as JSON")

	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := runlog.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")

	summaries, err := store.ListRuns(cmd.Context(), runlog.ListOptions{Search: search, MaxResults: limit})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-19s  %5s  %10s  %s\n",
		"ID", "Created", "Parts", "Cost", "Description")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, s := range summaries {
		description := s.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-19s  %5d  %10s  %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.PartCount, s.TotalCost, description)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(summaries))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a run ID (list them with \"parts-engine history\")")
	}

	store, err := runlog.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printRunResult(result, "")

	if withSteps, _ := cmd.Flags().GetBool("steps"); withSteps {
		fmt.Println("\nTrace:")
		for i, step := range result.Steps {
			fmt.Printf("%2d. %s\n", i+1, step.Step)
			if step.Reasoning != "" {
				fmt.Printf("      %s\n", step.Reasoning)
			}
			if len(step.SearchQueries) > 0 {
				fmt.Printf("      queries: %s\n", strings.Join(step.SearchQueries, "; "))
			}
		}
	}
	return nil
}
