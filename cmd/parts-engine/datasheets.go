// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/parts-engine/internal/datasheet"
	"github.com/pdiddy/parts-engine/pkg/types"
)

const (
	defaultDatasheetTimeout = 60 * time.Second
	defaultDatasheetDelay   = 1 * time.Second
)

var datasheetsCmd = &cobra.Command{
	Use:   "datasheets [run-id]",
	Short: "Download datasheet PDFs for a run's selected parts",
	Long: `Datasheets downloads the datasheet PDF for every selected part of a stored
run (or a run YAML file via --file) that carries a datasheet link. Files
that already exist are skipped.`,
	RunE: runDatasheets,
}

func init() {
	datasheetsCmd.Flags().String("file", "", "read the run from a YAML file instead of the history database")
	datasheetsCmd.Flags().String("dir", "datasheets", "directory for downloaded PDFs")
	datasheetsCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	datasheetsCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")

	rootCmd.AddCommand(datasheetsCmd)
}

func runDatasheets(cmd *cobra.Command, args []string) error {
	result, err := loadRun(cmd, args)
	if err != nil {
		return err
	}
	if len(result.FinalList.FinalParts) == 0 {
		return fmt.Errorf("run %s has no selected parts", result.ID)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultDatasheetTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDatasheetDelay
	}
	dir, _ := cmd.Flags().GetString("dir")

	cfg := types.DatasheetConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Dir:           dir,
		DownloadDelay: delay,
	}

	client := &http.Client{Timeout: cfg.Timeout}
	batch := datasheet.FetchBatch(cmd.Context(), client, result.FinalList.FinalParts, cfg, os.Stdout)
	if batch.HasFailures() {
		return fmt.Errorf("%d datasheet(s) failed to download", batch.Failed)
	}
	return nil
}
