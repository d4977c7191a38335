// Package datasheet downloads datasheet PDFs for the selected parts of a
// completed run.
// Implements: prd009-operations (R4.1-R4.4);
//
//	docs/ARCHITECTURE § Datasheets.
package datasheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/parts-engine/internal/httputil"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// BatchResult holds the outcome of a datasheet download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of parts processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchPart downloads one part's datasheet to cfg.Dir, named after the part.
// A datasheet that already exists on disk is not downloaded again. The
// skipped return value reports whether the download was skipped.
func FetchPart(ctx context.Context, client *http.Client, part types.FinalPart, cfg types.DatasheetConfig, w io.Writer) (path string, skipped bool, err error) {
	link := part.SelectedOption.DatasheetLink
	if link == "" {
		return "", false, fmt.Errorf("no datasheet link for %q", part.SelectedOption.Name)
	}

	slug := Slug(part.SelectedOption.Name)
	if slug == "" {
		return "", false, fmt.Errorf("cannot derive a file name for %q", part.SelectedOption.Name)
	}
	destPath := filepath.Join(cfg.Dir, slug+".pdf")

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		return destPath, true, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating datasheet directory: %w", err)
	}

	fmt.Fprintf(w, "downloading: %s\n", slug)
	if err := downloadFile(ctx, client, link, destPath, cfg); err != nil {
		return "", false, fmt.Errorf("downloading %s: %w", slug, err)
	}
	return destPath, false, nil
}

// FetchBatch downloads datasheets for every final part that has a link,
// printing per-part status and returning a summary. It continues after
// individual failures and applies a delay between consecutive downloads.
// Parts without a datasheet link are counted as skipped.
func FetchBatch(ctx context.Context, client *http.Client, parts []types.FinalPart, cfg types.DatasheetConfig, w io.Writer) BatchResult {
	var result BatchResult
	downloaded := false
	for _, part := range parts {
		if part.SelectedOption.DatasheetLink == "" {
			fmt.Fprintf(w, "skipped: %s (no datasheet link)\n", part.SelectedOption.Name)
			result.Skipped++
			continue
		}
		if downloaded && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		_, wasSkipped, err := FetchPart(ctx, client, part, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", part.SelectedOption.Name, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
			downloaded = true
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file so a partial
// download never lands at the final path. Rate-limited responses are retried
// with backoff; other statuses fail immediately.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.DatasheetConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".datasheet-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Slug converts a part name into a safe lowercase file name: runs of
// non-alphanumeric characters collapse to single hyphens.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
