// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package datasheet

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/parts-engine/internal/httputil"
	"github.com/pdiddy/parts-engine/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake datasheet"

func testConfig(dir string) types.DatasheetConfig {
	return types.DatasheetConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "parts-engine-test/0.1",
		},
		Dir:           dir,
		DownloadDelay: 0,
	}
}

func partWith(name, link string) types.FinalPart {
	return types.FinalPart{
		Component: name,
		SelectedOption: types.ComponentOption{
			Name:          name,
			DatasheetLink: link,
		},
	}
}

func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ds/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, fakePDFContent)
	}))
}

func TestFetchPartDownloads(t *testing.T) {
	ts := pdfServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	part := partWith("ESP32-WROOM-32E", ts.URL+"/ds/esp32.pdf")
	path, skipped, err := FetchPart(context.Background(), ts.Client(), part, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchPart: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	wantPath := filepath.Join(dir, "esp32-wroom-32e.pdf")
	if path != wantPath {
		t.Errorf("path = %q, want %q", path, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("PDF content = %q, want %q", string(data), fakePDFContent)
	}
	if !strings.Contains(buf.String(), "downloading:") {
		t.Error("output should contain 'downloading:'")
	}
}

func TestFetchPartSendsHeaders(t *testing.T) {
	var gotAgent, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	cfg := testConfig(t.TempDir())
	var buf bytes.Buffer

	part := partWith("LM317", ts.URL+"/lm317.pdf")
	if _, _, err := FetchPart(context.Background(), ts.Client(), part, cfg, &buf); err != nil {
		t.Fatalf("FetchPart: %v", err)
	}
	if gotAgent != "parts-engine-test/0.1" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "parts-engine-test/0.1")
	}
	if gotAccept != "application/pdf" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/pdf")
	}
}

func TestFetchPartSkipsExisting(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)

	// Pre-create the PDF file.
	existing := filepath.Join(dir, "lm317.pdf")
	if err := os.WriteFile(existing, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	part := partWith("LM317", ts.URL+"/lm317.pdf")
	path, skipped, err := FetchPart(context.Background(), ts.Client(), part, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchPart: %v", err)
	}
	if !skipped {
		t.Error("expected skipped, got download")
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("server calls = %d, want 0", atomic.LoadInt32(&calls))
	}

	// File untouched.
	data, _ := os.ReadFile(existing)
	if string(data) != "existing" {
		t.Errorf("existing file was overwritten: %q", string(data))
	}
	if !strings.Contains(buf.String(), "skipped:") {
		t.Error("output should contain 'skipped:'")
	}
}

func TestFetchPartNoLink(t *testing.T) {
	cfg := testConfig(t.TempDir())
	var buf bytes.Buffer

	part := partWith("Mystery Part", "")
	_, _, err := FetchPart(context.Background(), http.DefaultClient, part, cfg, &buf)
	if err == nil {
		t.Fatal("expected error for missing datasheet link")
	}
	if !strings.Contains(err.Error(), "no datasheet link") {
		t.Errorf("error = %v, want mention of missing link", err)
	}
}

func TestFetchPartHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	part := partWith("LM317", ts.URL+"/missing.pdf")
	_, _, err := FetchPart(context.Background(), ts.Client(), part, cfg, &buf)
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error = %v, want mention of HTTP 404", err)
	}

	// No file should be left behind.
	if _, statErr := os.Stat(filepath.Join(dir, "lm317.pdf")); statErr == nil {
		t.Error("no file should exist after a failed download")
	}
}

func TestFetchPartRetriesRateLimit(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = 1 * time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	part := partWith("BME280", ts.URL+"/bme280.pdf")
	path, skipped, err := FetchPart(context.Background(), ts.Client(), part, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchPart: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("server calls = %d, want 2", atomic.LoadInt32(&calls))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("PDF content = %q, want %q", string(data), fakePDFContent)
	}
}

func TestFetchBatch(t *testing.T) {
	ts := pdfServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	parts := []types.FinalPart{
		partWith("ESP32-WROOM-32E", ts.URL+"/ds/esp32.pdf"),
		partWith("No Link Part", ""),
		partWith("Broken Part", ts.URL+"/nope.pdf"),
	}

	result := FetchBatch(context.Background(), ts.Client(), parts, cfg, &buf)
	if result.Downloaded != 1 {
		t.Errorf("Downloaded = %d, want 1", result.Downloaded)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}

	out := buf.String()
	if !strings.Contains(out, "no datasheet link") {
		t.Error("output should mention the missing link")
	}
	if !strings.Contains(out, "failed:") {
		t.Error("output should contain 'failed:'")
	}
	if !strings.Contains(out, "Batch summary: 1 downloaded, 1 skipped, 1 failed (total: 3)") {
		t.Errorf("output missing batch summary, got:\n%s", out)
	}
}

func TestFetchBatchEmpty(t *testing.T) {
	var buf bytes.Buffer
	result := FetchBatch(context.Background(), http.DefaultClient, nil, testConfig(t.TempDir()), &buf)
	if result.Total() != 0 {
		t.Errorf("Total() = %d, want 0", result.Total())
	}
	if result.HasFailures() {
		t.Error("HasFailures() = true, want false")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "LM317", "lm317"},
		{"spaces", "Raspberry Pi Pico W", "raspberry-pi-pico-w"},
		{"punctuation runs", "ESP32-WROOM-32E (4MB)", "esp32-wroom-32e-4mb"},
		{"leading and trailing junk", "  ++ADS1115++  ", "ads1115"},
		{"empty", "", ""},
		{"only punctuation", "///", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
