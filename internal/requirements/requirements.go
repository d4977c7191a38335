// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package requirements turns a free-text project description into a
// deduplicated component category list, the first stage of the pipeline.
// Implements: prd001-requirements (R1-R3); docs/ARCHITECTURE § Requirements.
package requirements

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/jsonutil"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// requirementsResponse is the wire shape the prompt asks the model for.
type requirementsResponse struct {
	Categories []types.Category `json:"categories"`
}

// Extract issues one reasoning call to identify component categories with
// specifications and constraints. A returned error means the completion
// itself failed; an unparseable response degrades to an empty category list
// (R3.1) so downstream stages run with zero categories.
func Extract(ctx context.Context, client reasoning.Completer, description string, logger *zap.Logger) ([]types.Category, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prompt, err := renderPrompt(description)
	if err != nil {
		return nil, fmt.Errorf("rendering requirements prompt: %w", err)
	}

	text, err := client.Complete(ctx, prompt, systemPrompt, true)
	if err != nil {
		return nil, fmt.Errorf("requirements completion: %w", err)
	}

	var resp requirementsResponse
	if err := jsonutil.Extract(text, &resp); err != nil {
		logger.Warn("requirement extraction degraded to empty category list",
			zap.Error(err))
		return []types.Category{}, nil
	}

	categories, removed := Dedupe(resp.Categories)
	if removed > 0 {
		logger.Debug("collapsed duplicate categories", zap.Int("removed", removed))
	}
	return categories, nil
}

// Dedupe collapses categories whose names match case-insensitively, keeping
// the first occurrence's fields and casing (R2.1, R2.2). Entries with empty
// names are dropped.
func Dedupe(categories []types.Category) ([]types.Category, int) {
	seen := make(map[string]bool)
	deduped := make([]types.Category, 0, len(categories))
	removed := 0

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		c.Name = name
		deduped = append(deduped, c)
	}
	return deduped, removed
}
