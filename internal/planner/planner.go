// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package planner turns component categories into per-category web-search
// query plans, the second stage of the pipeline.
// Implements: prd002-search-planning (R1, R2); docs/ARCHITECTURE § Planning.
package planner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/jsonutil"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// planResponse is the wire shape the prompt asks the model for.
type planResponse struct {
	Plan []types.SearchPlanItem `json:"plan"`
}

// Plan issues one reasoning call asking for 3-5 search queries per category,
// returned as an array keyed by category name. A returned error means the
// completion itself failed; an unparseable response degrades to an empty plan
// (R2.2). An empty category list yields an empty plan without a call.
func Plan(ctx context.Context, client reasoning.Completer, categories []types.Category, logger *zap.Logger) ([]types.SearchPlanItem, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(categories) == 0 {
		return []types.SearchPlanItem{}, nil
	}

	prompt, err := renderPrompt(categories)
	if err != nil {
		return nil, fmt.Errorf("rendering plan prompt: %w", err)
	}

	text, err := client.Complete(ctx, prompt, systemPrompt, true)
	if err != nil {
		return nil, fmt.Errorf("search plan completion: %w", err)
	}

	var resp planResponse
	if err := jsonutil.Extract(text, &resp); err != nil {
		logger.Warn("search planning degraded to empty plan", zap.Error(err))
		return []types.SearchPlanItem{}, nil
	}

	items, removed := Dedupe(resp.Plan)
	if removed > 0 {
		logger.Debug("collapsed duplicate plan items", zap.Int("removed", removed))
	}
	return items, nil
}

// Dedupe collapses plan items whose category names match case-insensitively,
// keeping the first occurrence's queries and casing (R2.3). Entries with
// empty category names are dropped.
func Dedupe(items []types.SearchPlanItem) ([]types.SearchPlanItem, int) {
	seen := make(map[string]bool)
	deduped := make([]types.SearchPlanItem, 0, len(items))
	removed := 0

	for _, item := range items {
		category := strings.TrimSpace(item.Category)
		if category == "" {
			continue
		}
		key := strings.ToLower(category)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		item.Category = category
		deduped = append(deduped, item)
	}
	return deduped, removed
}
