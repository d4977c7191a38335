// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection picks one option per component from the synthesized
// parts list and reports on cross-component compatibility.
// Implements: prd005-selection (R1, R2); docs/ARCHITECTURE § Selection.
package selection

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/jsonutil"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// Select issues one reasoning call over the whole parts list and the original
// project description. Selector responses tend to wrap JSON in commentary, so
// parsing is looser here than in earlier stages: everything between the first
// and last brace is taken. A returned error means the completion failed; an
// unparseable response degrades to an empty final list. An empty parts list
// yields an empty final list without a call.
func Select(ctx context.Context, client reasoning.Completer, list types.PartsList, description string, logger *zap.Logger) (types.FinalList, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	empty := types.FinalList{FinalParts: []types.FinalPart{}}

	if list.ComponentCount() == 0 {
		return empty, nil
	}

	prompt, err := renderPrompt(list, description)
	if err != nil {
		return empty, fmt.Errorf("rendering selection prompt: %w", err)
	}

	text, err := client.Complete(ctx, prompt, systemPrompt, true)
	if err != nil {
		return empty, fmt.Errorf("selection completion: %w", err)
	}

	var final types.FinalList
	if err := jsonutil.ExtractLoose(text, &final); err != nil {
		logger.Warn("selection degraded to empty final list", zap.Error(err))
		return empty, nil
	}

	parts, removed := Dedupe(final.FinalParts)
	if removed > 0 {
		logger.Debug("collapsed duplicate final parts", zap.Int("removed", removed))
	}
	final.FinalParts = parts
	return final, nil
}

// Dedupe collapses final parts whose component names match
// case-insensitively, keeping the first occurrence. Entries with empty
// component names are dropped.
func Dedupe(parts []types.FinalPart) ([]types.FinalPart, int) {
	seen := make(map[string]bool)
	deduped := make([]types.FinalPart, 0, len(parts))
	removed := 0

	for _, part := range parts {
		component := strings.TrimSpace(part.Component)
		if component == "" {
			continue
		}
		key := strings.ToLower(component)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		part.Component = component
		deduped = append(deduped, part)
	}
	return deduped, removed
}
