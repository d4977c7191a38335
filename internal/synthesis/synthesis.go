// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis turns a category's search evidence into concrete
// candidate components with purchasable options.
// Implements: prd004-synthesis (R1, R3); docs/ARCHITECTURE § Synthesis.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/jsonutil"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/pkg/types"
)

const (
	// maxComponentsPerCategory bounds how many components a category keeps.
	maxComponentsPerCategory = 4

	// maxOptionsPerComponent bounds how many options a component keeps.
	maxOptionsPerComponent = 4
)

type synthesisResponse struct {
	Components []types.Component `json:"components"`
}

// Synthesize issues one reasoning call proposing components for the category
// from its search evidence. A returned error means the completion failed; an
// unparseable response degrades to a category with no components. Components
// and options beyond the caps are dropped, as are entries without names.
func Synthesize(ctx context.Context, client reasoning.Completer, category types.Category, results []types.SearchResult, logger *zap.Logger) (types.CategoryParts, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	empty := types.CategoryParts{Name: category.Name, Components: []types.Component{}}

	prompt, err := renderPrompt(category, results)
	if err != nil {
		return empty, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	text, err := client.Complete(ctx, prompt, systemPrompt, true)
	if err != nil {
		return empty, fmt.Errorf("synthesis completion for %q: %w", category.Name, err)
	}

	var parsed synthesisResponse
	if err := jsonutil.Extract(text, &parsed); err != nil {
		logger.Warn("synthesis degraded to empty category",
			zap.String("category", category.Name),
			zap.Error(err))
		return empty, nil
	}

	return types.CategoryParts{
		Name:       category.Name,
		Components: clampComponents(parsed.Components, category.Name, logger),
	}, nil
}

func clampComponents(components []types.Component, category string, logger *zap.Logger) []types.Component {
	kept := make([]types.Component, 0, len(components))
	for _, component := range components {
		component.Name = strings.TrimSpace(component.Name)
		if component.Name == "" {
			continue
		}
		if len(kept) == maxComponentsPerCategory {
			logger.Debug("dropping excess components",
				zap.String("category", category),
				zap.Int("proposed", len(components)))
			break
		}
		options := make([]types.ComponentOption, 0, len(component.Options))
		for _, option := range component.Options {
			option.Name = strings.TrimSpace(option.Name)
			if option.Name == "" {
				continue
			}
			if len(options) == maxOptionsPerComponent {
				break
			}
			options = append(options, option)
		}
		component.Options = options
		kept = append(kept, component)
	}
	return kept
}
