// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the extraction stages that turn a free-text
// project description into a validated parts list.
// Implements: prd007-pipeline (R1-R4); docs/ARCHITECTURE § Pipeline Interface.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/catalog"
	"github.com/pdiddy/parts-engine/internal/planner"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/internal/requirements"
	"github.com/pdiddy/parts-engine/internal/selection"
	"github.com/pdiddy/parts-engine/internal/synthesis"
	"github.com/pdiddy/parts-engine/internal/websearch"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// Pipeline runs the stages strictly in order: requirements, planning, search,
// synthesis, selection, enrichment. Stages share one reasoning client so its
// throttle applies globally; categories are processed one at a time for the
// same reason. The pipeline performs no retries and no response parsing of
// its own.
//
// Only first-stage reasoning failures and an empty description are terminal.
// Every later failure degrades: the affected category, query, or part gets an
// empty value and the run still returns whatever was built (R4.1).
type Pipeline struct {
	reasoner   reasoning.Completer
	searcher   websearch.Service
	catalog    catalog.Service
	catalogCfg types.CatalogConfig
	logger     *zap.Logger
}

// New builds a Pipeline. The catalog service may be nil, in which case
// enrichment is skipped. A nil logger disables logging.
func New(reasoner reasoning.Completer, searcher websearch.Service, cat catalog.Service, catalogCfg types.CatalogConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		reasoner:   reasoner,
		searcher:   searcher,
		catalog:    cat,
		catalogCfg: catalogCfg,
		logger:     logger,
	}
}

// Run executes the full pipeline for one project description.
func (p *Pipeline) Run(ctx context.Context, description string) (*types.RunResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("project description is empty")
	}

	result := &types.RunResult{
		ID:          uuid.NewString(),
		Description: description,
		Steps:       []types.AgentStep{},
		CreatedAt:   time.Now().UTC(),
	}
	addStep := func(step, reasoning string, queries []string) {
		result.Steps = append(result.Steps, types.AgentStep{
			Step:          step,
			Reasoning:     reasoning,
			SearchQueries: queries,
			Timestamp:     time.Now().UTC(),
		})
		p.logger.Info("pipeline step", zap.String("step", step))
	}

	// Stage 1: requirement extraction. The only stage whose reasoning
	// failure is terminal; everything after degrades instead.
	addStep("Analyzing project requirements",
		"Identifying component categories, specifications, and constraints", nil)
	categories, err := requirements.Extract(ctx, p.reasoner, description, p.logger)
	if err != nil {
		return nil, fmt.Errorf("extracting requirements: %w", err)
	}

	// Stage 2: search planning.
	addStep("Planning web searches",
		"Crafting search queries for each component category", nil)
	plan, err := planner.Plan(ctx, p.reasoner, categories, p.logger)
	if err != nil {
		p.logger.Warn("search planning failed, continuing without a plan", zap.Error(err))
		plan = []types.SearchPlanItem{}
	}
	planByCategory := make(map[string]types.SearchPlanItem, len(plan))
	for _, item := range plan {
		planByCategory[strings.ToLower(item.Category)] = item
	}

	// Stage 3: search execution, one category at a time.
	evidence := make(map[string][]types.SearchResult, len(categories))
	for _, category := range categories {
		key := strings.ToLower(category.Name)
		item, ok := planByCategory[key]
		if !ok {
			continue
		}
		addStep(fmt.Sprintf("Searching the web for %s", category.Name), "", item.Queries)
		evidence[key] = websearch.Execute(ctx, p.searcher, item, p.logger)
	}

	// Stage 4: component synthesis. A category with no evidence still gets
	// a synthesis pass; a failed pass degrades to an empty category.
	result.PartsList = types.PartsList{Categories: []types.CategoryParts{}}
	for _, category := range categories {
		addStep(fmt.Sprintf("Synthesizing components for %s", category.Name),
			"Proposing purchasable parts from the collected evidence", nil)
		parts, err := synthesis.Synthesize(ctx, p.reasoner, category, evidence[strings.ToLower(category.Name)], p.logger)
		if err != nil {
			p.logger.Warn("synthesis failed, keeping empty category",
				zap.String("category", category.Name), zap.Error(err))
			parts = types.CategoryParts{Name: category.Name, Components: []types.Component{}}
		}
		result.PartsList.Categories = append(result.PartsList.Categories, parts)
	}

	// Stage 5: final selection.
	addStep("Selecting the final parts list",
		"Choosing one option per component and checking compatibility", nil)
	final, err := selection.Select(ctx, p.reasoner, result.PartsList, description, p.logger)
	if err != nil {
		p.logger.Warn("selection failed, keeping empty final list", zap.Error(err))
		final = types.FinalList{FinalParts: []types.FinalPart{}}
	}

	// Stage 6: catalog enrichment, best-effort. A failed authentication
	// skips enrichment but keeps the final list.
	if p.catalog != nil && p.catalogCfg.ClientID != "" && p.catalogCfg.ClientSecret != "" && len(final.FinalParts) > 0 {
		addStep("Enriching selections from the parts catalog",
			"Replacing vendor links and datasheets with catalog records", nil)
		summary, err := catalog.Enrich(ctx, p.catalog, p.catalogCfg.ClientID, p.catalogCfg.ClientSecret, &final, p.logger)
		if err != nil {
			p.logger.Warn("catalog enrichment skipped", zap.Error(err))
		} else {
			p.logger.Info("catalog enrichment complete",
				zap.Int("enriched", summary.Enriched),
				zap.Int("no_match", summary.NoMatch),
				zap.Int("failed", summary.Failed))
		}
	} else if len(final.FinalParts) > 0 {
		p.logger.Info("catalog enrichment skipped: no catalog credentials")
	}
	result.FinalList = final

	return result, nil
}
