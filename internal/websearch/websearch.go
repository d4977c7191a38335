// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch executes planned search queries against a web search
// provider and collects evidence snippets for synthesis.
// Implements: prd003-web-search (R1, R2); docs/ARCHITECTURE § Evidence.
package websearch

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// ErrUnavailable indicates the search provider could not serve a query.
var ErrUnavailable = errors.New("search provider unavailable")

const (
	// maxQueriesPerCategory bounds how many planned queries are issued for
	// a single category; extras are dropped.
	maxQueriesPerCategory = 3

	// maxSnippetsPerQuery bounds how many snippets a single query keeps.
	maxSnippetsPerQuery = 5
)

// Response is a single provider answer for one query.
type Response struct {
	Answer  string
	Results []types.Snippet
}

// Service is a web search provider.
type Service interface {
	// Name identifies the provider in logs.
	Name() string

	// Search runs one query and returns the provider's snippets, plus an
	// optional synthesized answer when the provider supports one.
	Search(ctx context.Context, query string) (Response, error)
}

// Execute runs up to maxQueriesPerCategory of the plan item's queries in
// order. A failed query is logged and skipped with no result entry; queries
// are never retried. The returned slice is never nil.
func Execute(ctx context.Context, svc Service, item types.SearchPlanItem, logger *zap.Logger) []types.SearchResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	queries := item.Queries
	if len(queries) > maxQueriesPerCategory {
		logger.Debug("truncating planned queries",
			zap.String("category", item.Category),
			zap.Int("planned", len(queries)),
			zap.Int("kept", maxQueriesPerCategory))
		queries = queries[:maxQueriesPerCategory]
	}

	results := make([]types.SearchResult, 0, len(queries))
	for _, query := range queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		resp, err := svc.Search(ctx, query)
		if err != nil {
			logger.Warn("search query skipped",
				zap.String("provider", svc.Name()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}

		snippets := resp.Results
		if len(snippets) > maxSnippetsPerQuery {
			snippets = snippets[:maxSnippetsPerQuery]
		}
		results = append(results, types.SearchResult{
			Query:    query,
			Snippets: snippets,
			Answer:   resp.Answer,
		})
	}
	return results
}
