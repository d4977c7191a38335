// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIURL = "https://api.tavily.com/search"

const defaultMaxResults = 5

// TavilyService queries the Tavily web search API (R1.2).
type TavilyService struct {
	APIKey     string
	MaxResults int
	Client     *http.Client
}

// NewTavilyService builds a Tavily provider from config. A zero MaxResults
// falls back to the provider default.
func NewTavilyService(cfg types.SearchConfig) *TavilyService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TavilyService{
		APIKey:     cfg.APIKey,
		MaxResults: cfg.MaxResults,
		Client:     &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (s *TavilyService) Name() string { return "tavily" }

// Search runs one query and maps the provider's results to snippets. The
// synthesized answer is included when Tavily returns one.
func (s *TavilyService) Search(ctx context.Context, query string) (Response, error) {
	maxResults := s.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        s.APIKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Response{}, fmt.Errorf("%w: Tavily API returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Response{}, fmt.Errorf("%w: parsing Tavily response: %v", ErrUnavailable, err)
	}

	out := Response{Answer: tr.Answer, Results: make([]types.Snippet, 0, len(tr.Results))}
	for _, r := range tr.Results {
		out.Results = append(out.Results, types.Snippet{Title: r.Title, Content: r.Content})
	}
	return out, nil
}

// Tavily API JSON structures.
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
