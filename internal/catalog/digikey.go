// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// DigiKey endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	digikeyTokenURL  = "https://api.digikey.com/v1/oauth2/token"
	digikeySearchURL = "https://api.digikey.com/products/v3/search/keyword"
)

// DigiKeyService queries the DigiKey product API (R1.1). Lookups require the
// client ID as a header alongside the session token, so Authenticate records
// it for the rest of the run.
type DigiKeyService struct {
	Client *http.Client

	clientID string
}

// NewDigiKeyService builds a DigiKey provider from config.
func NewDigiKeyService(cfg types.CatalogConfig) *DigiKeyService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DigiKeyService{Client: &http.Client{Timeout: timeout}}
}

// Name returns the provider name as shown on vendor links.
func (s *DigiKeyService) Name() string { return "DigiKey" }

// Authenticate performs the OAuth2 client-credentials exchange and returns
// the access token.
func (s *DigiKeyService) Authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	conf := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     digikeyTokenURL,
	}
	if s.Client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.Client)
	}

	token, err := conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	s.clientID = clientID
	return token.AccessToken, nil
}

// Lookup runs a keyword search asking for the single best match.
func (s *DigiKeyService) Lookup(ctx context.Context, token, keyword string) ([]Product, error) {
	body, err := json.Marshal(digikeySearchRequest{Keywords: keyword, RecordCount: 1})
	if err != nil {
		return nil, fmt.Errorf("encoding lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, digikeySearchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", s.clientID)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: DigiKey API returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var dr digikeySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("%w: parsing DigiKey response: %v", ErrUnavailable, err)
	}

	products := make([]Product, 0, len(dr.Products))
	for _, p := range dr.Products {
		name := p.ManufacturerPartNumber
		if name == "" {
			name = p.ProductDescription
		}
		products = append(products, Product{
			Name:         name,
			DatasheetURL: p.PrimaryDatasheet,
			PhotoURL:     p.PrimaryPhoto,
			ProductURL:   p.ProductURL,
			UnitPrice:    p.UnitPrice,
		})
	}
	return products, nil
}

// DigiKey API JSON structures.
type digikeySearchRequest struct {
	Keywords    string `json:"Keywords"`
	RecordCount int    `json:"RecordCount"`
}

type digikeySearchResponse struct {
	Products []digikeyProduct `json:"Products"`
}

type digikeyProduct struct {
	ManufacturerPartNumber string  `json:"ManufacturerPartNumber"`
	ProductDescription     string  `json:"ProductDescription"`
	PrimaryDatasheet       string  `json:"PrimaryDatasheet"`
	PrimaryPhoto           string  `json:"PrimaryPhoto"`
	ProductURL             string  `json:"ProductUrl"`
	UnitPrice              float64 `json:"UnitPrice"`
}
