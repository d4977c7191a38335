// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog enriches selected parts with authoritative vendor data
// from an electronic parts catalog.
// Implements: prd006-enrichment (R1-R3); docs/ARCHITECTURE § Enrichment.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// ErrAuthFailed indicates the client-credentials exchange was rejected.
var ErrAuthFailed = errors.New("catalog authentication failed")

// ErrUnavailable indicates the catalog could not serve a lookup.
var ErrUnavailable = errors.New("catalog unavailable")

// Product is one catalog record for a part.
type Product struct {
	Name         string
	DatasheetURL string
	PhotoURL     string
	ProductURL   string
	UnitPrice    float64
}

// Service is a parts catalog provider.
type Service interface {
	// Name identifies the provider; it is also used as the vendor name on
	// enriched links.
	Name() string

	// Authenticate performs a client-credentials exchange and returns a
	// session token for lookups.
	Authenticate(ctx context.Context, clientID, clientSecret string) (string, error)

	// Lookup searches the catalog by keyword. The first product is the
	// best match; an empty slice means no match.
	Lookup(ctx context.Context, token, keyword string) ([]Product, error)
}

// EnrichSummary reports per-part outcomes of an enrichment pass.
type EnrichSummary struct {
	// Enriched counts parts overwritten with catalog data.
	Enriched int

	// NoMatch counts parts the catalog had no record for.
	NoMatch int

	// Failed counts parts whose lookup errored.
	Failed int
}

// Total returns the number of parts processed.
func (s EnrichSummary) Total() int { return s.Enriched + s.NoMatch + s.Failed }

// HasFailures reports whether any lookup errored.
func (s EnrichSummary) HasFailures() bool { return s.Failed > 0 }

// Enrich authenticates once, then looks up each final part by its selected
// option's name, mutating the option in place. A matched part has its
// datasheet link, photo URL, and vendor links overwritten with catalog data;
// a part with no match or a failed lookup has its datasheet link cleared and
// vendor links emptied rather than keeping unverified values. Lookup failures
// are per-part and never abort the remaining parts; only the authentication
// exchange itself returns an error.
func Enrich(ctx context.Context, svc Service, clientID, clientSecret string, list *types.FinalList, logger *zap.Logger) (EnrichSummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	token, err := svc.Authenticate(ctx, clientID, clientSecret)
	if err != nil {
		return EnrichSummary{}, fmt.Errorf("authenticating with %s: %w", svc.Name(), err)
	}

	var summary EnrichSummary
	for i := range list.FinalParts {
		option := &list.FinalParts[i].SelectedOption
		keyword := strings.TrimSpace(option.Name)
		if keyword == "" {
			summary.NoMatch++
			clearEnrichment(option)
			continue
		}

		products, err := svc.Lookup(ctx, token, keyword)
		if err != nil {
			summary.Failed++
			clearEnrichment(option)
			logger.Warn("catalog lookup failed",
				zap.String("catalog", svc.Name()),
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}
		if len(products) == 0 {
			summary.NoMatch++
			clearEnrichment(option)
			logger.Debug("no catalog match", zap.String("keyword", keyword))
			continue
		}

		applyProduct(option, products[0], svc.Name())
		summary.Enriched++
	}
	return summary, nil
}

// clearEnrichment strips vendor data the catalog could not confirm.
func clearEnrichment(option *types.ComponentOption) {
	option.DatasheetLink = ""
	option.VendorLinks = []types.VendorLink{}
}

// applyProduct overwrites the option's vendor fields with the catalog record.
// An absent datasheet or product URL clears the field; a fallback URL is
// never invented.
func applyProduct(option *types.ComponentOption, product Product, vendor string) {
	option.DatasheetLink = product.DatasheetURL
	option.PhotoURL = product.PhotoURL

	if product.ProductURL == "" {
		option.VendorLinks = []types.VendorLink{}
		return
	}
	link := types.VendorLink{Name: vendor, URL: product.ProductURL}
	if product.UnitPrice > 0 {
		link.Price = FormatPrice(product.UnitPrice)
	}
	option.VendorLinks = []types.VendorLink{link}
}

// FormatPrice renders a unit price as a currency-prefixed display string.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
