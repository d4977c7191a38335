// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the parts-engine pipeline.
// Implements: prd001-requirements (Category, R1.2-R1.4);
//
//	prd002-search-planning (SearchPlanItem, R2.1);
//	prd003-web-search (SearchResult, R3.2);
//	prd004-synthesis (Component, ComponentOption, R4.1-R4.5);
//	prd005-selection (FinalPart, FinalList, R5.1-R5.4);
//	prd007-pipeline (AgentStep, RunResult).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Category is one component category identified in the project description.
// Per prd001-requirements R1.2, category names are unique within a run when
// compared case-insensitively; the first occurrence's casing is kept.
type Category struct {
	// Name is the category label as produced by the reasoning service
	// (e.g. "Microcontrollers").
	Name string `json:"name" yaml:"name"`

	// Specifications lists the technical requirements for the category.
	Specifications []string `json:"specifications" yaml:"specifications"`

	// Constraints lists project-level restrictions (budget, size, power).
	Constraints []string `json:"constraints" yaml:"constraints"`
}

// SearchPlanItem holds the planned web-search queries for one category.
// Unique by category name with the same collapse rule as Category.
type SearchPlanItem struct {
	// Category is the category name the queries belong to.
	Category string `json:"category" yaml:"category"`

	// Queries lists the planned search queries in priority order.
	Queries []string `json:"queries" yaml:"queries"`
}

// Snippet is one web-search result fragment.
type Snippet struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// SearchResult carries the evidence collected for a single executed query.
// It is transient: produced by the search executor and consumed only by the
// component synthesizer for the same category.
type SearchResult struct {
	// Query is the executed query text.
	Query string `json:"query" yaml:"query"`

	// Snippets holds the top result fragments, at most five per query.
	Snippets []Snippet `json:"snippets" yaml:"snippets"`

	// Answer is the provider's synthesized answer, empty when absent.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// VendorLink points at a purchase page for a component option.
type VendorLink struct {
	// Name is the vendor name (e.g. "Digi-Key").
	Name string `json:"name" yaml:"name"`

	// URL is the vendor's product page.
	URL string `json:"url" yaml:"url"`

	// Price is a currency-prefixed display string (e.g. "$4.95"),
	// empty when the vendor did not report one.
	Price string `json:"price,omitempty" yaml:"price,omitempty"`
}

// ComponentOption is one concrete part candidate for a component. Created by
// the synthesizer; the catalog enricher overwrites DatasheetLink, PhotoURL,
// and VendorLinks in place (prd006-enrichment R2.3).
type ComponentOption struct {
	// Name is the part name, usually a manufacturer part number.
	Name string `json:"name" yaml:"name"`

	// Specifications lists the option's key electrical/mechanical specs.
	Specifications []string `json:"specifications" yaml:"specifications"`

	// Pros and Cons summarize the option's trade-offs for this project.
	Pros []string `json:"pros" yaml:"pros"`
	Cons []string `json:"cons" yaml:"cons"`

	// DatasheetLink is a URL to the part datasheet, empty when unknown.
	DatasheetLink string `json:"datasheetLink,omitempty" yaml:"datasheetLink,omitempty"`

	// VendorLinks lists purchase options. After enrichment it holds at most
	// one authoritative catalog entry.
	VendorLinks []VendorLink `json:"vendorLinks,omitempty" yaml:"vendorLinks,omitempty"`

	// PhotoURL is a product image URL, empty when unknown.
	PhotoURL string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
}

// Component is one required part within a category, with candidate options.
type Component struct {
	// Name is the component role (e.g. "Main MCU", "Ambient sensor").
	Name string `json:"name" yaml:"name"`

	// Options holds the candidate parts, one to four per component.
	Options []ComponentOption `json:"options" yaml:"options"`
}

// CategoryParts groups the synthesized components under their category.
type CategoryParts struct {
	Name       string      `json:"name" yaml:"name"`
	Components []Component `json:"components" yaml:"components"`
}

// PartsList is the full candidate universe produced by synthesis. It is
// read-only after synthesis completes.
type PartsList struct {
	Categories []CategoryParts `json:"categories" yaml:"categories"`
}

// ComponentCount returns the total number of components across all categories.
func (p PartsList) ComponentCount() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.Components)
	}
	return n
}

// FinalPart is one selected option with its compatibility rationale.
// Exactly one option is chosen per component present in the final answer;
// components judged unnecessary are omitted (prd005-selection R5.2).
type FinalPart struct {
	// Category and Component identify where the selection came from.
	Category  string `json:"category" yaml:"category"`
	Component string `json:"component" yaml:"component"`

	// SelectedOption is the chosen part.
	SelectedOption ComponentOption `json:"selectedOption" yaml:"selectedOption"`

	// CompatibilityNotes explains how the part fits the other selections
	// (voltage, interface, power budget).
	CompatibilityNotes string `json:"compatibilityNotes" yaml:"compatibilityNotes"`
}

// FinalList is the pipeline's terminal artifact.
type FinalList struct {
	FinalParts []FinalPart `json:"finalParts" yaml:"finalParts"`

	// TotalEstimatedCost is a display string (e.g. "$47.20"), empty when
	// selection degraded.
	TotalEstimatedCost string `json:"totalEstimatedCost" yaml:"totalEstimatedCost"`

	// CompatibilitySummary describes the overall fit of the selections.
	CompatibilitySummary string `json:"compatibilitySummary" yaml:"compatibilitySummary"`
}
