// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders completed runs as Markdown bill-of-materials
// documents.
// Implements: prd009-operations (R3.1-R3.4); docs/ARCHITECTURE § Reports.
package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/parts-engine/internal/synthesis"
	"github.com/pdiddy/parts-engine/pkg/types"
)

const titleMaxLen = 60

// GenerateMarkdown renders a run as a Markdown bill of materials: one section
// per final part, followed by totals and any datasheet warnings.
func GenerateMarkdown(result *types.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Parts List: %s\n\n", truncate(result.Description, titleMaxLen))
	fmt.Fprintf(&b, "Run `%s`, %s\n\n", result.ID, result.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	if len(result.FinalList.FinalParts) == 0 {
		b.WriteString("No final selections were produced for this run.\n")
		writeCandidates(&b, result.PartsList)
		return b.String()
	}

	b.WriteString("## Final Selections\n\n")
	for i, part := range result.FinalList.FinalParts {
		option := part.SelectedOption
		fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, part.Component, part.Category)
		fmt.Fprintf(&b, "**Selected:** %s\n\n", option.Name)

		if len(option.Specifications) > 0 {
			fmt.Fprintf(&b, "- Specifications: %s\n", strings.Join(option.Specifications, "; "))
		}
		if len(option.Pros) > 0 {
			fmt.Fprintf(&b, "- Pros: %s\n", strings.Join(option.Pros, "; "))
		}
		if len(option.Cons) > 0 {
			fmt.Fprintf(&b, "- Cons: %s\n", strings.Join(option.Cons, "; "))
		}
		if option.DatasheetLink != "" {
			fmt.Fprintf(&b, "- Datasheet: %s\n", option.DatasheetLink)
		}
		for _, link := range option.VendorLinks {
			if link.Price != "" {
				fmt.Fprintf(&b, "- Buy: [%s](%s) at %s\n", link.Name, link.URL, link.Price)
			} else {
				fmt.Fprintf(&b, "- Buy: [%s](%s)\n", link.Name, link.URL)
			}
		}
		if part.CompatibilityNotes != "" {
			fmt.Fprintf(&b, "- Compatibility: %s\n", part.CompatibilityNotes)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Totals\n\n")
	if result.FinalList.TotalEstimatedCost != "" {
		fmt.Fprintf(&b, "- Estimated cost: %s\n", result.FinalList.TotalEstimatedCost)
	}
	if result.FinalList.CompatibilitySummary != "" {
		fmt.Fprintf(&b, "- Compatibility: %s\n", result.FinalList.CompatibilitySummary)
	}
	b.WriteString("\n")

	writeCandidates(&b, result.PartsList)

	if warnings := ValidateDatasheets(result.FinalList); len(warnings) > 0 {
		b.WriteString("## Datasheet Warnings\n\n")
		b.WriteString("These links are not from a recognized manufacturer or distributor; verify them before trusting:\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeCandidates(b *strings.Builder, list types.PartsList) {
	if len(list.Categories) == 0 {
		return
	}
	b.WriteString("## Candidates Considered\n\n")
	for _, category := range list.Categories {
		fmt.Fprintf(b, "- %s: %d component(s)", category.Name, len(category.Components))
		var names []string
		for _, component := range category.Components {
			for _, option := range component.Options {
				names = append(names, option.Name)
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(b, ": %s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// ValidateDatasheets scans the final parts for datasheet links whose host is
// not on the trusted domain list and returns them sorted. The check mirrors
// the instruction given at synthesis time; it warns rather than blocks.
func ValidateDatasheets(list types.FinalList) []string {
	seen := make(map[string]bool)
	for _, part := range list.FinalParts {
		link := part.SelectedOption.DatasheetLink
		if link == "" || seen[link] {
			continue
		}
		if !trustedDatasheetHost(link) {
			seen[link] = true
		}
	}

	var offending []string
	for link := range seen {
		offending = append(offending, link)
	}
	sort.Strings(offending)
	return offending
}

// trustedDatasheetHost reports whether the link's host belongs to one of the
// allowed datasheet domains, including subdomains.
func trustedDatasheetHost(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range synthesis.DatasheetDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// truncate shortens a string to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
