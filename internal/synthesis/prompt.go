// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/parts-engine/pkg/types"
)

const systemPrompt = `You are an expert electronics engineer who recommends concrete, purchasable components backed by search evidence.`

// DatasheetDomains lists manufacturer and distributor sites the model may
// cite datasheet links from. The list is advisory: it constrains the prompt,
// and the report package warns about links from elsewhere, but nothing blocks
// them since catalog enrichment overwrites the links anyway.
var DatasheetDomains = []string{
	"ti.com", "st.com", "microchip.com", "analog.com", "nxp.com",
	"infineon.com", "onsemi.com", "vishay.com", "murata.com", "espressif.com",
	"digikey.com", "mouser.com", "sparkfun.com", "adafruit.com",
}

var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`Propose components for one category of an electronics project, using the web search evidence below.

Propose 1 to 4 components for the category. For each component, give 1 to 3 purchasable options:
- name: the component's role, e.g. "Main microcontroller"
- options: concrete parts, each with:
  - name: manufacturer and part number, e.g. "Texas Instruments TMP117"
  - specifications: key electrical and physical specs as short strings
  - pros: advantages for this project
  - cons: drawbacks or limitations
  - datasheetLink: a datasheet URL, only if you are certain of it and only from these domains: {{.Domains}}. Omit the field rather than guess.
  - vendorLinks: where to buy, as objects with "name", "url", and "price" (price as a string like "$4.95"); omit when unknown
  - photoUrl: a product photo URL if one appeared in the evidence; omit otherwise

Ground every option in the evidence. Do not invent part numbers that the evidence does not support.

Respond with a JSON object containing a "components" array. Do not include any text outside the JSON object.

Example response:
{"components": [{"name": "Main microcontroller", "options": [{"name": "Microchip ATmega328P", "specifications": ["8-bit AVR", "5V logic", "32KB flash"], "pros": ["huge community", "through-hole package available"], "cons": ["dated architecture"], "datasheetLink": "https://www.microchip.com/downloads/atmega328p.pdf", "vendorLinks": [{"name": "DigiKey", "url": "https://www.digikey.com/atmega328p", "price": "$2.50"}]}]}]}

Category: {{.Category}}
{{- if .Specifications}}
Specifications: {{.Specifications}}
{{- end}}
{{- if .Constraints}}
Constraints: {{.Constraints}}
{{- end}}

Web search evidence:
{{.Evidence}}
`))

func renderPrompt(category types.Category, results []types.SearchResult) (string, error) {
	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Domains        string
		Category       string
		Specifications string
		Constraints    string
		Evidence       string
	}{
		Domains:        strings.Join(DatasheetDomains, ", "),
		Category:       category.Name,
		Specifications: strings.Join(category.Specifications, "; "),
		Constraints:    strings.Join(category.Constraints, "; "),
		Evidence:       renderEvidence(results),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderEvidence formats search results as one block per query, with the
// provider's answer first and snippets as "title: content" lines.
func renderEvidence(results []types.SearchResult) string {
	if len(results) == 0 {
		return "(no search results were available for this category)"
	}

	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Query: %s\n", result.Query)
		if result.Answer != "" {
			fmt.Fprintf(&b, "Answer: %s\n", result.Answer)
		}
		for _, snippet := range result.Snippets {
			fmt.Fprintf(&b, "- %s: %s\n", snippet.Title, snippet.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
