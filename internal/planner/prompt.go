// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/parts-engine/pkg/types"
)

const systemPrompt = `You are a research assistant who crafts precise web search queries for finding purchasable electronic components.`

var planPromptTmpl = template.Must(template.New("plan").Parse(`For each component category below, produce 3 to 5 web search queries that would surface concrete, purchasable parts meeting the stated specifications and constraints.

Good queries name part families, key electrical specs, and recommendation phrasing, for example "best 3.3V I2C temperature sensor breakout" or "low power ARM Cortex-M0 microcontroller comparison".

Respond with a JSON object only. It must contain a single key "plan" holding an array; each element must have the shape {"category": "<name>", "queries": ["...", "..."]} and must use the exact category names given below. Do not include any text outside the JSON object.

Example response:
{
  "plan": [
    {
      "category": "Microcontroller",
      "queries": [
        "5V microcontroller development board UART I2C",
        "ATmega328P vs STM32F0 hobbyist comparison",
        "best microcontroller for battery powered sensor project"
      ]
    }
  ]
}

Categories:
{{.Categories}}`))

func renderPrompt(categories []types.Category) (string, error) {
	var block strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&block, "- %s\n", category.Name)
		if len(category.Specifications) > 0 {
			fmt.Fprintf(&block, "  specifications: %s\n", strings.Join(category.Specifications, "; "))
		}
		if len(category.Constraints) > 0 {
			fmt.Fprintf(&block, "  constraints: %s\n", strings.Join(category.Constraints, "; "))
		}
	}

	var buf strings.Builder
	err := planPromptTmpl.Execute(&buf, struct {
		Categories string
	}{Categories: strings.TrimRight(block.String(), "\n")})
	if err != nil {
		return "", fmt.Errorf("executing plan prompt template: %w", err)
	}
	return buf.String(), nil
}
