// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/parts-engine/pkg/types"
)

const systemPrompt = `You are an expert electronics engineer finalizing a bill of materials. You weigh cost, availability, and electrical compatibility.`

var selectionPromptTmpl = template.Must(template.New("selection").Parse(`From the candidate parts list below, assemble the final bill of materials for this project.

Rules:
- Select exactly one option for each component you keep.
- Omit components the project does not actually need.
- Check that selected parts work together (voltage levels, interfaces, power budget) and note anything the builder must watch for.

Respond with a JSON object:
- finalParts: array of {"category", "component", "selectedOption", "compatibilityNotes"}, where selectedOption is the chosen option object copied verbatim from the list (all of its fields)
- totalEstimatedCost: rough total as a string, e.g. "$25.00"
- compatibilitySummary: one short paragraph on how the selections fit together

Do not include any text outside the JSON object.

Example response:
{"finalParts": [{"category": "Microcontroller", "component": "Main microcontroller", "selectedOption": {"name": "Microchip ATmega328P", "specifications": ["8-bit AVR", "5V logic"], "pros": ["huge community"], "cons": ["dated architecture"]}, "compatibilityNotes": "5V logic matches the sensor board"}], "totalEstimatedCost": "$12.50", "compatibilitySummary": "All parts share a 5V rail and communicate over I2C."}

Project description:
{{.Description}}

Candidate parts list:
{{.PartsList}}
`))

func renderPrompt(list types.PartsList, description string) (string, error) {
	listJSON, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding parts list: %w", err)
	}

	var buf bytes.Buffer
	err = selectionPromptTmpl.Execute(&buf, struct {
		Description string
		PartsList   string
	}{Description: description, PartsList: string(listJSON)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
