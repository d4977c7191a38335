// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"bytes"
	"text/template"
)

// systemPrompt frames every requirements completion.
const systemPrompt = "You are an expert electronics engineer who turns project ideas into structured component requirements."

// requirementsPromptTmpl instructs the model to identify component categories
// with specifications and constraints. Per prd001-requirements R1.1.
var requirementsPromptTmpl = template.Must(template.New("requirements").Parse(`Analyze the following engineering project description and identify the 3-5 component categories needed to build it.

For each category provide:
- name: a short label for the component family (e.g. "Microcontrollers", "Temperature Sensors")
- specifications: 2-4 concrete technical requirements a suitable part must meet (supply voltage, interfaces, measurement ranges, output types)
- constraints: project-level restrictions that narrow the choice (budget, size, power budget, operating environment)

Respond with a JSON object containing a "categories" array. Each element must have all fields listed above. Do not include any text outside the JSON object.

Example response:
{"categories": [{"name": "Microcontrollers", "specifications": ["operates at 5V", "at least one I2C bus", "10+ GPIO pins"], "constraints": ["must be breadboard friendly", "under $10"]}]}

Project description:
{{.Description}}
`))

// renderPrompt executes the requirements prompt template.
func renderPrompt(description string) (string, error) {
	var buf bytes.Buffer
	if err := requirementsPromptTmpl.Execute(&buf, struct{ Description string }{Description: description}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
