// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunResult is the caller-facing envelope for one pipeline run: the trace,
// the full candidate universe, and the final selections. Per prd007-pipeline
// R1.5. The pipeline itself keeps no state between runs; persisting a
// RunResult (YAML artifact, history store) is the caller's concern.
type RunResult struct {
	// ID is a unique run identifier.
	ID string `json:"id" yaml:"id"`

	// Description is the project description that started the run.
	Description string `json:"description" yaml:"description"`

	// Steps is the append-only stage trace in emission order.
	Steps []AgentStep `json:"steps" yaml:"steps"`

	// PartsList is the full candidate universe from synthesis.
	PartsList PartsList `json:"partsList" yaml:"partsList"`

	// FinalList holds the compatibility-checked final selections.
	FinalList FinalList `json:"finalList" yaml:"finalList"`

	// CreatedAt records when the run started.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}
