// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AgentStep is one append-only trace record. The orchestrator emits one at
// the start of every stage and per-category sub-stage; the trace is consumed
// only by the caller for observability and never read back by the pipeline.
// Per prd007-pipeline R2.1-R2.3.
type AgentStep struct {
	// Step is a short human-readable label for the stage.
	Step string `json:"step" yaml:"step"`

	// Reasoning explains what the stage is about to do, when useful.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`

	// SearchQueries carries the planned queries for search sub-stages.
	SearchQueries []string `json:"searchQueries,omitempty" yaml:"searchQueries,omitempty"`

	// Timestamp records when the stage started.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
