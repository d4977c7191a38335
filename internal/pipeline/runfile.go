// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// WriteRunFile saves a completed run to a YAML file so it can be reloaded or
// rendered later without re-running the pipeline.
func WriteRunFile(path string, result *types.RunResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run from disk.
func ReadRunFile(path string) (*types.RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var result types.RunResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &result, nil
}
