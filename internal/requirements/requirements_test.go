// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// stubCompleter returns a fixed response or error and records the prompt.
type stubCompleter struct {
	response string
	err      error

	prompt   string
	system   string
	jsonMode bool
}

func (s *stubCompleter) Complete(ctx context.Context, prompt, systemPrompt string, jsonMode bool) (string, error) {
	s.prompt = prompt
	s.system = systemPrompt
	s.jsonMode = jsonMode
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtractParsesCategories(t *testing.T) {
	stub := &stubCompleter{
		response: `Here is my analysis:
{"categories": [
  {"name": "Microcontrollers", "specifications": ["5V"], "constraints": ["cheap"]},
  {"name": "Sensors", "specifications": ["I2C"], "constraints": []}
]}
Hope this helps.`,
	}

	got, err := Extract(context.Background(), stub, "a 5V weather station", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Extract() returned %d categories, want 2", len(got))
	}
	if got[0].Name != "Microcontrollers" || got[1].Name != "Sensors" {
		t.Errorf("Extract() names = %q, %q", got[0].Name, got[1].Name)
	}
	if !stub.jsonMode {
		t.Error("Extract() should request jsonMode")
	}
	if !strings.Contains(stub.prompt, "a 5V weather station") {
		t.Error("prompt does not contain the project description")
	}
}

func TestExtractDegradesToEmptyOnProse(t *testing.T) {
	stub := &stubCompleter{response: "I'm not sure what components you need, could you clarify?"}

	got, err := Extract(context.Background(), stub, "something vague", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v, want nil (degraded result)", err)
	}
	if len(got) != 0 {
		t.Errorf("Extract() returned %d categories, want 0", len(got))
	}
	if got == nil {
		t.Error("Extract() returned nil, want empty non-nil slice")
	}
}

func TestExtractPropagatesCompletionFailure(t *testing.T) {
	wantErr := errors.New("provider down")
	stub := &stubCompleter{err: wantErr}

	_, err := Extract(context.Background(), stub, "anything", nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Extract() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestDedupeCaseInsensitiveFirstWins(t *testing.T) {
	in := []types.Category{
		{Name: "Sensors", Specifications: []string{"original"}},
		{Name: "sensors", Specifications: []string{"duplicate"}},
		{Name: "Motors"},
	}

	got, removed := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("Dedupe() returned %d categories, want 2", len(got))
	}
	if removed != 1 {
		t.Errorf("Dedupe() removed = %d, want 1", removed)
	}
	if got[0].Name != "Sensors" {
		t.Errorf("Dedupe() kept %q, want original casing \"Sensors\"", got[0].Name)
	}
	if len(got[0].Specifications) != 1 || got[0].Specifications[0] != "original" {
		t.Errorf("Dedupe() kept fields %v, want the first occurrence's", got[0].Specifications)
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []types.Category{{Name: "Sensors"}, {Name: "sensors"}}

	once, _ := Dedupe(in)
	twice, removed := Dedupe(once)
	if removed != 0 {
		t.Errorf("second Dedupe() removed = %d, want 0", removed)
	}
	if len(twice) != len(once) {
		t.Errorf("second Dedupe() changed length %d -> %d", len(once), len(twice))
	}
}

func TestDedupeDropsEmptyNames(t *testing.T) {
	in := []types.Category{{Name: "  "}, {Name: "Displays"}}

	got, _ := Dedupe(in)
	if len(got) != 1 || got[0].Name != "Displays" {
		t.Errorf("Dedupe() = %+v, want only Displays", got)
	}
}
