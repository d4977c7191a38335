// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonutil recovers JSON values from natural-language reasoning
// output. Models rarely honor "respond with only JSON" strictly; responses
// arrive wrapped in prose, fenced code blocks, or with trailing commentary.
// Every stage that consumes reasoning output parses it through this package.
// Implements: prd008-reasoning (R3.1-R3.5); docs/ARCHITECTURE § Extraction Discipline.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed reports that no parseable JSON value could be recovered.
var ErrMalformed = errors.New("malformed extraction")

// fence markers for code blocks carrying structured data.
const (
	fenceJSON = "```json"
	fence     = "```"
)

// Extract recovers the first complete JSON value (object or array) from text
// and unmarshals it into v. Priority order per prd008-reasoning R3.1:
//
//  1. the interior of a ```json fenced block, if present;
//  2. otherwise the span from the first { or [ to its balanced close,
//     tolerating prose before and after.
//
// It fails with an error wrapping ErrMalformed when no opening token exists,
// when nesting never closes (truncated output), or when the recovered span is
// not valid JSON.
func Extract(text string, v any) error {
	span, err := ExtractRaw(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(span, v); err != nil {
		return fmt.Errorf("%w: decoding extracted span: %v", ErrMalformed, err)
	}
	return nil
}

// ExtractRaw recovers the first complete JSON value from text without
// unmarshaling it.
func ExtractRaw(text string) (json.RawMessage, error) {
	if inner, ok := fencedBlock(text); ok {
		text = inner
	}

	span, err := balancedSpan(text)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(span)) {
		return nil, fmt.Errorf("%w: extracted span is not valid JSON", ErrMalformed)
	}
	return json.RawMessage(span), nil
}

// ExtractLoose recovers the span between the first { and the last } in text
// and unmarshals it into v. Tolerant of leading and trailing commentary but
// not of multiple sibling objects; used by the final selector, whose response
// is a single large object (prd005-selection R5.3).
func ExtractLoose(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	span := text[start : end+1]
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("%w: decoding extracted span: %v", ErrMalformed, err)
	}
	return nil
}

// fencedBlock returns the interior of the first ```json fenced block, or of
// the first bare ``` block whose interior starts with a JSON opening token.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, fenceJSON)
	offset := len(fenceJSON)
	if start < 0 {
		start = strings.Index(text, fence)
		offset = len(fence)
	}
	if start < 0 {
		return "", false
	}

	rest := text[start+offset:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}

	inner := strings.TrimSpace(rest[:end])
	if !strings.HasPrefix(inner, "{") && !strings.HasPrefix(inner, "[") {
		return "", false
	}
	return inner, true
}

// balancedSpan scans for the first { or [ and walks forward with a nesting
// counter until the value closes, ignoring braces inside string literals.
// Returns the span of the first complete balanced value even when trailing
// prose follows it.
func balancedSpan(text string) (string, error) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object or array found", ErrMalformed)
	}

	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced nesting, value never closes", ErrMalformed)
}
