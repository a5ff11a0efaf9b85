// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package store

import (
	"fmt"

	"github.com/goccy/go-json"
)

// encodeStrings serializes a string slice for a JSON text column.
// Nil and empty both encode to empty, which decodes back to nil.
func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding string list: %w", err)
	}
	return string(raw), nil
}

// decodeStrings parses a JSON text column back into a slice.
func decodeStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	return values, nil
}

// encodeVector serializes a dense vector for a JSON text column.
func encodeVector(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("encoding vector: %w", err)
	}
	return string(raw), nil
}

// decodeVector parses a JSON text column back into a dense vector.
func decodeVector(raw string) ([]float32, error) {
	if raw == "" {
		return nil, nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, fmt.Errorf("decoding vector: %w", err)
	}
	return vec, nil
}
