package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalFlags converts RunFlags to JSON TEXT for storage.
// Struct field order makes the encoding deterministic.
func marshalFlags(f RunFlags) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return "", fmt.Errorf("marshal flags: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalFlags parses JSON TEXT to RunFlags.
func unmarshalFlags(data string) (RunFlags, error) {
	var f RunFlags
	if data == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return RunFlags{}, fmt.Errorf("unmarshal flags: %w", err)
	}
	return f, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
