package cook

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a cook result file.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cook result: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML cook result. Unknown fields are rejected.
func Parse(data []byte) (*Result, error) {
	var r Result
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to parse cook result: %w", err)
	}
	if r.Asset == "" {
		return nil, fmt.Errorf("cook result missing asset name")
	}
	return &r, nil
}
