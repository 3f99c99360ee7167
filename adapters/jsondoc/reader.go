// Package jsondoc reads and writes enforcement system specifications as
// JSON documents.
package jsondoc

import (
	"encoding/json"
	"fmt"
	"os"

	"goadmit/domain/system"
	"goadmit/ports"
)

// Reader loads system specs from JSON files.
type Reader struct{}

// NewReader creates a JSON spec reader.
func NewReader() ports.SystemReader {
	return &Reader{}
}

// ReadSpec parses a spec document from a JSON file. Unknown fields are
// rejected so a typoed cost list fails loudly instead of defaulting to
// zero costs.
func (r *Reader) ReadSpec(path string) (system.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return system.Spec{}, fmt.Errorf("failed to open system file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var spec system.Spec
	if err := dec.Decode(&spec); err != nil {
		return system.Spec{}, fmt.Errorf("failed to parse system file %s: %w", path, err)
	}
	return spec, nil
}

// WriteSpec writes a spec document to a JSON file, indented for editing.
func WriteSpec(path string, spec system.Spec) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write system file: %w", err)
	}
	return nil
}
