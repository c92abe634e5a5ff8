package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a batch file from the given path. Files ending
// in .hcl are read as HCL, everything else as YAML.
func LoadFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(data, path)
	}

	return Parse(data)
}

// Parse parses YAML data into a BatchFile.
func Parse(data []byte) (*BatchFile, error) {
	var bf BatchFile

	err := yaml.Unmarshal(data, &bf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch YAML: %w", err)
	}

	applyDefaults(&bf)

	return &bf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(bf *BatchFile) {
	if bf.Environment == "" {
		bf.Environment = EnvJoined
	}

	for i := range bf.Entries {
		e := &bf.Entries[i]
		if e.ID == "" {
			e.ID = e.Preset
		}
	}
}

// Marshal serializes a BatchFile to YAML.
func Marshal(bf *BatchFile) ([]byte, error) {
	return yaml.Marshal(bf)
}

// WriteFile writes a BatchFile as YAML to the given path.
func WriteFile(bf *BatchFile, path string) error {
	data, err := Marshal(bf)
	if err != nil {
		return fmt.Errorf("failed to marshal batch file: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch file %s: %w", path, err)
	}

	return nil
}
