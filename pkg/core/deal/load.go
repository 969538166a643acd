package deal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads and validates a deal from a YAML file.
func Load(path string) (Deal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deal{}, fmt.Errorf("failed to read deal file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML deal. Unknown keys are rejected.
func Parse(data []byte) (Deal, error) {
	var d Deal
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return Deal{}, fmt.Errorf("%w: yaml: %v", ErrInvalidDeal, err)
	}
	if err := Validate(d); err != nil {
		return Deal{}, err
	}
	return d, nil
}

// Marshal encodes a deal as YAML.
func Marshal(d Deal) ([]byte, error) {
	return yaml.Marshal(d)
}
