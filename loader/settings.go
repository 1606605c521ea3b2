package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSettings reads a YAML settings overlay: slot name to option bag.
// The overlay is merged over the world's exported settings at load time.
//
//	Player1:
//	  logic: glitchless
//	  keysanity: true
func LoadSettings(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	var overlay map[string]map[string]any
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	return overlay, nil
}
