// Package bundler implements the module-graph walker from spec.md §4.5: it
// is not an optimizer, just cycle-safe canonical caching, export
// aggregation, and string assembly of the emitted script.
package bundler

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the decoded form of an `eco.yaml` bundler config: the concrete
// knobs behind spec.md §6's abstract resolve_filename collaborator.
type Config struct {
	Roots   []string          `yaml:"roots"`
	Aliases map[string]string `yaml:"aliases"`
}

// LoadConfig reads and decodes path with goccy/go-yaml. A missing Aliases
// map is normalized to an empty one so callers never nil-check it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundler: reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("bundler: decoding config %s: %w", path, err)
	}
	if cfg.Aliases == nil {
		cfg.Aliases = map[string]string{}
	}
	return &cfg, nil
}
