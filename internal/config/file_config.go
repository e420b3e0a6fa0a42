package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

var (
	fileOnce   sync.Once
	fileValues map[string]string
)

// LoadFile parses a flat YAML document of VAR: value pairs. Keys use the same
// names as the environment variables they stand in for.
func LoadFile(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}
	raw := make(map[string]any)
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("[config LoadFile] parse %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values, nil
}

func fileValue(envVar string) (string, bool) {
	fileOnce.Do(func() {
		path := os.Getenv(configFileVar)
		if path == "" {
			return
		}
		values, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return
		}
		fileValues = values
	})
	v, ok := fileValues[envVar]
	return v, ok
}
