package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// decoders maps a manifest file extension to its decoder.
var decoders = map[string]struct {
	format    string
	unmarshal func([]byte, any) error
}{
	".yaml": {"yaml", yaml.Unmarshal},
	".yml":  {"yaml", yaml.Unmarshal},
	".json": {"json", json.Unmarshal},
}

// FromFile reads a .yaml, .yml or .json manifest.
func FromFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("unsupported manifest extension %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read manifest: %w", err)
	}
	return decode(dec.format, dec.unmarshal, data)
}

// FromYAML decodes a YAML manifest.
func FromYAML(data []byte) (Config, error) {
	return decode("yaml", yaml.Unmarshal, data)
}

// FromJSON decodes a JSON manifest.
func FromJSON(data []byte) (Config, error) {
	return decode("json", json.Unmarshal, data)
}

func decode(format string, unmarshal func([]byte, any) error, data []byte) (Config, error) {
	var m map[string]any
	if err := unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(m), nil
}
