package config

import (
	"time"
)

// Config wraps a decoded manifest for type-safe value extraction.
// Every accessor returns its default when the key is missing or the value
// cannot be converted.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// Bool returns the boolean value for key.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Float returns the numeric value for key as float64.
func (c Config) Float(key string, defaultVal float64) float64 {
	if f, ok := number(c.data[key]); ok {
		return f
	}
	return defaultVal
}

// Int returns the numeric value for key. Floats with a fractional part
// are rejected.
func (c Config) Int(key string, defaultVal int) int {
	f, ok := number(c.data[key])
	if !ok || f != float64(int(f)) {
		return defaultVal
	}
	return int(f)
}

// Duration returns the duration value for key.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as seconds
//   - time.Duration: used directly
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	switch val := c.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case time.Duration:
		return val
	default:
		if f, ok := number(val); ok {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultVal
}

// StringMap returns the string-valued mapping for key, such as a manifest's
// scripts. Any non-string value yields defaultVal.
func (c Config) StringMap(key string, defaultVal map[string]string) map[string]string {
	m, ok := c.data[key].(map[string]any)
	if !ok {
		if sm, ok := c.data[key].(map[string]string); ok {
			return sm
		}
		return defaultVal
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return defaultVal
		}
		result[k] = s
	}
	return result
}

// FloatMap returns the numeric mapping for key, such as a manifest's
// defines. Any non-numeric value yields defaultVal.
func (c Config) FloatMap(key string, defaultVal map[string]float64) map[string]float64 {
	m, ok := c.data[key].(map[string]any)
	if !ok {
		if fm, ok := c.data[key].(map[string]float64); ok {
			return fm
		}
		return defaultVal
	}
	result := make(map[string]float64, len(m))
	for k, v := range m {
		f, ok := number(v)
		if !ok {
			return defaultVal
		}
		result[k] = f
	}
	return result
}

// Section returns the nested mapping for key as a Config. A missing or
// non-mapping value yields an empty Config.
func (c Config) Section(key string) Config {
	m, _ := c.data[key].(map[string]any)
	return New(m)
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

func number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	}
	return 0, false
}
