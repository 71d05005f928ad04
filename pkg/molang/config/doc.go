/*
Package config reads script library manifests.

# Overview

A manifest is a YAML or JSON document decoded into map[string]any. Config
wraps that map with typed accessors that fall back to a default when a key
is missing or holds the wrong type, so a manifest can omit anything.

# Manifest Layout

	cache_size: 256
	fallback: 0
	retry:
	  enabled: true
	  max_attempts: 5
	  initial_backoff: 20ms
	  max_backoff: 1s
	defines:
	  speed: 2.5
	  bob_height: 0.1
	scripts:
	  bob: "math.sin(query.anim_time * ${speed} * 360) * ${bob_height}"
	  blink: "math.mod(query.anim_time, 4) * 5"

Read it with the typed accessors:

	cfg, err := config.FromFile("anim.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	size := cfg.Int("cache_size", 128)
	defines := cfg.FloatMap("defines", nil)
	scripts := cfg.StringMap("scripts", nil)
	attempts := cfg.Section("retry").Int("max_attempts", 3)

# Type Coercion

Numbers decode differently per format (YAML yields int, JSON yields
float64), so numeric accessors accept int, int64, and float64. Int rejects
floats with a fractional part. Duration accepts a time.ParseDuration string
or a number of seconds.

# Thread Safety

Config is safe for concurrent reads. It never modifies the wrapped map.
*/
package config
