// Package config loads CLI configuration from defaults, an optional JSON
// config file, and DYNFORM_ environment variables, in ascending priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration carries the tunables shared by every dynform command.
type Configuration struct {
	DebounceMS int    `koanf:"debounce_ms" validate:"min=0,max=10000"`
	CacheSize  int    `koanf:"cache_size" validate:"min=1"`
	LogLevel   string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"debounce_ms": 300,
		"cache_size":  512,
		"log_level":   "info",
	}
}

// Load merges defaults, the config file at path (skipped when empty or
// missing), and DYNFORM_ environment variables.
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	k.Load(env.Provider("DYNFORM_", ".", envTransform), nil)

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// envTransform maps DYNFORM_DEBOUNCE_MS to debounce_ms.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "DYNFORM_"))
}
