// Package config loads process configuration from, in order of
// precedence: command-line flags, PKM_-prefixed environment variables,
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables, e.g. PKM_DB,
// PKM_ADDR, PKM_LOG_LEVEL.
const envPrefix = "PKM_"

// Config is the process-level configuration. Scheduler settings
// (retention, burial, ordering) live in the database instead, because
// the UI edits them at runtime.
type Config struct {
	DB       string `koanf:"db" validate:"required"`
	Addr     string `koanf:"addr" validate:"required,hostname_port"`
	Repos    string `koanf:"repos" validate:"required"`
	LogLevel string `koanf:"log-level" validate:"oneof=debug info warn error"`
}

// Load builds the configuration. path may name a YAML file; a missing
// file is only an error when the path was set explicitly. flags carry
// both defaults and user overrides.
func Load(path string, explicitPath bool, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && (explicitPath || !errors.Is(err, fs.ErrNotExist)) {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", "-")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: field %s fails %q", first.Field(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
