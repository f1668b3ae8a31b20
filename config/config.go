// Package config loads and validates the host configuration for the
// sum_as_string binding.
package config

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/sumstring/application/schema"
	"github.com/reglet-dev/sumstring/domain/entities"
	"github.com/reglet-dev/sumstring/domain/errors"
	"github.com/reglet-dev/sumstring/domain/policy"
	"github.com/reglet-dev/sumstring/infrastructure/parser"
)

// HostConfig is the host-side configuration of the binding.
type HostConfig = entities.HostConfig

// Defaults.
const (
	DefaultModuleName     = "sumstring"
	DefaultMaxRequestSize = 1 << 20
	DefaultLogLevel       = "info"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// Default returns the configuration used when none is supplied.
func Default() HostConfig {
	return HostConfig{
		ModuleName:     DefaultModuleName,
		OverflowPolicy: string(policy.DefaultOverflowPolicy),
		LogLevel:       DefaultLogLevel,
		MaxRequestSize: DefaultMaxRequestSize,
	}
}

// Parse reads YAML over Default and validates the result.
func Parse(data []byte) (*HostConfig, error) {
	cfg, err := parser.NewYamlConfigParser().Parse(data, Default())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks cfg against its struct tags. The first failing field is
// reported as a *errors.ConfigError.
func Validate(cfg HostConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ConfigError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed on '%s' rule (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// Schema returns the JSON schema describing HostConfig.
func Schema() ([]byte, error) {
	return schema.GenerateSchema(HostConfig{})
}

// OverflowPolicy returns the parsed overflow policy of cfg.
func OverflowPolicy(cfg HostConfig) (policy.OverflowPolicy, error) {
	p, err := policy.ParseOverflowPolicy(cfg.OverflowPolicy)
	if err != nil {
		return "", &errors.ConfigError{Field: "OverflowPolicy", Err: err}
	}
	return p, nil
}

// SlogLevel maps cfg.LogLevel to a slog level. Unknown values map to Info.
func SlogLevel(cfg HostConfig) slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
