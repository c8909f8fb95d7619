// Package config: loader.
//
// Priority: defaults -> YAML file -> environment variables. Environment
// variable names use the CONSENSUS_ prefix and are derived from the Go
// field names of Config, e.g. CONSENSUS_AI_MIN_CONFIDENCE overrides
// AI.MinConfidence (ai.min_confidence).
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "CONSENSUS"

// Loader loads a Config from a YAML file with environment overrides.
type Loader struct {
	configPath string
}

// NewLoader creates a Loader reading from path. An empty path is valid:
// defaults plus environment overrides are used.
func NewLoader(path string) *Loader {
	return &Loader{configPath: path}
}

// Load reads, overrides, defaults, and validates the configuration.
// Weight validation runs before credential gating, so a provider
// disabled for a missing credential never turns into a weight-sum
// failure. Every failure is returned as a *types.Error (ConfigError)
// with a configuration ErrorCode, never as a bare error a caller might
// mistake for a transient fault.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{}

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, NewConfigError(fmt.Sprintf("failed to read config file: %v", err))
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewConfigError(fmt.Sprintf("failed to parse config file: %v", err))
		}
	}

	if err := loadEnvOverrides(cfg); err != nil {
		return nil, NewConfigError(err.Error())
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	applyCredentialGating(cfg)

	return cfg, nil
}

// Load is a convenience wrapper around NewLoader(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func loadEnvOverrides(cfg *Config) error {
	return setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), envPrefix)
}

// setFieldsFromEnv walks a struct and applies CONSENSUS_<PARENT>_<X>
// environment variables to its scalar fields, where PARENT is the
// nested struct's Go field name as written and X is the scalar field's
// name converted by toEnvSegment. Slices (the
// providers list) are intentionally left to YAML only — there is no
// sane flat env encoding for a list of structs.
func setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := setFieldsFromEnv(field, prefix+"_"+fieldType.Name); err != nil {
				return err
			}
			continue
		}
		if field.Kind() == reflect.Slice || field.Kind() == reflect.Map {
			continue
		}

		envKey := prefix + "_" + toEnvSegment(fieldType.Name)
		value, ok := os.LookupEnv(envKey)
		if !ok || value == "" {
			continue
		}
		if err := setScalarFromEnv(field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setScalarFromEnv(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	}
	return nil
}

// toEnvSegment converts an exported Go field name (already TitleCase) to
// the upper-snake segment used in env var names, e.g. "MinConfidence" ->
// "MIN_CONFIDENCE".
func toEnvSegment(name string) string {
	out := make([]byte, 0, len(name)*2)
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			out = append(out, '_')
		}
		if r >= 'a' && r <= 'z' {
			r -= 32
		}
		out = append(out, byte(r))
	}
	return string(out)
}

// credentialEnvVar maps a provider id to the environment variable that
// must hold its API credential (spec.md §6).
func credentialEnvVar(providerID string) string {
	switch providerID {
	case "chatgpt", "openai":
		return "OPENAI_API_KEY"
	case "claude", "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini", "google":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// applyCredentialGating disables (with a WARN, left to the caller's
// logger to emit) any enabled provider whose credential environment
// variable is absent, per spec.md §6: "Absence of a credential for an
// enabled provider disables that provider at load time... it is not
// fatal."
func applyCredentialGating(cfg *Config) {
	for i := range cfg.AI.Providers {
		p := &cfg.AI.Providers[i]
		if !p.Enabled {
			continue
		}
		envVar := credentialEnvVar(p.ID)
		if envVar == "" {
			continue
		}
		if os.Getenv(envVar) == "" {
			p.Enabled = false
			cfg.AI.CredentialGatedProviders = append(cfg.AI.CredentialGatedProviders, p.ID)
		}
	}
}
