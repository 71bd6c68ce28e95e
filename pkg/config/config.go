package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator validates configuration
type Validator interface {
	Validate(config interface{}) error
}

// ValidatorFunc is a function that validates configuration
type ValidatorFunc func(config interface{}) error

func (f ValidatorFunc) Validate(config interface{}) error {
	return f(config)
}

// Load decodes a configuration file into target
// .json files are decoded as JSON, everything else as YAML
func Load(path string, target interface{}) error {
	// #nosec G304 -- path comes from the operator (flag or env).
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if isJSON(path) {
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to unmarshal JSON %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal YAML %s: %w", path, err)
	}
	return nil
}

// Save encodes config into path using the codec implied by its extension
func Save(path string, config interface{}) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// LoadWithEnv loads configuration from file and applies environment variable overrides
// An empty path skips the file and only applies the environment
func LoadWithEnv(path string, prefix string, target interface{}) error {
	if path != "" {
		if err := Load(path, target); err != nil {
			return err
		}
	}

	if err := ApplyEnvOverrides(prefix, target); err != nil {
		return fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return nil
}

// ApplyEnvOverrides sets struct fields from environment variables
// Keys are PREFIX_SECTION_FIELD built from the yaml tag (or field name), upper-cased,
// e.g. PPQSORT_POOL_WORKERS for Settings.Pool.Workers
func ApplyEnvOverrides(prefix string, target interface{}) error {
	if prefix == "" {
		prefix = "APP"
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}

	return applyEnvToStruct(strings.ToUpper(prefix), val.Elem())
}

func applyEnvToStruct(prefix string, val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		envKey := prefix + "_" + envName(fieldType)

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(envKey, field); err != nil {
				return err
			}
			continue
		}

		envValue, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("env %s: %w", envKey, err)
		}
	}

	return nil
}

// envName returns the upper-cased yaml name of a field
func envName(field reflect.StructField) string {
	name := strings.Split(field.Tag.Get("yaml"), ",")[0]
	if name == "" || name == "-" {
		name = field.Name
	}
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func setField(field reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value %q", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value %q", raw)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value %q", raw)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool value %q", raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate runs validators in order and returns the first failure
func Validate(config interface{}, validators ...Validator) error {
	for _, validator := range validators {
		if err := validator.Validate(config); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}
