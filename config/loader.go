package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/morrisxyang/xreflect"
	"gopkg.in/yaml.v3"
)

// Load returns the default configuration overlaid with the file at path
// (when path is non-empty) and any --set style overrides.
func Load(path string, overrides []string) (*Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFile loads a configuration file and returns the parsed Config.
// Values absent from the file keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := filepath.Ext(path)

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// ApplyOverrides applies "Field.Path=value" overrides to the config.
// Values parse as int, float or bool before falling back to string.
func ApplyOverrides(cfg *Config, overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return fmt.Errorf("invalid override format: %s (expected path=value)", override)
		}

		fieldPath := parts[0]
		valueStr := parts[1]

		var fieldValue interface{}
		if intVal, err := strconv.Atoi(valueStr); err == nil {
			fieldValue = intVal
		} else if floatVal, err := strconv.ParseFloat(valueStr, 64); err == nil {
			fieldValue = floatVal
		} else if boolVal, err := strconv.ParseBool(valueStr); err == nil {
			fieldValue = boolVal
		} else {
			fieldValue = valueStr
		}

		if err := xreflect.SetEmbedField(cfg, fieldPath, fieldValue); err != nil {
			return fmt.Errorf("failed to apply override %s: %w", override, err)
		}
	}

	return nil
}

// Schema returns the JSON schema describing the configuration
func Schema() interface{} {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	return reflector.Reflect(&Config{})
}

// SchemaJSON renders the configuration schema as indented JSON
func SchemaJSON() (string, error) {
	blob, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal config schema: %w", err)
	}
	return string(blob), nil
}
