package vm

import (
	"fmt"
	"os"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/store"
	"gopkg.in/yaml.v3"
)

// Arithmetic backends
const (
	ArithmeticNative = "native"
	ArithmeticWasm   = "wasm"
)

// Config represents engine configuration
type Config struct {
	// Storage backend type, "memory" or "db"
	Backend string `yaml:"backend"`
	// SQLite file used by the db backend
	DBPath string `yaml:"db_path"`
	// Hex address of the contract instance; derived from the contract name when empty
	ContractAddress string `yaml:"contract_address"`
	// Arithmetic backend, "native" or "wasm"
	Arithmetic string `yaml:"arithmetic"`
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Backend:    string(store.DBBackendType),
		DBPath:     "./counter.db",
		Arithmetic: ArithmeticNative,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	switch store.BackendType(config.Backend) {
	case store.MemoryBackendType:
	case store.DBBackendType:
		if config.DBPath == "" {
			return fmt.Errorf("db backend requires db_path")
		}
	default:
		return fmt.Errorf("unknown backend %q", config.Backend)
	}

	switch config.Arithmetic {
	case ArithmeticNative, ArithmeticWasm:
	default:
		return fmt.Errorf("unknown arithmetic backend %q", config.Arithmetic)
	}

	if config.ContractAddress != "" {
		if _, err := core.ParseAddress(config.ContractAddress); err != nil {
			return fmt.Errorf("contract_address: %w", err)
		}
	}

	return nil
}

func (c *Config) backendParams() map[string]any {
	return map[string]any{
		"db_path": c.DBPath,
	}
}
