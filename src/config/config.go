package config

import (
	"fmt"
	"os"

	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Serial configuration
	if c.Serial.Endpoint == "" && !c.Serial.AutoDetect {
		return fmt.Errorf("serial endpoint cannot be empty when auto_detect is disabled")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud rate must be greater than 0")
	}
	if c.Serial.ReadTimeoutMs <= 0 {
		return fmt.Errorf("serial read timeout must be greater than 0")
	}
	if c.Serial.BootGraceSeconds < 0 {
		return fmt.Errorf("boot grace period cannot be negative")
	}

	// Validate Rig configuration
	if c.Rig.TravelMM <= 0 {
		return fmt.Errorf("stage travel must be greater than 0")
	}
	if c.Rig.SettleMarginSeconds < 0 || c.Rig.ReturnBufferSeconds < 0 {
		return fmt.Errorf("rig timing margins cannot be negative")
	}
	if c.Rig.MonitorBufferSize <= 0 {
		return fmt.Errorf("monitor buffer size must be greater than 0")
	}

	// Validate Validation thresholds
	if c.Validation.MinPeakForceN < 0 {
		return fmt.Errorf("minimum plausible peak force cannot be negative")
	}
	if c.Validation.MinSamples < 0 {
		return fmt.Errorf("minimum sample count cannot be negative")
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate Output configuration
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
