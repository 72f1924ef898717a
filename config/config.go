// Package config loads firmware configurations for the host tools. The
// firmware itself is built with core.DefaultConfig; the simulator and the
// boot monitor read the same parameters from JSON so a board variant can
// be checked without rebuilding.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"bluepwm/core"
)

// LoadConfig parses a JSON configuration and returns a validated Config
func LoadConfig(jsonData []byte) (*core.Config, error) {
	var config core.Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*core.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// applyDefaults fills in missing configuration values from the production
// board. Console stays as given: absent means off.
func applyDefaults(config *core.Config) {
	def := core.DefaultConfig()

	// Clock tree
	if config.HSEFrequency == 0 {
		config.HSEFrequency = def.HSEFrequency
	}
	if config.PLLMultiplier == 0 {
		config.PLLMultiplier = def.PLLMultiplier
	}

	// PWM output. A zero duty is a valid (always low) output, so it is only
	// defaulted together with the period.
	if config.PWMTickHz == 0 {
		config.PWMTickHz = def.PWMTickHz
	}
	if config.PWMPeriod == 0 {
		config.PWMPeriod = def.PWMPeriod
		if config.PWMDuty == 0 {
			config.PWMDuty = def.PWMDuty
		}
	}

	if config.BlinkHoldMs == 0 {
		config.BlinkHoldMs = def.BlinkHoldMs
	}
	if config.ConsoleBaud == 0 {
		config.ConsoleBaud = def.ConsoleBaud
	}
}

// Marshal returns the indented JSON form of config
func Marshal(config core.Config) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}
