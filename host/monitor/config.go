package monitor

import (
	"bluepwm/config"
	"bluepwm/core"
)

// BootConfig returns the configuration a console boot log is checked
// against: the production board, or the JSON file at path if one is given.
// The log only exists with the console on, so Console is always set, after
// loading, since a file without "console" loads with it off.
func BootConfig(path string) (core.Config, error) {
	cfg := core.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return core.Config{}, err
		}
		cfg = *loaded
	}
	cfg.Console = true
	return cfg, nil
}
