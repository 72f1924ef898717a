//go:build stm32f103

package main

import (
	"bluepwm/core"
	"bluepwm/hal"
)

func main() {
	cfg := core.DefaultConfig()
	// Boot log on PA9 at 115200 8N1
	cfg.Console = true

	fw, err := core.New(hal.MapDevice(), cfg)
	if err != nil {
		halt()
	}

	// The TinyGo runtime has already started the PLL at 72 MHz. Bring-up
	// expects the reset clock tree: PLL fields are read-only while it runs.
	if err := fw.ResetClockTree(); err != nil {
		halt()
	}

	// Only returns on error; with the default spin budget it never does
	if err := fw.Run(); err != nil {
		halt()
	}
}

// halt stops in a tight loop with the LEDs in whatever state they were
func halt() {
	for {
	}
}
