// Command pwmsim boots the firmware against the register simulator and
// reports what the pins would do on a real board.
package main

import (
	"flag"
	"fmt"
	"os"

	"bluepwm/config"
	"bluepwm/core"
	"bluepwm/sim"
)

var (
	configPath = flag.String("config", "", "JSON firmware configuration (default: production board)")
	cycles     = flag.Int("cycles", 1, "Blink cycles to simulate after boot")
	periods    = flag.Int("periods", 20, "PWM periods to measure")
	budget     = flag.Uint("budget", 1<<24, "Spin budget per poll loop (0 = spin forever)")
	noHSE      = flag.Bool("no-hse", false, "Simulate a board without the 8 MHz crystal")
	verbose    = flag.Bool("verbose", false, "Print every LED edge")
)

func main() {
	flag.Parse()

	cfg := core.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	var opts []sim.Option
	if *noHSE {
		opts = append(opts, sim.WithoutHSE())
	}
	m := sim.New(opts...)

	fw, err := core.New(m.Device(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fw.SetSpinBudget(uint32(*budget))
	fw.SetDebugWriter(func(msg string) {
		fmt.Printf("[%10v] %s\n", m.Now(), msg)
	})

	fmt.Println("Boot")
	fmt.Println("====")
	if err := fw.Boot(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: boot failed at stage %v: %v\n", fw.Stage(), err)
		printFaults(m)
		os.Exit(1)
	}
	fmt.Printf("SYSCLK %d Hz after %v (%d cycles)\n\n", m.SysClock(), m.Now(), m.Cycles())

	measurePWM(m, cfg)

	if err := blink(m, fw, *cycles); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if printFaults(m) {
		os.Exit(1)
	}
}

// measurePWM samples PB6 once per PWM tick
func measurePWM(m *sim.Machine, cfg core.Config) {
	step := uint64(cfg.PWMPrescaler()) + 1
	pwm := m.MeasurePWM(sim.PortB, core.PinPWM, step, int(cfg.PWMPeriod)*(*periods+1))

	fmt.Println("PWM on PB6")
	fmt.Println("==========")
	if pwm.Periods == 0 {
		fmt.Println("no edges seen")
		fmt.Println()
		return
	}
	fmt.Printf("periods  %d\n", pwm.Periods)
	fmt.Printf("period   %v (expected %d ticks at %d Hz)\n", pwm.Period, cfg.PWMPeriod, cfg.PWMTickHz)
	fmt.Printf("freq     %.1f Hz (expected %d Hz)\n", pwm.Frequency(), cfg.PWMFrequency())
	fmt.Printf("duty     %.1f%% (expected %d%%)\n\n", pwm.Duty*100, cfg.PWMDutyPercent())
}

func blink(m *sim.Machine, fw *core.Firmware, n int) error {
	fmt.Println("Blink")
	fmt.Println("=====")

	start := len(m.Edges())
	for i := 0; i < n; i++ {
		if err := fw.BlinkCycle(); err != nil {
			return fmt.Errorf("blink cycle %d: %w", i, err)
		}
	}

	edges := m.Edges()[start:]
	for i, e := range edges {
		if !*verbose && i >= 8 {
			fmt.Printf("... %d more edges\n", len(edges)-i)
			break
		}
		level := "low"
		if e.Level {
			level = "high"
		}
		fmt.Printf("[%10v] P%v%d %s\n", e.Time, e.Port, e.Pin, level)
	}
	fmt.Println()
	return nil
}

// printFaults prints simulator faults and reports whether there were any
func printFaults(m *sim.Machine) bool {
	faults := m.Faults()
	if len(faults) == 0 {
		fmt.Println("No faults")
		return false
	}
	fmt.Printf("Faults (%d):\n", len(faults))
	for _, f := range faults {
		fmt.Printf("  cycle %d: %v\n", f.Cycle, f)
	}
	return true
}
