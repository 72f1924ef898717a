// Command bootmon watches the board's console UART through a USB-UART
// adapter on PA9, prints the boot log and checks it against the firmware
// configuration.
package main

import (
	"flag"
	"fmt"
	"os"

	"bluepwm/host/monitor"
	"bluepwm/host/serial"
)

var (
	device     = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud       = flag.Int("baud", serial.ConsoleBaud, "Baud rate (must match console_baud)")
	configPath = flag.String("config", "", "JSON firmware configuration (default: production board)")
	verbose    = flag.Bool("verbose", false, "Echo every received line")
)

func main() {
	flag.Parse()

	cfg, err := monitor.BootConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mon := monitor.NewMonitor()
	mon.Verbose = *verbose

	serialCfg := serial.DefaultConfig(*device)
	serialCfg.Baud = *baud

	fmt.Printf("Opening console on %s at %d baud...\n", *device, *baud)
	if err := mon.ConnectWithConfig(serialCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer mon.Close()

	fmt.Println("Waiting for boot (reset the board)...")
	report, err := mon.WaitBoot()
	if report != nil {
		monitor.PrintReport(report)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := report.Check(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Boot log does not match the configuration:\n%v\n", err)
		os.Exit(1)
	}
	fmt.Println("Boot log matches the configuration")
}
