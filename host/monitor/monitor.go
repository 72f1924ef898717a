package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"bluepwm/host/serial"
)

// ErrIncompleteBoot is returned when the log ends before "boot: run"
var ErrIncompleteBoot = errors.New("boot log ended before the run stage")

// Monitor is a connection to the firmware console
type Monitor struct {
	// Serial port
	port serial.Port

	// Connection state
	connected bool

	// Verbose echoes every received line
	Verbose bool
}

// NewMonitor creates a new Monitor (not yet connected)
func NewMonitor() *Monitor {
	return &Monitor{
		connected: false,
	}
}

// Connect opens the console on device at the default baud rate
func (m *Monitor) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the console with a custom serial config
func (m *Monitor) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	// Bytes from before the reset are not part of this boot
	if err := port.Flush(); err != nil {
		port.Close()
		return fmt.Errorf("failed to flush serial port: %w", err)
	}

	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *Monitor) Attach(port serial.Port) {
	m.port = port
	m.connected = true
}

// Close closes the console port
func (m *Monitor) Close() error {
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			return err
		}
	}
	m.connected = false
	return nil
}

// WaitBoot reads the console until the firmware logs its run stage
func (m *Monitor) WaitBoot() (*Report, error) {
	if !m.connected {
		return nil, fmt.Errorf("not connected to the console")
	}

	report := &Report{}
	err := Watch(m.port, func(line string, ev Event, err error) bool {
		if m.Verbose {
			fmt.Printf("< %s\n", line)
		}
		if err != nil {
			report.Noise++
			return true
		}
		report.Add(ev)
		return ev.Stage != StageRun
	})
	if err != nil {
		return report, err
	}
	if !report.Complete() {
		return report, ErrIncompleteBoot
	}
	return report, nil
}

// Watch scans r line by line, handing each line and its parse result to
// fn until fn returns false or r is exhausted.
func Watch(r io.Reader, fn func(line string, ev Event, err error) bool) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		ev, err := ParseLine(line)
		if !fn(line, ev, err) {
			return nil
		}
	}
	return scanner.Err()
}

// PrintReport prints a summary of a boot report
func PrintReport(r *Report) {
	fmt.Println("\n=== Boot Log ===")
	for _, ev := range r.Events {
		fmt.Printf("  %-8s", ev.Stage)
		for _, kv := range strings.Fields(strings.TrimPrefix(ev.Raw, linePrefix+ev.Stage)) {
			fmt.Printf(" %s", kv)
		}
		fmt.Println()
	}
	if r.Noise > 0 {
		fmt.Printf("  (%d unrecognised lines)\n", r.Noise)
	}
	fmt.Println("================")
}
