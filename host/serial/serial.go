// Package serial opens the USB-UART adapter wired to the board's USART1
// TX pin (PA9), where the firmware prints its boot log.
package serial

import (
	"fmt"
	"io"
)

// ConsoleBaud is the firmware's default console rate
const ConsoleBaud = 115200

// Port is a receive-only console connection. Open returns the tarm/serial
// backed implementation; tests substitute any io.ReadCloser via Wrap.
type Port interface {
	io.ReadCloser

	// Flush discards bytes received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate, must match the firmware's console_baud
	Baud int

	// Read timeout in milliseconds (0 = block until data arrives)
	ReadTimeout int
}

// DefaultConfig returns the configuration for the firmware console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        ConsoleBaud,
		ReadTimeout: 0,
	}
}

// Validate checks the configuration before a port is opened
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial: no device given")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("serial: invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("serial: negative read timeout %d", c.ReadTimeout)
	}
	return nil
}

// readerPort adapts a plain reader (a capture file, a pipe) to Port
type readerPort struct {
	io.ReadCloser
}

// Wrap returns a Port reading from rc. Flush is a no-op.
func Wrap(rc io.ReadCloser) Port {
	return readerPort{rc}
}

func (readerPort) Flush() error {
	return nil
}
