// Peripheral bring-up for the STM32F103: clock tree, delay timer, GPIO,
// PWM timer, then the foreground blink loop.
package core

import (
	"errors"

	"bluepwm/hal"
)

// Stage is the last bring-up step that completed
type Stage uint8

const (
	StageReset Stage = iota
	StageClock
	StageConsole
	StageDelay
	StageGPIO
	StagePWM
	StageRunning
)

var stageNames = [...]string{"reset", "clock", "console", "delay", "gpio", "pwm", "run"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

var (
	// ErrStalled is returned when a polled hardware condition did not become
	// true within the spin budget. With SpinForever it is never returned.
	ErrStalled = errors.New("hardware poll stalled")

	// ErrClockNotReady is returned when a timing-dependent peripheral is
	// configured before the PLL has been confirmed as SYSCLK.
	ErrClockNotReady = errors.New("system clock not switched to PLL")

	// ErrGPIONotReady is returned when the PWM timer is configured before
	// its output pin.
	ErrGPIONotReady = errors.New("PWM pin not configured")
)

// Firmware owns the peripheral handles and runs the bring-up sequence.
// It is the only writer of every register it touches.
type Firmware struct {
	dev *hal.Device
	cfg Config

	stage      Stage
	clockReady bool
	delayReady bool
	gpioReady  bool

	// spinBudget bounds every poll loop (SpinForever = no bound)
	spinBudget uint32

	debug DebugWriter
}

// New validates cfg and returns a Firmware bound to dev
func New(dev *hal.Device, cfg Config) (*Firmware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Firmware{
		dev:        dev,
		cfg:        cfg,
		spinBudget: SpinForever,
		debug:      func(string) {},
	}, nil
}

// Config returns the configuration the firmware was built with
func (f *Firmware) Config() Config {
	return f.cfg
}

// Stage returns the last completed bring-up step
func (f *Firmware) Stage() Stage {
	return f.stage
}

// SetSpinBudget bounds every hardware poll loop to n iterations.
// SpinForever restores the fail-stop behaviour of hanging until the
// hardware responds.
func (f *Firmware) SetSpinBudget(n uint32) {
	f.spinBudget = n
}

// Boot runs the one-shot bring-up sequence in hardware dependency order
func (f *Firmware) Boot() error {
	if err := f.InitClock(); err != nil {
		return err
	}
	// The console needs the final PCLK2, so the clock line is logged late
	if f.cfg.Console {
		if err := f.InitConsole(); err != nil {
			return err
		}
	}
	f.log(f.clockReport())

	if err := f.InitDelayTimer(); err != nil {
		return err
	}
	f.log(f.delayReport())

	if err := f.InitGPIO(); err != nil {
		return err
	}
	f.log(f.gpioReport())

	if err := f.InitPWM(); err != nil {
		return err
	}
	f.log(f.pwmReport())

	f.stage = StageRunning
	f.log("boot: run")
	return nil
}

// Run boots the firmware and then blinks forever. It only returns when a
// bounded poll stalls or the bring-up fails.
func (f *Firmware) Run() error {
	if err := f.Boot(); err != nil {
		return err
	}
	for {
		if err := f.BlinkCycle(); err != nil {
			return err
		}
	}
}
