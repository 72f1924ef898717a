package monitor

import (
	"errors"
	"fmt"

	"bluepwm/core"
)

// Report collects the events of one boot
type Report struct {
	Events []Event

	// Noise counts received lines that were not boot log lines
	Noise int
}

// Add appends ev to the report
func (r *Report) Add(ev Event) {
	r.Events = append(r.Events, ev)
}

// Stages returns the logged stages in order
func (r *Report) Stages() []string {
	stages := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		stages = append(stages, ev.Stage)
	}
	return stages
}

// Stage returns the first event for stage
func (r *Report) Stage(stage string) (Event, bool) {
	for _, ev := range r.Events {
		if ev.Stage == stage {
			return ev, true
		}
	}
	return Event{}, false
}

// Complete reports whether the firmware reached its foreground loop
func (r *Report) Complete() bool {
	_, ok := r.Stage(StageRun)
	return ok
}

// bootOrder is the order the firmware brings up its peripherals
var bootOrder = []string{StageClock, StageDelay, StageGPIO, StagePWM, StageRun}

// expectation is one numeric field the firmware must have logged
type expectation struct {
	stage, key string
	want       uint32
}

// Check compares the report with the values cfg must produce. Every
// mismatch is returned, joined into one error.
func (r *Report) Check(cfg core.Config) error {
	var errs []error

	stages := r.Stages()
	if len(stages) > 0 && stages[0] == StageConsole {
		if !cfg.Console {
			errs = append(errs, fmt.Errorf("console stage logged with the console disabled"))
		}
		stages = stages[1:]
	}
	if !equalStages(stages, bootOrder) {
		errs = append(errs, fmt.Errorf("stage order %v, expected %v", stages, bootOrder))
	}

	expected := []expectation{
		{StageClock, "sysclk", cfg.SysClock()},
		{StageClock, "pllmul", cfg.PLLMultiplier},
		{StageClock, "latency", cfg.FlashLatency()},
		{StageDelay, "psc", cfg.DelayPrescaler()},
		{StageDelay, "arr", core.MaxDelayTicks},
		{StagePWM, "psc", cfg.PWMPrescaler()},
		{StagePWM, "arr", cfg.PWMReload()},
		{StagePWM, "ccr", cfg.PWMCompare()},
		{StagePWM, "freq", cfg.PWMFrequency()},
		{StagePWM, "duty", cfg.PWMDutyPercent()},
	}
	if cfg.Console {
		expected = append(expected, expectation{StageConsole, "baud", cfg.ConsoleBaud})
	}

	for _, e := range expected {
		ev, ok := r.Stage(e.stage)
		if !ok {
			// Already reported by the order check
			continue
		}
		got, err := ev.Uint(e.key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if got != e.want {
			errs = append(errs, fmt.Errorf("%s: %s=%d, expected %d", e.stage, e.key, got, e.want))
		}
	}

	return errors.Join(errs...)
}

func equalStages(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
