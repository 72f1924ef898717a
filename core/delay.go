package core

import (
	"errors"

	"bluepwm/hal"
)

// MaxDelayTicks is the TIM2 reload ceiling. Longer delays are served as
// consecutive fresh waits so the counter never wraps.
const MaxDelayTicks = hal.TIM_MaxReload

// ErrDelayNotReady is returned by DelayMs before InitDelayTimer
var ErrDelayNotReady = errors.New("delay timer not initialized")

// InitDelayTimer configures TIM2 as a free-running 1 kHz counter
func (f *Firmware) InitDelayTimer() error {
	if !f.clockReady {
		return ErrClockNotReady
	}
	tim := f.dev.TIM2

	f.dev.RCC.APB1ENR.SetBits(hal.RCC_APB1ENR_TIM2EN)
	tim.PSC.Set(f.cfg.DelayPrescaler())
	tim.ARR.Set(MaxDelayTicks)
	tim.CR1.SetBits(hal.TIM_CR1_CEN)

	f.delayReady = true
	f.stage = StageDelay
	return nil
}

// DelayMs blocks for ms milliseconds, counting from zero on every call
func (f *Firmware) DelayMs(ms uint32) error {
	if !f.delayReady {
		return ErrDelayNotReady
	}
	for ms > MaxDelayTicks {
		if err := f.delayTicks(MaxDelayTicks); err != nil {
			return err
		}
		ms -= MaxDelayTicks
	}
	return f.delayTicks(ms)
}

// delayTicks restarts TIM2 from zero and spins until it has counted n ticks
func (f *Firmware) delayTicks(n uint32) error {
	tim := f.dev.TIM2

	tim.CR1.ClearBits(hal.TIM_CR1_CEN)
	tim.CNT.Set(0)
	// Update event: reload PSC/ARR and restart the prescaler from zero
	tim.EGR.Set(hal.TIM_EGR_UG)
	tim.CR1.SetBits(hal.TIM_CR1_CEN)

	err := f.spinUntil(func() bool { return tim.CNT.Get() >= n })

	tim.CR1.ClearBits(hal.TIM_CR1_CEN)
	return err
}

// delayReport is the boot log line for the delay stage
func (f *Firmware) delayReport() string {
	return "boot: delay tim=2 psc=" + utoa(f.cfg.DelayPrescaler()) +
		" arr=" + utoa(MaxDelayTicks)
}
