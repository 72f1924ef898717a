// PWM (Pulse Width Modulation) output on TIM4 channel 1 (PB6)
package core

import "bluepwm/hal"

// InitPWM starts TIM4 in edge-aligned PWM mode 1 on channel 1. Once it
// returns the pin toggles in hardware with no further software involvement.
func (f *Firmware) InitPWM() error {
	if !f.clockReady {
		return ErrClockNotReady
	}
	if !f.gpioReady {
		return ErrGPIONotReady
	}
	tim := f.dev.TIM4

	f.dev.RCC.APB1ENR.SetBits(hal.RCC_APB1ENR_TIM4EN)

	// Tick rate, period and high time
	tim.PSC.Set(f.cfg.PWMPrescaler())
	tim.ARR.Set(f.cfg.PWMReload())
	tim.CCR1.Set(f.cfg.PWMCompare())

	// PWM mode 1: output active while CNT < CCR1
	tim.CCMR1.ClearBits(hal.TIM_CCMR1_OC1M_Msk)
	tim.CCMR1.SetBits(hal.TIM_OCM_PWM1 << hal.TIM_CCMR1_OC1M_Pos)
	// CCR1 preload: later compare writes land on a period boundary
	tim.CCMR1.SetBits(hal.TIM_CCMR1_OC1PE)

	tim.CCER.SetBits(hal.TIM_CCER_CC1E)
	tim.CR1.SetBits(hal.TIM_CR1_ARPE | hal.TIM_CR1_CEN)

	// Must follow the preload enables: latches PSC/ARR/CCR1 into the
	// shadow registers so the first period is already correct.
	tim.EGR.Set(hal.TIM_EGR_UG)

	f.stage = StagePWM
	return nil
}

// pwmReport is the boot log line for the PWM stage
func (f *Firmware) pwmReport() string {
	return "boot: pwm tim=4 ch=1 psc=" + utoa(f.cfg.PWMPrescaler()) +
		" arr=" + utoa(f.cfg.PWMReload()) +
		" ccr=" + utoa(f.cfg.PWMCompare()) +
		" freq=" + utoa(f.cfg.PWMFrequency()) +
		" duty=" + utoa(f.cfg.PWMDutyPercent())
}
