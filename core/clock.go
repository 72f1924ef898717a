package core

import "bluepwm/hal"

// InitClock switches SYSCLK from the internal 8 MHz HSI to HSE * PLL.
// Every step waits for the hardware to confirm the previous one. With the
// default spin budget a missing crystal hangs here forever.
func (f *Firmware) InitClock() error {
	rcc := f.dev.RCC
	flash := f.dev.FLASH

	state := maskInterrupts()
	defer unmaskInterrupts(state)

	// Enable HSE and wait until it is stable
	rcc.CR.SetBits(hal.RCC_CR_HSEON)
	if err := f.spinUntil(func() bool { return rcc.CR.HasBits(hal.RCC_CR_HSERDY) }); err != nil {
		return err
	}

	// Prefetch buffer on, wait states for the target SYSCLK before switching
	flash.ACR.SetBits(hal.FLASH_ACR_PRFTBE)
	flash.ACR.ReplaceBits(f.cfg.FlashLatency(), 0x7, hal.FLASH_ACR_LATENCY_Pos)

	// PCLK1 is limited to 36 MHz
	if f.cfg.APB1Divider() == 2 {
		rcc.CFGR.ReplaceBits(hal.RCC_CFGR_PPRE_Div2, 0x7, hal.RCC_CFGR_PPRE1_Pos)
	}

	// HSE as PLL input, then the multiplier
	rcc.CFGR.SetBits(hal.RCC_CFGR_PLLSRC)
	rcc.CFGR.ReplaceBits(f.cfg.PLLMulCode(), 0xF, hal.RCC_CFGR_PLLMUL_Pos)

	// Enable PLL and wait for lock
	rcc.CR.SetBits(hal.RCC_CR_PLLON)
	if err := f.spinUntil(func() bool { return rcc.CR.HasBits(hal.RCC_CR_PLLRDY) }); err != nil {
		return err
	}

	// Select PLL as SYSCLK and wait until the switch is reported
	rcc.CFGR.ReplaceBits(hal.RCC_CFGR_SW_PLL, 0x3, hal.RCC_CFGR_SW_Pos)
	err := f.spinUntil(func() bool {
		return rcc.CFGR.Get()&hal.RCC_CFGR_SWS_Msk == hal.RCC_CFGR_SWS_PLL<<hal.RCC_CFGR_SWS_Pos
	})
	if err != nil {
		return err
	}

	f.clockReady = true
	f.stage = StageClock
	return nil
}

// clockReport is the boot log line for the clock stage
func (f *Firmware) clockReport() string {
	return "boot: clock sysclk=" + utoa(f.cfg.SysClock()) +
		" pllmul=" + utoa(f.cfg.PLLMultiplier) +
		" latency=" + utoa(f.cfg.FlashLatency())
}

// ResetClockTree returns SYSCLK to the HSI and leaves the PLL off with its
// source, multiplier and bus prescalers at their reset values. A loader or
// runtime that already started the PLL would otherwise make InitClock write
// PLL fields the hardware treats as read-only while the PLL runs.
// Delays are refused until InitClock and InitDelayTimer have run again.
func (f *Firmware) ResetClockTree() error {
	rcc := f.dev.RCC

	state := maskInterrupts()
	defer unmaskInterrupts(state)

	rcc.CFGR.ReplaceBits(hal.RCC_CFGR_SW_HSI, 0x3, hal.RCC_CFGR_SW_Pos)
	err := f.spinUntil(func() bool {
		return rcc.CFGR.Get()&hal.RCC_CFGR_SWS_Msk == hal.RCC_CFGR_SWS_HSI<<hal.RCC_CFGR_SWS_Pos
	})
	if err != nil {
		return err
	}

	rcc.CR.ClearBits(hal.RCC_CR_PLLON)
	if err := f.spinUntil(func() bool { return !rcc.CR.HasBits(hal.RCC_CR_PLLRDY) }); err != nil {
		return err
	}

	rcc.CFGR.ClearBits(hal.RCC_CFGR_PLLSRC | hal.RCC_CFGR_PLLXTPRE | hal.RCC_CFGR_PLLMUL_Msk |
		hal.RCC_CFGR_HPRE_Msk | hal.RCC_CFGR_PPRE1_Msk | hal.RCC_CFGR_PPRE2_Msk)

	// TIM2 keeps the prescaler computed for the PLL clock
	f.clockReady = false
	f.delayReady = false
	f.stage = StageReset
	return nil
}
