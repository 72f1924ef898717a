// GPIO (General Purpose Input/Output) setup for the blink and PWM pins
package core

import "bluepwm/hal"

// Board pin assignment, all on GPIOB
const (
	PinPWM  = 6 // TIM4_CH1 in the default (unremapped) AFIO mapping
	PinLEDA = 7
	PinLEDB = 8
)

// Pin configuration nibbles
const (
	pinOutput    = hal.GPIO_MODE_Out2MHz | hal.GPIO_CNF_OutPushPull // 0x2
	pinAltOutput = hal.GPIO_MODE_Out2MHz | hal.GPIO_CNF_AltPushPull // 0xA
)

// LED identifies one of the two software-driven output pins
type LED uint8

const (
	LEDA LED = PinLEDA
	LEDB LED = PinLEDB
)

// InitGPIO configures PB7/PB8 as push-pull outputs and PB6 as the
// alternate-function output handed to TIM4.
func (f *Firmware) InitGPIO() error {
	gpio := f.dev.GPIOB

	f.dev.RCC.APB2ENR.SetBits(hal.RCC_APB2ENR_IOPBEN)

	configurePin(gpio, PinLEDA, pinOutput)
	configurePin(gpio, PinLEDB, pinOutput)
	configurePin(gpio, PinPWM, pinAltOutput)

	f.gpioReady = true
	f.stage = StageGPIO
	return nil
}

// configurePin clears pin's 4-bit CNF/MODE field before writing the new
// one so no reset-default bits survive.
func configurePin(port *hal.GPIOType, pin uint8, nibble uint32) {
	reg, shift := port.ConfigReg(pin)
	reg.ClearBits(hal.GPIO_CR_Msk << shift)
	reg.SetBits(nibble << shift)
}

// SetLED drives an LED pin through BSRR. Only one half of BSRR is written
// per call, never a set and a reset for the same pin.
func (f *Firmware) SetLED(led LED, on bool) {
	if on {
		f.dev.GPIOB.BSRR.Set(1 << led)
	} else {
		f.dev.GPIOB.BSRR.Set(1 << (uint32(led) + hal.GPIO_BSRR_ResetShift))
	}
}

// gpioReport is the boot log line for the GPIO stage
func (f *Firmware) gpioReport() string {
	return "boot: gpio pb" + utoa(PinLEDA) + "=out-pp pb" + utoa(PinLEDB) +
		"=out-pp pb" + utoa(PinPWM) + "=af-pp speed=2mhz"
}
