package core

import "bluepwm/hal"

// PinConsoleTX is USART1 TX on GPIOA in the default mapping
const PinConsoleTX = 9

const pinConsole = hal.GPIO_MODE_Out2MHz | hal.GPIO_CNF_AltPushPull

// InitConsole configures USART1 for 8N1 transmit-only output on PA9 and
// routes the boot log to it. It needs the final SYSCLK for the baud rate.
func (f *Firmware) InitConsole() error {
	if !f.clockReady {
		return ErrClockNotReady
	}
	usart := f.dev.USART1

	f.dev.RCC.APB2ENR.SetBits(hal.RCC_APB2ENR_IOPAEN | hal.RCC_APB2ENR_USART1EN)
	configurePin(f.dev.GPIOA, PinConsoleTX, pinConsole)

	// The runtime may have left USART1 running at another SYSCLK.
	// BRR only changes with UE clear.
	usart.CR1.Set(0)
	usart.BRR.Set(f.cfg.ConsoleBRR())
	usart.CR1.Set(hal.USART_CR1_UE | hal.USART_CR1_TE)

	f.debug = f.consoleWrite
	f.stage = StageConsole
	f.log("boot: console baud=" + utoa(f.cfg.ConsoleBaud))
	return nil
}

// consoleWrite sends msg, its checksum and CRLF, polling TXE before each
// byte: "<msg> crc=<hex16>\r\n"
func (f *Firmware) consoleWrite(msg string) {
	line := msg + " crc=" + hex16(CRC16(msg)) + "\r\n"
	for i := 0; i < len(line); i++ {
		if f.consolePutc(line[i]) != nil {
			return
		}
	}
}

func (f *Firmware) consolePutc(c byte) error {
	usart := f.dev.USART1
	if err := f.spinUntil(func() bool { return usart.SR.HasBits(hal.USART_SR_TXE) }); err != nil {
		return err
	}
	usart.DR.Set(uint32(c))
	return nil
}
