//go:build !tinygo

package hal

// MapDevice returns a Device backed by plain memory words (regular Go).
// Registers keep whatever is written to them and have no hardware side
// effects; use package sim for a behavioural model.
func MapDevice() *Device {
	return NewDevice(func(addr uintptr, name string) Register {
		return &Word{Value: resetValue(addr)}
	})
}

// resetValue returns the documented reset value of the register at addr
// for the registers whose reset state is not zero.
func resetValue(addr uintptr) uint32 {
	switch addr {
	case RCCBase + RCC_CR:
		return 0x00000083 // HSION | HSIRDY, HSITRIM = 16
	case FlashBase + FLASH_ACR:
		return 0x00000030 // PRFTBE | PRFTBS
	case GPIOABase + GPIO_CRL, GPIOABase + GPIO_CRH,
		GPIOBBase + GPIO_CRL, GPIOBBase + GPIO_CRH:
		return GPIO_CR_ResetValue
	case USART1Base + USART_SR:
		return 0x000000C0 // TXE | TC
	}
	return 0
}
