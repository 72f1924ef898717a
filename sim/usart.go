package sim

import "bluepwm/hal"

// bindUSART models USART1 transmit only. Bytes leave the shift register
// instantly, so TXE and TC always read set.
func (m *Machine) bindUSART(r *register) {
	switch r.addr - hal.USART1Base {
	case hal.USART_SR:
		r.value = hal.USART_SR_TXE | hal.USART_SR_TC
		r.write = func(r *register, v uint32) {
			// TC is rc_w0, TXE is read-only
			r.value = hal.USART_SR_TXE | hal.USART_SR_TC
		}
	case hal.USART_DR:
		r.write = func(r *register, v uint32) {
			r.value = v & 0x1FF
			if !m.usartEnabled() {
				m.fault(r.name, "write with transmitter disabled")
				return
			}
			m.console = append(m.console, byte(v))
		}
	}
	r.gate = m.apb2Enabled(hal.RCC_APB2ENR_USART1EN)
}

func (m *Machine) usartEnabled() bool {
	const on = hal.USART_CR1_UE | hal.USART_CR1_TE
	return m.Peek(hal.USART1Base+hal.USART_CR1)&on == on
}
