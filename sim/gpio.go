package sim

import (
	"time"

	"bluepwm/hal"
)

// Port identifies a simulated GPIO port
type Port uint8

const (
	PortA Port = iota
	PortB
	numPorts
)

func (p Port) String() string {
	return string(rune('A' + p))
}

// Edge is a software-driven level change on a general-purpose output pin
type Edge struct {
	Time  time.Duration
	Cycle uint64
	Port  Port
	Pin   uint8
	Level bool
}

type port struct {
	m    *Machine
	id   Port
	base uintptr

	crl, crh, odr *register

	// lastOut is the output level of each GP output pin at the previous write
	lastOut uint16
}

func newPort(m *Machine, id Port, base uintptr) *port {
	return &port{m: m, id: id, base: base}
}

func (p *port) bind(r *register) {
	switch r.addr - p.base {
	case hal.GPIO_CRL:
		p.crl = r
		r.value = hal.GPIO_CR_ResetValue
	case hal.GPIO_CRH:
		p.crh = r
		r.value = hal.GPIO_CR_ResetValue
	case hal.GPIO_ODR:
		p.odr = r
		r.write = func(r *register, v uint32) {
			r.value = v & 0xFFFF
		}
	case hal.GPIO_IDR:
		// Inputs float low; outputs read back their driven level
		r.read = func(r *register) uint32 {
			var v uint32
			for pin := uint8(0); pin < 16; pin++ {
				if p.level(pin) {
					v |= 1 << pin
				}
			}
			return v
		}
		r.write = func(*register, uint32) {}
	case hal.GPIO_BSRR:
		// Write-only. Set wins when both halves name the same pin.
		r.write = func(_ *register, v uint32) {
			set := v & 0xFFFF
			reset := v >> hal.GPIO_BSRR_ResetShift
			p.odr.value = (p.odr.value &^ reset) | set
		}
	case hal.GPIO_BRR:
		r.write = func(_ *register, v uint32) {
			p.odr.value &^= v & 0xFFFF
		}
	}

	bit := uint32(hal.RCC_APB2ENR_IOPAEN)
	if p.id == PortB {
		bit = hal.RCC_APB2ENR_IOPBEN
	}
	r.gate = p.m.apb2Enabled(bit)
}

// config returns pin's 4-bit CNF/MODE field
func (p *port) config(pin uint8) uint32 {
	reg, shift := p.crl, pin*hal.GPIO_BitsPerConfigPin
	if pin >= hal.GPIO_PinsPerConfigReg {
		reg, shift = p.crh, (pin-hal.GPIO_PinsPerConfigReg)*hal.GPIO_BitsPerConfigPin
	}
	return (reg.value >> shift) & hal.GPIO_CR_Msk
}

func isOutput(cfg uint32) bool {
	return cfg&0x3 != hal.GPIO_MODE_Input
}

func isAlternate(cfg uint32) bool {
	return isOutput(cfg) && (cfg>>2)&0x2 != 0
}

// level returns the level driven on pin
func (p *port) level(pin uint8) bool {
	cfg := p.config(pin)
	switch {
	case !isOutput(cfg):
		return false
	case isAlternate(cfg):
		return p.m.alternateLevel(p.id, pin)
	}
	return p.odr.value&(1<<pin) != 0
}

// recordEdges appends an Edge for every GP output pin whose level changed
func (p *port) recordEdges() {
	var out uint16
	for pin := uint8(0); pin < 16; pin++ {
		cfg := p.config(pin)
		if isOutput(cfg) && !isAlternate(cfg) && p.odr.value&(1<<pin) != 0 {
			out |= 1 << pin
		}
	}

	changed := out ^ p.lastOut
	p.lastOut = out
	for pin := uint8(0); pin < 16; pin++ {
		if changed&(1<<pin) == 0 {
			continue
		}
		p.m.edges = append(p.m.edges, Edge{
			Time:  p.m.Now(),
			Cycle: p.m.cycles,
			Port:  p.id,
			Pin:   pin,
			Level: out&(1<<pin) != 0,
		})
	}
}

// alternateLevel returns the level of a pin driven by a peripheral
func (m *Machine) alternateLevel(id Port, pin uint8) bool {
	switch {
	case id == PortB && pin == 6:
		return m.tim4.channel1()
	case id == PortA && pin == 9:
		// TX idles high and bytes are sent instantly
		return m.usartEnabled()
	}
	return false
}

// PinLevel returns the level currently driven on a pin
func (m *Machine) PinLevel(id Port, pin uint8) bool {
	return m.ports[id].level(pin)
}

// PinConfig returns a pin's 4-bit CNF/MODE field
func (m *Machine) PinConfig(id Port, pin uint8) uint32 {
	return m.ports[id].config(pin)
}

// Edges returns every software-driven output edge so far
func (m *Machine) Edges() []Edge {
	return m.edges
}
