// Package sim is a cycle-counting register model of the STM32F103 blocks
// the firmware touches: clock tree, flash wait states, GPIO ports, the
// general-purpose timers and USART1 transmit. It lets the bring-up code run
// unmodified on the host and exposes pin levels, edges and faults to tests.
package sim

import (
	"time"

	"bluepwm/hal"
)

// Simulation defaults
const (
	DefaultAccessCost = 16      // core cycles per register access
	DefaultHSE        = 8000000 // Hz
	DefaultHSEStartup = 2000    // core cycles from HSEON to HSERDY
	DefaultPLLLock    = 1600    // core cycles from PLLON to PLLRDY

	// keeps cycles*1e12 within uint64
	maxAdvanceStep = 1 << 20
)

// Fault records a register access the real part would mishandle
type Fault struct {
	Cycle  uint64
	Reg    string
	Reason string
}

func (f Fault) String() string {
	return f.Reg + ": " + f.Reason
}

// Access is one logged register access
type Access struct {
	Cycle uint64
	Reg   string
	Write bool
	Value uint32
}

// Option configures a Machine
type Option func(*Machine)

// WithoutHSE models a board with no external crystal: HSERDY never sets
func WithoutHSE() Option {
	return func(m *Machine) {
		m.clock.hsePresent = false
	}
}

// WithHSE sets the external oscillator frequency
func WithHSE(hz uint32) Option {
	return func(m *Machine) {
		m.clock.hseFreq = hz
	}
}

// WithAccessCost sets the core cycles consumed by each register access
func WithAccessCost(cycles uint64) Option {
	return func(m *Machine) {
		m.accessCost = cycles
	}
}

// WithHSEStartup sets the HSE stabilisation time in core cycles
func WithHSEStartup(cycles uint64) Option {
	return func(m *Machine) {
		m.clock.hseStartup = cycles
	}
}

// WithAccessLog records every register access, see Accesses
func WithAccessLog() Option {
	return func(m *Machine) {
		m.logging = true
	}
}

// Machine is the simulated microcontroller
type Machine struct {
	dev  *hal.Device
	regs map[uintptr]*register

	accessCost uint64
	cycles     uint64
	timePS     uint64 // elapsed picoseconds
	psRem      uint64
	timRem     uint64

	clock clockTree
	tim2  *timer
	tim4  *timer

	ports   [numPorts]*port
	edges   []Edge
	console []byte

	faults  []Fault
	logging bool
	log     []Access
}

// New returns a Machine in its reset state
func New(opts ...Option) *Machine {
	m := &Machine{
		regs:       make(map[uintptr]*register),
		accessCost: DefaultAccessCost,
	}
	m.clock = clockTree{
		m:          m,
		hsePresent: true,
		hseFreq:    DefaultHSE,
		hseStartup: DefaultHSEStartup,
		pllLock:    DefaultPLLLock,
		sysSrc:     hal.RCC_CFGR_SW_HSI,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.tim2 = newTimer(m, "TIM2", hal.TIM2Base)
	m.tim4 = newTimer(m, "TIM4", hal.TIM4Base)
	m.ports[PortA] = newPort(m, PortA, hal.GPIOABase)
	m.ports[PortB] = newPort(m, PortB, hal.GPIOBBase)

	m.dev = hal.NewDevice(m.bind)
	return m
}

// Device returns the register handles to hand to the firmware
func (m *Machine) Device() *hal.Device {
	return m.dev
}

// Cycles returns elapsed core cycles
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Now returns elapsed simulated time
func (m *Machine) Now() time.Duration {
	return time.Duration(m.timePS / 1000)
}

// SysClock returns the current SYSCLK frequency in Hz
func (m *Machine) SysClock() uint32 {
	return m.clock.sysClock()
}

// Faults returns every fault recorded so far
func (m *Machine) Faults() []Fault {
	return m.faults
}

// Accesses returns the access log (empty unless WithAccessLog was given)
func (m *Machine) Accesses() []Access {
	return m.log
}

// Console returns every byte transmitted on USART1
func (m *Machine) Console() string {
	return string(m.console)
}

// Peek returns a register's value without consuming time or logging
func (m *Machine) Peek(addr uintptr) uint32 {
	r, ok := m.regs[addr]
	if !ok {
		return 0
	}
	return r.peek()
}

// Advance lets cycles core cycles elapse
func (m *Machine) Advance(cycles uint64) {
	for cycles > 0 {
		step := cycles
		if step > maxAdvanceStep {
			step = maxAdvanceStep
		}
		m.advance(step)
		cycles -= step
	}
}

func (m *Machine) advance(cycles uint64) {
	m.clock.update()
	sys := uint64(m.clock.sysClock())

	m.cycles += cycles

	ps := cycles*1e12 + m.psRem
	m.timePS += ps / sys
	m.psRem = ps % sys

	// Timer kernel clock never exceeds SYSCLK
	tc := cycles*uint64(m.clock.timerClock()) + m.timRem
	ticks := tc / sys
	m.timRem = tc % sys

	m.tim2.advance(ticks)
	m.tim4.advance(ticks)
}

func (m *Machine) fault(reg, reason string) {
	m.faults = append(m.faults, Fault{Cycle: m.cycles, Reg: reg, Reason: reason})
}

func (m *Machine) record(r *register, write bool, v uint32) {
	if !m.logging {
		return
	}
	m.log = append(m.log, Access{Cycle: m.cycles, Reg: r.name, Write: write, Value: v})
}

// afterWrite lets port models notice software-driven pin changes
func (m *Machine) afterWrite(r *register) {
	for _, p := range m.ports {
		if r.addr >= p.base && r.addr < p.base+0x400 {
			p.recordEdges()
		}
	}
}

// bind creates the register model for addr
func (m *Machine) bind(addr uintptr, name string) hal.Register {
	r := &register{m: m, addr: addr, name: name}
	m.regs[addr] = r

	switch {
	case addr >= hal.RCCBase && addr < hal.RCCBase+0x400:
		m.clock.bindRCC(r)
	case addr >= hal.FlashBase && addr < hal.FlashBase+0x400:
		m.clock.bindFlash(r)
	case addr >= hal.TIM2Base && addr < hal.TIM2Base+0x400:
		m.tim2.bind(r)
	case addr >= hal.TIM4Base && addr < hal.TIM4Base+0x400:
		m.tim4.bind(r)
	case addr >= hal.GPIOABase && addr < hal.GPIOABase+0x400:
		m.ports[PortA].bind(r)
	case addr >= hal.GPIOBBase && addr < hal.GPIOBBase+0x400:
		m.ports[PortB].bind(r)
	case addr >= hal.USART1Base && addr < hal.USART1Base+0x400:
		m.bindUSART(r)
	case addr >= hal.AFIOBase && addr < hal.AFIOBase+0x400:
		r.gate = m.apb2Enabled(hal.RCC_APB2ENR_AFIOEN)
	}
	return r
}

// apb2Enabled returns a gate checking an RCC_APB2ENR bit
func (m *Machine) apb2Enabled(bit uint32) func() bool {
	return func() bool {
		return m.Peek(hal.RCCBase+hal.RCC_APB2ENR)&bit != 0
	}
}

// apb1Enabled returns a gate checking an RCC_APB1ENR bit
func (m *Machine) apb1Enabled(bit uint32) func() bool {
	return func() bool {
		return m.Peek(hal.RCCBase+hal.RCC_APB1ENR)&bit != 0
	}
}
