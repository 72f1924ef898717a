package sim

import "bluepwm/hal"

// timer models a general-purpose up-counting timer: prescaler with its own
// counter, preloaded PSC/ARR/CCR1 with active (shadow) copies, update
// events on overflow and on UG, and the channel 1 compare output.
type timer struct {
	m    *Machine
	name string
	base uintptr

	cr1, ccmr1, ccer, sr, cnt, psc, arr, ccr1 *register

	// active copies loaded on update events
	pscActive  uint32
	arrActive  uint32
	ccr1Active uint32

	pscCount uint32
}

const timerResetARR = 0xFFFF

func newTimer(m *Machine, name string, base uintptr) *timer {
	return &timer{
		m:         m,
		name:      name,
		base:      base,
		arrActive: timerResetARR,
	}
}

func (t *timer) bind(r *register) {
	switch base := t.base; r.addr {
	case base + hal.TIM_CR1:
		t.cr1 = r
	case base + hal.TIM_CCMR1:
		t.ccmr1 = r
	case base + hal.TIM_CCER:
		t.ccer = r
	case base + hal.TIM_SR:
		t.sr = r
		// rc_w0: writing 0 clears a flag, writing 1 has no effect
		r.write = func(r *register, v uint32) {
			r.value &= v
		}
	case base + hal.TIM_EGR:
		// write-only, reads as zero
		r.write = func(r *register, v uint32) {
			if v&hal.TIM_EGR_UG != 0 {
				t.update()
			}
		}
	case base + hal.TIM_CNT:
		t.cnt = r
		r.write = func(r *register, v uint32) {
			r.value = v & 0xFFFF
		}
	case base + hal.TIM_PSC:
		t.psc = r
		r.write = func(r *register, v uint32) {
			r.value = v & hal.TIM_MaxPrescaler
		}
	case base + hal.TIM_ARR:
		t.arr = r
		r.value = timerResetARR
		r.write = func(r *register, v uint32) {
			r.value = v & hal.TIM_MaxReload
			if t.cr1.value&hal.TIM_CR1_ARPE == 0 {
				t.arrActive = r.value
			}
		}
	case base + hal.TIM_CCR1:
		t.ccr1 = r
		r.write = func(r *register, v uint32) {
			r.value = v & 0xFFFF
			if t.ccmr1.value&hal.TIM_CCMR1_OC1PE == 0 {
				t.ccr1Active = r.value
			}
		}
	}

	if t.base == hal.TIM2Base {
		r.gate = t.m.apb1Enabled(hal.RCC_APB1ENR_TIM2EN)
	} else {
		r.gate = t.m.apb1Enabled(hal.RCC_APB1ENR_TIM4EN)
	}
}

// update is an update event: counter and prescaler restart from zero and
// every preloaded register is copied to its active register.
func (t *timer) update() {
	t.cnt.value = 0
	t.pscCount = 0
	t.reload()
}

// reload copies preload registers into the active registers
func (t *timer) reload() {
	t.pscActive = t.psc.value
	t.arrActive = t.arr.value
	t.ccr1Active = t.ccr1.value
	t.sr.value |= hal.TIM_SR_UIF
}

// advance counts ticks timer-kernel clock cycles
func (t *timer) advance(ticks uint64) {
	if t.cr1.value&hal.TIM_CR1_CEN == 0 || ticks == 0 {
		return
	}

	total := uint64(t.pscCount) + ticks
	div := uint64(t.pscActive) + 1
	counts := total / div
	t.pscCount = uint32(total % div)

	for counts > 0 {
		// The F1 timers stay blocked while the auto-reload value is zero
		if t.arrActive == 0 {
			t.cnt.value = 0
			return
		}

		cnt := t.cnt.value
		toWrap := 0x10000 - uint64(cnt) // ARR lowered below CNT: run to 0xFFFF
		if cnt <= t.arrActive {
			toWrap = uint64(t.arrActive-cnt) + 1
		}

		if counts < toWrap {
			t.cnt.value = cnt + uint32(counts)
			return
		}

		counts -= toWrap
		t.cnt.value = 0
		if t.cr1.value&hal.TIM_CR1_UDIS == 0 {
			t.reload()
			if next := uint64(t.pscActive) + 1; next != div {
				rest := counts*div + uint64(t.pscCount)
				div = next
				counts = rest / div
				t.pscCount = uint32(rest % div)
			}
		}

		// Active registers now match the preloads, so every later period
		// is identical
		if t.arrActive > 0 {
			counts %= uint64(t.arrActive) + 1
		}
	}
}

// channel1 returns the OC1 output level
func (t *timer) channel1() bool {
	if t.ccer.value&hal.TIM_CCER_CC1E == 0 {
		return false
	}

	var ref bool
	switch (t.ccmr1.value & hal.TIM_CCMR1_OC1M_Msk) >> hal.TIM_CCMR1_OC1M_Pos {
	case hal.TIM_OCM_PWM1:
		ref = t.cnt.value < t.ccr1Active
	case hal.TIM_OCM_PWM2:
		ref = t.cnt.value >= t.ccr1Active
	case hal.TIM_OCM_ForceActive:
		ref = true
	}

	if t.ccer.value&hal.TIM_CCER_CC1P != 0 {
		ref = !ref
	}
	return ref
}

// TimerState is a snapshot of a timer's counter and active registers
type TimerState struct {
	Enabled   bool
	Count     uint32
	Prescaler uint32 // active
	Reload    uint32 // active
	Compare1  uint32 // active
}

func (t *timer) state() TimerState {
	return TimerState{
		Enabled:   t.cr1.value&hal.TIM_CR1_CEN != 0,
		Count:     t.cnt.value,
		Prescaler: t.pscActive,
		Reload:    t.arrActive,
		Compare1:  t.ccr1Active,
	}
}

// TIM2 returns the delay timer's state
func (m *Machine) TIM2() TimerState {
	return m.tim2.state()
}

// TIM4 returns the PWM timer's state
func (m *Machine) TIM4() TimerState {
	return m.tim4.state()
}
