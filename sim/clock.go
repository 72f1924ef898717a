package sim

import "bluepwm/hal"

const hsiFreq = 8000000

const (
	crReadyBits   = hal.RCC_CR_HSIRDY | hal.RCC_CR_HSERDY | hal.RCC_CR_PLLRDY
	cfgrPLLFields = hal.RCC_CFGR_PLLSRC | hal.RCC_CFGR_PLLXTPRE | hal.RCC_CFGR_PLLMUL_Msk
)

// clockTree models HSI/HSE/PLL readiness, the SYSCLK switch and the flash
// wait-state requirement.
type clockTree struct {
	m *Machine

	hsePresent bool
	hseFreq    uint32
	hseStartup uint64
	pllLock    uint64

	hseOn   bool
	hseOnAt uint64
	pllOn   bool
	pllOnAt uint64

	// sysSrc is the SYSCLK source actually in use (the SWS field)
	sysSrc uint32

	cr, cfgr, acr *register
}

func (c *clockTree) bindRCC(r *register) {
	switch r.addr {
	case hal.RCCBase + hal.RCC_CR:
		c.cr = r
		r.value = hal.RCC_CR_HSION | 0x80 // HSITRIM = 16
		r.read = c.readCR
		r.write = c.writeCR
	case hal.RCCBase + hal.RCC_CFGR:
		c.cfgr = r
		r.read = c.readCFGR
		r.write = c.writeCFGR
	}
}

func (c *clockTree) bindFlash(r *register) {
	if r.addr != hal.FlashBase+hal.FLASH_ACR {
		return
	}
	c.acr = r
	r.value = hal.FLASH_ACR_PRFTBE
	r.read = func(r *register) uint32 {
		// PRFTBS mirrors PRFTBE
		v := r.value &^ hal.FLASH_ACR_PRFTBS
		if v&hal.FLASH_ACR_PRFTBE != 0 {
			v |= hal.FLASH_ACR_PRFTBS
		}
		return v
	}
	r.write = func(r *register, v uint32) {
		r.value = v &^ hal.FLASH_ACR_PRFTBS
		c.checkLatency(r.name)
	}
}

func (c *clockTree) readCR(r *register) uint32 {
	v := r.value &^ crReadyBits
	if v&hal.RCC_CR_HSION != 0 {
		v |= hal.RCC_CR_HSIRDY
	}
	if c.hseReady() {
		v |= hal.RCC_CR_HSERDY
	}
	if c.pllReady() {
		v |= hal.RCC_CR_PLLRDY
	}
	return v
}

func (c *clockTree) writeCR(r *register, v uint32) {
	v &^= crReadyBits

	// The source in use as SYSCLK cannot be switched off
	if c.sysSrc == hal.RCC_CFGR_SW_PLL && v&hal.RCC_CR_PLLON == 0 {
		c.m.fault(r.name, "PLLON cleared while PLL drives SYSCLK")
		v |= hal.RCC_CR_PLLON
	}

	hseOn := v&hal.RCC_CR_HSEON != 0
	if hseOn && !c.hseOn {
		c.hseOnAt = c.m.cycles
	}
	c.hseOn = hseOn

	pllOn := v&hal.RCC_CR_PLLON != 0
	if pllOn && !c.pllOn {
		c.pllOnAt = c.m.cycles
	}
	c.pllOn = pllOn

	r.value = v
}

func (c *clockTree) readCFGR(r *register) uint32 {
	c.update()
	return r.value&^hal.RCC_CFGR_SWS_Msk | c.sysSrc<<hal.RCC_CFGR_SWS_Pos
}

func (c *clockTree) writeCFGR(r *register, v uint32) {
	v &^= hal.RCC_CFGR_SWS_Msk
	if c.pllOn && (v^r.value)&cfgrPLLFields != 0 {
		// PLL source and multiplier are read-only while the PLL is on
		c.m.fault(r.name, "PLL reconfigured while enabled")
		v = v&^cfgrPLLFields | r.value&cfgrPLLFields
	}
	r.value = v
	c.update()
}

// update performs a pending SYSCLK switch once the requested source is ready
func (c *clockTree) update() {
	if c.cfgr == nil {
		return
	}
	req := c.cfgr.value & hal.RCC_CFGR_SW_Msk
	if req == c.sysSrc || !c.sourceReady(req) {
		return
	}
	c.sysSrc = req
	c.checkLatency("RCC_CFGR")
}

func (c *clockTree) sourceReady(src uint32) bool {
	switch src {
	case hal.RCC_CFGR_SW_HSI:
		return c.cr.value&hal.RCC_CR_HSION != 0
	case hal.RCC_CFGR_SW_HSE:
		return c.hseReady()
	case hal.RCC_CFGR_SW_PLL:
		return c.pllReady()
	}
	return false
}

func (c *clockTree) hseReady() bool {
	return c.hseOn && c.hsePresent && c.m.cycles-c.hseOnAt >= c.hseStartup
}

func (c *clockTree) pllReady() bool {
	if !c.pllOn || c.m.cycles-c.pllOnAt < c.pllLock {
		return false
	}
	if c.cfgr.value&hal.RCC_CFGR_PLLSRC != 0 {
		return c.hseReady()
	}
	return true
}

func (c *clockTree) pllFreq() uint32 {
	cfgr := c.cfgr.value

	in := uint32(hsiFreq / 2)
	if cfgr&hal.RCC_CFGR_PLLSRC != 0 {
		in = c.hseFreq
		if cfgr&hal.RCC_CFGR_PLLXTPRE != 0 {
			in /= 2
		}
	}

	mul := (cfgr&hal.RCC_CFGR_PLLMUL_Msk)>>hal.RCC_CFGR_PLLMUL_Pos + 2
	if mul > 16 {
		mul = 16
	}
	return in * mul
}

func (c *clockTree) sysClock() uint32 {
	switch c.sysSrc {
	case hal.RCC_CFGR_SW_HSE:
		return c.hseFreq
	case hal.RCC_CFGR_SW_PLL:
		return c.pllFreq()
	}
	return hsiFreq
}

// apb1Divider decodes PPRE1
func (c *clockTree) apb1Divider() uint32 {
	if c.cfgr == nil {
		return 1
	}
	ppre := (c.cfgr.value & hal.RCC_CFGR_PPRE1_Msk) >> hal.RCC_CFGR_PPRE1_Pos
	if ppre < hal.RCC_CFGR_PPRE_Div2 {
		return 1
	}
	return 1 << (ppre - 3)
}

// timerClock returns the TIM2..TIM5 kernel clock: PCLK1, doubled when the
// APB1 prescaler is not 1.
func (c *clockTree) timerClock() uint32 {
	div := c.apb1Divider()
	pclk1 := c.sysClock() / div
	if div == 1 {
		return pclk1
	}
	return pclk1 * 2
}

// checkLatency faults when SYSCLK runs faster than the flash wait states allow
func (c *clockTree) checkLatency(reg string) {
	if c.acr == nil {
		return
	}
	required := uint32(0)
	switch sys := c.sysClock(); {
	case sys > 48000000:
		required = 2
	case sys > 24000000:
		required = 1
	}
	if c.acr.value&hal.FLASH_ACR_LATENCY_Msk < required {
		c.m.fault(reg, "flash latency too low for SYSCLK")
	}
}
