package sim

import (
	"strings"
	"testing"

	"bluepwm/hal"
)

func TestResetState(t *testing.T) {
	m := New()

	if got := m.SysClock(); got != hsiFreq {
		t.Errorf("SysClock = %d, want %d", got, hsiFreq)
	}
	if got := m.Peek(hal.RCCBase + hal.RCC_CR); got != 0x83 {
		t.Errorf("RCC_CR = 0x%x, want 0x83", got)
	}
	if got := m.Peek(hal.FlashBase + hal.FLASH_ACR); got != 0x30 {
		t.Errorf("FLASH_ACR = 0x%x, want 0x30", got)
	}
	for _, addr := range []uintptr{
		hal.GPIOABase + hal.GPIO_CRL, hal.GPIOABase + hal.GPIO_CRH,
		hal.GPIOBBase + hal.GPIO_CRL, hal.GPIOBBase + hal.GPIO_CRH,
	} {
		if got := m.Peek(addr); got != hal.GPIO_CR_ResetValue {
			t.Errorf("GPIO config 0x%x = 0x%x, want 0x%x", addr, got, hal.GPIO_CR_ResetValue)
		}
	}
	if got := m.Peek(hal.TIM2Base + hal.TIM_ARR); got != 0xFFFF {
		t.Errorf("TIM2_ARR = 0x%x, want 0xffff", got)
	}
	if len(m.Faults()) != 0 {
		t.Errorf("unexpected faults: %v", m.Faults())
	}
}

func TestAccessCostAdvancesTime(t *testing.T) {
	m := New(WithAccessCost(10))
	d := m.Device()

	d.RCC.CR.Get()
	d.RCC.CR.SetBits(hal.RCC_CR_HSEON) // read + write

	if got := m.Cycles(); got != 30 {
		t.Errorf("Cycles = %d, want 30", got)
	}
}

func TestHSEStartup(t *testing.T) {
	m := New(WithAccessCost(0))
	d := m.Device()

	d.RCC.CR.SetBits(hal.RCC_CR_HSEON)
	if d.RCC.CR.HasBits(hal.RCC_CR_HSERDY) {
		t.Fatal("HSERDY set immediately after HSEON")
	}

	m.Advance(DefaultHSEStartup)
	if !d.RCC.CR.HasBits(hal.RCC_CR_HSERDY) {
		t.Fatal("HSERDY not set after the startup time")
	}
}

func TestMissingCrystal(t *testing.T) {
	m := New(WithoutHSE())
	d := m.Device()

	d.RCC.CR.SetBits(hal.RCC_CR_HSEON)
	m.Advance(10 * DefaultHSEStartup)
	if d.RCC.CR.HasBits(hal.RCC_CR_HSERDY) {
		t.Fatal("HSERDY set without a crystal")
	}
}

// switchToPLL runs a minimal clock bring-up to HSE x mul
func switchToPLL(m *Machine, mul, latency uint32) {
	d := m.Device()

	d.RCC.CR.SetBits(hal.RCC_CR_HSEON)
	m.Advance(DefaultHSEStartup)
	d.FLASH.ACR.ReplaceBits(latency, 0x7, hal.FLASH_ACR_LATENCY_Pos)
	d.RCC.CFGR.SetBits(hal.RCC_CFGR_PLLSRC)
	d.RCC.CFGR.ReplaceBits(mul-2, 0xF, hal.RCC_CFGR_PLLMUL_Pos)
	d.RCC.CR.SetBits(hal.RCC_CR_PLLON)
	m.Advance(DefaultPLLLock)
	d.RCC.CFGR.ReplaceBits(hal.RCC_CFGR_SW_PLL, 0x3, hal.RCC_CFGR_SW_Pos)
}

func TestClockSwitch(t *testing.T) {
	m := New(WithAccessCost(0))
	switchToPLL(m, 4, 1)

	sws := (m.Device().RCC.CFGR.Get() & hal.RCC_CFGR_SWS_Msk) >> hal.RCC_CFGR_SWS_Pos
	if sws != hal.RCC_CFGR_SWS_PLL {
		t.Errorf("SWS = %d, want PLL", sws)
	}
	if got := m.SysClock(); got != 32000000 {
		t.Errorf("SysClock = %d, want 32000000", got)
	}
	if len(m.Faults()) != 0 {
		t.Errorf("unexpected faults: %v", m.Faults())
	}
}

func TestClockSwitchWithoutWaitStates(t *testing.T) {
	m := New(WithAccessCost(0))
	switchToPLL(m, 4, 0)

	faults := m.Faults()
	if len(faults) == 0 {
		t.Fatal("expected a flash latency fault")
	}
	if !strings.Contains(faults[0].Reason, "latency") {
		t.Errorf("fault = %v, want flash latency", faults[0])
	}
}

func TestPLLReconfigureWhileEnabled(t *testing.T) {
	m := New(WithAccessCost(0))
	switchToPLL(m, 4, 1)
	d := m.Device()

	d.RCC.CFGR.ReplaceBits(7, 0xF, hal.RCC_CFGR_PLLMUL_Pos)

	if len(m.Faults()) != 1 {
		t.Fatalf("faults = %v, want one", m.Faults())
	}
	if got := m.SysClock(); got != 32000000 {
		t.Errorf("SysClock = %d, PLL fields must stay read-only while enabled", got)
	}
}

func TestPLLOffWhileSysclk(t *testing.T) {
	m := New(WithAccessCost(0))
	switchToPLL(m, 4, 1)

	m.Device().RCC.CR.ClearBits(hal.RCC_CR_PLLON)

	if len(m.Faults()) != 1 {
		t.Fatalf("faults = %v, want one", m.Faults())
	}
	if !m.Device().RCC.CR.HasBits(hal.RCC_CR_PLLON) {
		t.Error("PLLON cleared while the PLL drives SYSCLK")
	}
}

func TestGatedWrite(t *testing.T) {
	m := New()
	d := m.Device()

	d.TIM2.PSC.Set(99)
	if len(m.Faults()) != 1 {
		t.Fatalf("faults = %v, want one", m.Faults())
	}
	if got := m.Peek(hal.TIM2Base + hal.TIM_PSC); got != 0 {
		t.Errorf("TIM2_PSC = %d, write should be dropped", got)
	}

	d.RCC.APB1ENR.SetBits(hal.RCC_APB1ENR_TIM2EN)
	d.TIM2.PSC.Set(99)
	if got := m.Peek(hal.TIM2Base + hal.TIM_PSC); got != 99 {
		t.Errorf("TIM2_PSC = %d, want 99", got)
	}
	if len(m.Faults()) != 1 {
		t.Errorf("faults = %v, want still one", m.Faults())
	}
}

func TestAccessLog(t *testing.T) {
	m := New(WithAccessLog())
	d := m.Device()

	d.RCC.APB2ENR.SetBits(hal.RCC_APB2ENR_IOPBEN)

	log := m.Accesses()
	if len(log) != 2 {
		t.Fatalf("logged %d accesses, want 2", len(log))
	}
	if log[0].Reg != "RCC_APB2ENR" || log[0].Write {
		t.Errorf("first access = %+v, want RCC_APB2ENR read", log[0])
	}
	if !log[1].Write || log[1].Value != hal.RCC_APB2ENR_IOPBEN {
		t.Errorf("second access = %+v, want IOPBEN write", log[1])
	}
}

func TestNowFollowsSysClock(t *testing.T) {
	m := New(WithAccessCost(0))

	m.Advance(8000) // 1 ms at HSI
	if got := m.Now().Microseconds(); got != 1000 {
		t.Errorf("Now = %dus after 8000 HSI cycles, want 1000", got)
	}

	switchToPLL(m, 4, 1)
	before := m.Now()
	m.Advance(32000)
	if got := (m.Now() - before).Microseconds(); got != 1000 {
		t.Errorf("elapsed = %dus after 32000 cycles at 32 MHz, want 1000", got)
	}
}
