package hal

import "testing"

func TestWordBitHelpers(t *testing.T) {
	var w Word

	w.SetBits(1 << 4)
	w.SetBits(1)
	if w.Get() != 0x11 {
		t.Errorf("Expected 0x11 after SetBits, got 0x%x", w.Get())
	}

	if !w.HasBits(1 << 4) {
		t.Error("Expected bit 4 to be set")
	}
	if w.HasBits(1 << 5) {
		t.Error("Expected bit 5 to be clear")
	}

	w.ClearBits(1)
	if w.Get() != 0x10 {
		t.Errorf("Expected 0x10 after ClearBits, got 0x%x", w.Get())
	}

	w.Set(0xFFFFFFFF)
	w.ReplaceBits(0x2, 0xF, 24)
	if w.Get() != 0xF2FFFFFF {
		t.Errorf("Expected 0xF2FFFFFF after ReplaceBits, got 0x%x", w.Get())
	}
}

func TestNewDeviceAddresses(t *testing.T) {
	seen := make(map[uintptr]string)
	NewDevice(func(addr uintptr, name string) Register {
		if prev, dup := seen[addr]; dup {
			t.Errorf("Address 0x%08x bound twice (%s, %s)", addr, prev, name)
		}
		seen[addr] = name
		return &Word{}
	})

	expected := map[string]uintptr{
		"RCC_CR":      0x40021000,
		"RCC_CFGR":    0x40021004,
		"RCC_APB2ENR": 0x40021018,
		"RCC_APB1ENR": 0x4002101C,
		"FLASH_ACR":   0x40022000,
		"GPIOA_CRL":   0x40010800,
		"GPIOA_BSRR":  0x40010810,
		"GPIOB_CRL":   0x40010C00,
		"GPIOB_CRH":   0x40010C04,
		"GPIOB_BSRR":  0x40010C10,
		"TIM2_CR1":    0x40000000,
		"TIM2_EGR":    0x40000014,
		"TIM2_CNT":    0x40000024,
		"TIM2_PSC":    0x40000028,
		"TIM2_ARR":    0x4000002C,
		"TIM4_CCMR1":  0x40000818,
		"TIM4_CCER":   0x40000820,
		"TIM4_CCR1":   0x40000834,
		"USART1_BRR":  0x40013808,
		"AFIO_MAPR":   0x40010004,
		"EXTI_IMR":    0x40010400,
		"NVIC_ISER0":  0xE000E100,
		"NVIC_IPR14":  0xE000E438,
	}

	byName := make(map[string]uintptr)
	for addr, name := range seen {
		byName[name] = addr
	}
	for name, addr := range expected {
		got, ok := byName[name]
		if !ok {
			t.Errorf("Register %s not bound", name)
			continue
		}
		if got != addr {
			t.Errorf("Register %s: expected 0x%08x, got 0x%08x", name, addr, got)
		}
	}
}

func TestGPIOConfigReg(t *testing.T) {
	dev := MapDevice()

	tests := []struct {
		pin   uint8
		reg   Register
		shift uint8
	}{
		{0, dev.GPIOB.CRL, 0},
		{6, dev.GPIOB.CRL, 24},
		{7, dev.GPIOB.CRL, 28},
		{8, dev.GPIOB.CRH, 0},
		{15, dev.GPIOB.CRH, 28},
	}

	for _, tc := range tests {
		reg, shift := dev.GPIOB.ConfigReg(tc.pin)
		if reg != tc.reg {
			t.Errorf("Pin %d: wrong configuration register", tc.pin)
		}
		if shift != tc.shift {
			t.Errorf("Pin %d: expected shift %d, got %d", tc.pin, tc.shift, shift)
		}
	}
}

func TestMapDeviceResetValues(t *testing.T) {
	dev := MapDevice()

	if !dev.RCC.CR.HasBits(RCC_CR_HSIRDY) {
		t.Error("Expected HSI ready at reset")
	}
	if dev.GPIOB.CRL.Get() != GPIO_CR_ResetValue {
		t.Errorf("Expected GPIOB_CRL reset value 0x%08x, got 0x%08x", uint32(GPIO_CR_ResetValue), dev.GPIOB.CRL.Get())
	}
	if dev.TIM2.CNT.Get() != 0 {
		t.Errorf("Expected TIM2_CNT reset value 0, got %d", dev.TIM2.CNT.Get())
	}
}
