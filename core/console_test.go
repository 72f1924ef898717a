package core

import (
	"strings"
	"testing"

	"bluepwm/hal"
	"bluepwm/sim"
)

func TestConsoleBootLog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console = true
	cfg.BlinkHoldMs = 1
	m, fw := bootSim(t, cfg)

	want := []string{
		"boot: console baud=115200",
		"boot: clock sysclk=32000000 pllmul=4 latency=1",
		"boot: delay tim=2 psc=31999 arr=65535",
		"boot: gpio pb7=out-pp pb8=out-pp pb6=af-pp speed=2mhz",
		"boot: pwm tim=4 ch=1 psc=31 arr=99 ccr=80 freq=10000 duty=80",
		"boot: run",
	}
	var expected strings.Builder
	for _, line := range want {
		expected.WriteString(line + " crc=" + hex16(CRC16(line)) + "\r\n")
	}
	got := m.Console()
	if got != expected.String() {
		t.Errorf("Unexpected boot log:\n%s", got)
	}
	if !strings.HasSuffix(got, "boot: run crc=e899\r\n") {
		t.Errorf("Unexpected last line in %q", got)
	}

	if brr := m.Peek(hal.USART1Base + hal.USART_BRR); brr != 278 {
		t.Errorf("Expected BRR 278 for 115200 baud at 32 MHz, got %d", brr)
	}
	if pa9 := m.PinConfig(sim.PortA, PinConsoleTX); pa9 != 0xA {
		t.Errorf("Expected PA9 config 0xA, got 0x%x", pa9)
	}

	// The foreground loop stays silent
	if err := fw.BlinkCycle(); err != nil {
		t.Fatalf("BlinkCycle failed: %v", err)
	}
	if m.Console() != got {
		t.Errorf("BlinkCycle wrote to the console: %q", m.Console()[len(got):])
	}
}

func TestConsoleReprogramsDisabled(t *testing.T) {
	m := sim.New(sim.WithAccessLog())
	dev := m.Device()

	// USART1 as left running by the runtime at 72 MHz
	dev.RCC.APB2ENR.SetBits(hal.RCC_APB2ENR_USART1EN)
	dev.USART1.BRR.Set(625)
	dev.USART1.CR1.Set(hal.USART_CR1_UE | hal.USART_CR1_TE)

	cfg := DefaultConfig()
	cfg.Console = true
	fw, err := New(dev, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := fw.Boot(); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	enabled := false
	brrWrites := 0
	for _, a := range m.Accesses() {
		if !a.Write {
			continue
		}
		switch a.Reg {
		case "USART1_CR1":
			enabled = a.Value&hal.USART_CR1_UE != 0
		case "USART1_BRR":
			brrWrites++
			if brrWrites > 1 && enabled {
				t.Errorf("BRR set to %d with UE on", a.Value)
			}
		}
	}
	if brrWrites != 2 {
		t.Errorf("Expected 2 BRR writes, got %d", brrWrites)
	}
	if brr := m.Peek(hal.USART1Base + hal.USART_BRR); brr != 278 {
		t.Errorf("Expected BRR 278, got %d", brr)
	}
	if !strings.HasSuffix(m.Console(), "boot: run crc=e899\r\n") {
		t.Errorf("Unexpected console output %q", m.Console())
	}
}

func TestDebugWriter(t *testing.T) {
	m := sim.New()
	fw, err := New(m.Device(), DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var lines []string
	fw.SetDebugWriter(func(msg string) { lines = append(lines, msg) })
	if err := fw.Boot(); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	if len(lines) != 5 {
		t.Fatalf("Expected 5 log lines without the console, got %d: %q", len(lines), lines)
	}
	if lines[0] != "boot: clock sysclk=32000000 pllmul=4 latency=1" {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if m.Console() != "" {
		t.Errorf("USART1 used with the console disabled: %q", m.Console())
	}

	// nil discards
	fw.SetDebugWriter(nil)
	fw.log("dropped")
}
