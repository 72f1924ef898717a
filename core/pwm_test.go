package core

import (
	"testing"
	"time"

	"bluepwm/sim"
)

// pwmTick is one TIM4 count at 32 MHz with PSC 31
const pwmTick = 32

func TestPWMRegisters(t *testing.T) {
	m, _ := bootSim(t, DefaultConfig())

	got := m.TIM4()
	if !got.Enabled {
		t.Fatal("TIM4 not running")
	}
	if got.Prescaler != 31 || got.Reload != 99 || got.Compare1 != 80 {
		t.Errorf("Expected PSC=31 ARR=99 CCR1=80, got PSC=%d ARR=%d CCR1=%d",
			got.Prescaler, got.Reload, got.Compare1)
	}
}

func TestPWMWaveform(t *testing.T) {
	m, _ := bootSim(t, DefaultConfig())

	pwm := m.MeasurePWM(sim.PortB, PinPWM, pwmTick, 100*50)
	if pwm.Periods < 45 {
		t.Fatalf("Expected ~49 periods, got %d", pwm.Periods)
	}
	if pwm.Period != 100*time.Microsecond {
		t.Errorf("Expected period 100us, got %v", pwm.Period)
	}
	if pwm.Duty != 0.8 {
		t.Errorf("Expected duty 0.8, got %.3f", pwm.Duty)
	}
	t.Logf("PB6: %.0f Hz, %.0f%% duty", pwm.Frequency(), pwm.Duty*100)

	// Every complete period is 80 ticks high then 20 low
	runs := sim.Runs(m.Sample(sim.PortB, PinPWM, pwmTick, 100*10))
	for _, r := range runs[1 : len(runs)-1] {
		want := 20
		if r.Level {
			want = 80
		}
		if r.Length != want {
			t.Errorf("Run of %v lasted %d ticks, expected %d", r.Level, r.Length, want)
		}
	}
}

func TestPWMRunsDuringBlink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlinkHoldMs = 2
	m, fw := bootSim(t, cfg)

	if err := fw.BlinkCycle(); err != nil {
		t.Fatalf("BlinkCycle failed: %v", err)
	}

	pwm := m.MeasurePWM(sim.PortB, PinPWM, pwmTick, 100*20)
	if pwm.Period != 100*time.Microsecond || pwm.Duty != 0.8 {
		t.Errorf("PWM changed after blinking: %+v", pwm)
	}
	if faults := m.Faults(); len(faults) != 0 {
		t.Errorf("Unexpected faults: %v", faults)
	}
}

func TestPWMDutyConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PWMPeriod = 50
	cfg.PWMDuty = 10 // 20 kHz at 20%
	m, _ := bootSim(t, cfg)

	pwm := m.MeasurePWM(sim.PortB, PinPWM, pwmTick, 50*40)
	if pwm.Period != 50*time.Microsecond {
		t.Errorf("Expected period 50us, got %v", pwm.Period)
	}
	if pwm.Duty != 0.2 {
		t.Errorf("Expected duty 0.2, got %.3f", pwm.Duty)
	}
}
