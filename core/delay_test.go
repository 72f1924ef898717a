package core

import (
	"errors"
	"testing"
	"time"

	"bluepwm/sim"
)

// delayOverhead bounds the register accesses around one wait
const delayOverhead = 20 * time.Microsecond

func TestDelayMs(t *testing.T) {
	m, fw := bootSim(t, DefaultConfig())

	for _, ms := range []uint32{0, 1, 10, 250} {
		start := m.Now()
		if err := fw.DelayMs(ms); err != nil {
			t.Fatalf("DelayMs(%d) failed: %v", ms, err)
		}
		elapsed := m.Now() - start
		want := time.Duration(ms) * time.Millisecond

		if elapsed < want || elapsed > want+delayOverhead {
			t.Errorf("DelayMs(%d) took %v, expected %v", ms, elapsed, want)
		}
	}
}

func TestDelayCountsFromZero(t *testing.T) {
	m, fw := bootSim(t, DefaultConfig())

	if err := fw.DelayMs(5); err != nil {
		t.Fatalf("DelayMs failed: %v", err)
	}
	// Time spent elsewhere must not shorten the next wait
	m.Advance(3 * 32000)

	start := m.Now()
	if err := fw.DelayMs(5); err != nil {
		t.Fatalf("DelayMs failed: %v", err)
	}
	if elapsed := m.Now() - start; elapsed < 5*time.Millisecond {
		t.Errorf("Second DelayMs(5) took %v", elapsed)
	}

	if got := m.TIM2(); got.Enabled {
		t.Errorf("TIM2 left running between waits: %+v", got)
	}
	if got := m.TIM2().Prescaler; got != 31999 {
		t.Errorf("Expected TIM2 prescaler 31999, got %d", got)
	}
}

func TestDelayBackToBack(t *testing.T) {
	m, fw := bootSim(t, DefaultConfig())

	start := m.Now()
	for i := 0; i < 2; i++ {
		if err := fw.DelayMs(500); err != nil {
			t.Fatalf("DelayMs(500) failed: %v", err)
		}
	}
	elapsed := m.Now() - start

	if elapsed < time.Second || elapsed > time.Second+2*delayOverhead {
		t.Errorf("Two DelayMs(500) took %v, expected 1s", elapsed)
	}
}

func TestDelayLongerThanCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("simulates more than a minute")
	}

	// Coarser register accesses keep the poll loop short; one access is
	// still well under one 1 ms tick.
	m, fw := bootSim(t, DefaultConfig(), sim.WithAccessCost(4000))

	const ms = MaxDelayTicks + 11
	start := m.Now()
	if err := fw.DelayMs(ms); err != nil {
		t.Fatalf("DelayMs failed: %v", err)
	}
	elapsed := m.Now() - start
	want := time.Duration(ms) * time.Millisecond

	if elapsed < want || elapsed > want+5*time.Millisecond {
		t.Errorf("DelayMs(%d) took %v, expected %v", ms, elapsed, want)
	}
}

func TestDelayStallsWithBudget(t *testing.T) {
	_, fw := bootSim(t, DefaultConfig())
	fw.SetSpinBudget(100)

	if err := fw.DelayMs(10); !errors.Is(err, ErrStalled) {
		t.Errorf("Expected ErrStalled, got %v", err)
	}

	fw.SetSpinBudget(SpinForever)
	if err := fw.DelayMs(1); err != nil {
		t.Errorf("DelayMs after a stall failed: %v", err)
	}
}
