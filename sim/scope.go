package sim

import "time"

// Sample advances the machine n times by step core cycles and returns the
// pin level seen after each step.
func (m *Machine) Sample(id Port, pin uint8, step uint64, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		m.Advance(step)
		out[i] = m.PinLevel(id, pin)
	}
	return out
}

// Run is a stretch of consecutive samples at one level
type Run struct {
	Level  bool
	Length int
}

// Runs collapses samples into runs of equal level
func Runs(samples []bool) []Run {
	var runs []Run
	for _, s := range samples {
		if n := len(runs); n > 0 && runs[n-1].Level == s {
			runs[n-1].Length++
			continue
		}
		runs = append(runs, Run{Level: s, Length: 1})
	}
	return runs
}

// PWM is the result of measuring a periodic output
type PWM struct {
	Periods int           // complete rising-to-rising periods seen
	Period  time.Duration // mean period
	Duty    float64       // high fraction over the complete periods, 0..1
}

// Frequency returns the measured frequency in Hz
func (p PWM) Frequency() float64 {
	if p.Period <= 0 {
		return 0
	}
	return float64(time.Second) / float64(p.Period)
}

// MeasurePWM samples a pin every step core cycles for n samples and
// measures period and duty between the first and last rising edge.
func (m *Machine) MeasurePWM(id Port, pin uint8, step uint64, n int) PWM {
	prev := m.PinLevel(id, pin)
	var first, last time.Duration
	var periods, high, total int
	var highSince, cur int
	seenRising := false

	for i := 0; i < n; i++ {
		m.Advance(step)
		level := m.PinLevel(id, pin)

		if level && !prev {
			now := m.Now()
			if seenRising {
				periods++
				last = now
				high += highSince
				total += cur
			} else {
				first = now
				seenRising = true
			}
			highSince, cur = 0, 0
		}
		if seenRising {
			cur++
			if level {
				highSince++
			}
		}
		prev = level
	}

	if periods == 0 {
		return PWM{}
	}
	return PWM{
		Periods: periods,
		Period:  (last - first) / time.Duration(periods),
		Duty:    float64(high) / float64(total),
	}
}
