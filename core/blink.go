package core

// BlinkCycle runs one iteration of the foreground loop:
// A on, hold, A off, B on, hold, B off, hold.
// A is always released before B is asserted.
func (f *Firmware) BlinkCycle() error {
	hold := f.cfg.BlinkHoldMs

	f.SetLED(LEDA, true)
	if err := f.DelayMs(hold); err != nil {
		return err
	}
	f.SetLED(LEDA, false)

	f.SetLED(LEDB, true)
	if err := f.DelayMs(hold); err != nil {
		return err
	}
	f.SetLED(LEDB, false)

	return f.DelayMs(hold)
}
