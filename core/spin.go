package core

// SpinForever disables the poll budget: loops spin until the hardware
// condition holds, hanging the boot if it never does.
const SpinForever = 0

// spinUntil busy-waits until cond returns true. With a budget it gives up
// after that many unsuccessful polls and returns ErrStalled.
func (f *Firmware) spinUntil(cond func() bool) error {
	if f.spinBudget == SpinForever {
		for !cond() {
		}
		return nil
	}

	for i := uint32(0); i < f.spinBudget; i++ {
		if cond() {
			return nil
		}
	}
	return ErrStalled
}
