//go:build tinygo

package core

import "runtime/interrupt"

// maskInterrupts masks every maskable interrupt and returns the previous
// state. The runtime's tick handler must not run while SYSCLK is switched.
func maskInterrupts() interrupt.State {
	return interrupt.Disable()
}

// unmaskInterrupts restores the state returned by maskInterrupts
func unmaskInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
