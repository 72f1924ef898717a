//go:build !tinygo

package core

// irqState stands in for interrupt.State on regular Go
type irqState int

// maskDepth counts nested maskInterrupts calls so tests can check that
// every path out of a clock switch unmasks again
var maskDepth int

func maskInterrupts() irqState {
	maskDepth++
	return irqState(maskDepth - 1)
}

func unmaskInterrupts(state irqState) {
	maskDepth = int(state)
}
