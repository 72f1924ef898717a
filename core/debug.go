package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// SetDebugWriter redirects the boot log. A nil writer discards it.
// InitConsole replaces the writer with the USART1 console.
func (f *Firmware) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = func(string) {}
	}
	f.debug = w
}

// log writes one boot log line. Never called from the foreground loop:
// console output there would stretch the blink timing.
func (f *Firmware) log(msg string) {
	f.debug(msg)
}
