package hal

// Register is a 32-bit memory-mapped hardware register.
// On TinyGo it is satisfied by *volatile.Register32; on the host by Word or
// by the simulator's registers.
type Register interface {
	// Get reads the register
	Get() uint32

	// Set writes the register
	Set(value uint32)

	// SetBits performs a read-modify-write that sets the given bits
	SetBits(value uint32)

	// ClearBits performs a read-modify-write that clears the given bits
	ClearBits(value uint32)

	// HasBits reports whether any of the given bits is set
	HasBits(value uint32) bool

	// ReplaceBits replaces the field mask<<pos with value<<pos
	ReplaceBits(value uint32, mask uint32, pos uint8)
}

// Word is a plain in-memory register with no hardware side effects.
type Word struct {
	Value uint32
}

// Get returns the stored value
func (w *Word) Get() uint32 {
	return w.Value
}

// Set stores value
func (w *Word) Set(value uint32) {
	w.Value = value
}

// SetBits sets the given bits
func (w *Word) SetBits(value uint32) {
	w.Set(w.Get() | value)
}

// ClearBits clears the given bits
func (w *Word) ClearBits(value uint32) {
	w.Set(w.Get() &^ value)
}

// HasBits reports whether any of value's bits is set
func (w *Word) HasBits(value uint32) bool {
	return w.Get()&value > 0
}

// ReplaceBits replaces the field mask<<pos with value<<pos
func (w *Word) ReplaceBits(value uint32, mask uint32, pos uint8) {
	w.Set(w.Get()&^(mask<<pos) | value<<pos)
}
