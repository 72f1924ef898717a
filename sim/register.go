package sim

// register is one simulated memory-mapped register. Every Get or Set costs
// the machine's access cost in core cycles before it takes effect, so a
// polling loop advances simulated time the way it would on silicon.
type register struct {
	m     *Machine
	addr  uintptr
	name  string
	value uint32

	// gate returns false while the owning peripheral's bus clock is off
	gate func() bool

	// read and write override plain storage for registers with side effects
	read  func(r *register) uint32
	write func(r *register, v uint32)
}

// Get reads the register
func (r *register) Get() uint32 {
	r.m.Advance(r.m.accessCost)
	v := r.peek()
	r.m.record(r, false, v)
	return v
}

// Set writes the register
func (r *register) Set(v uint32) {
	r.m.Advance(r.m.accessCost)
	r.m.record(r, true, v)
	if r.gate != nil && !r.gate() {
		r.m.fault(r.name, "write while peripheral clock is disabled")
		return
	}
	if r.write != nil {
		r.write(r, v)
	} else {
		r.value = v
	}
	r.m.afterWrite(r)
}

// SetBits is a read-modify-write setting the given bits
func (r *register) SetBits(v uint32) {
	r.Set(r.Get() | v)
}

// ClearBits is a read-modify-write clearing the given bits
func (r *register) ClearBits(v uint32) {
	r.Set(r.Get() &^ v)
}

// HasBits reports whether any of the given bits is set
func (r *register) HasBits(v uint32) bool {
	return r.Get()&v > 0
}

// ReplaceBits is a read-modify-write of the field mask<<pos
func (r *register) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | value<<pos)
}

// peek returns the value a read would return, without advancing time
func (r *register) peek() uint32 {
	if r.read != nil {
		return r.read(r)
	}
	return r.value
}
