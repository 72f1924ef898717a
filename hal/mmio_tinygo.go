//go:build tinygo

package hal

import (
	"runtime/volatile"
	"unsafe"
)

// MapDevice binds every register to its fixed physical address.
func MapDevice() *Device {
	return NewDevice(func(addr uintptr, name string) Register {
		return (*volatile.Register32)(unsafe.Pointer(addr))
	})
}
