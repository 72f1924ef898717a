package core

// CRC16 is the CRC-16/MCRF4XX checksum (reflected CCITT polynomial, initial
// value 0xFFFF) appended to every console line so the host can drop lines
// garbled on the wire.
func CRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		b := data[i] ^ uint8(crc&0xFF)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

const hexDigits = "0123456789abcdef"

// hex16 formats v as four lowercase hex digits
func hex16(v uint16) string {
	return string([]byte{
		hexDigits[v>>12&0xF],
		hexDigits[v>>8&0xF],
		hexDigits[v>>4&0xF],
		hexDigits[v&0xF],
	})
}
