// Package monitor reads the firmware's boot log from the console UART and
// checks it against the configuration the board was built with.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bluepwm/core"
)

const (
	// linePrefix starts every boot log line
	linePrefix = "boot: "

	// crcSuffix precedes the checksum the console appends to each line
	crcSuffix = " crc="
)

// ErrChecksum is returned for a console line whose checksum does not match
var ErrChecksum = errors.New("boot log line checksum mismatch")

// Boot stage names as logged by the firmware
const (
	StageConsole = "console"
	StageClock   = "clock"
	StageDelay   = "delay"
	StageGPIO    = "gpio"
	StagePWM     = "pwm"
	StageRun     = "run"
)

// Event is one parsed boot log line: "boot: <stage> key=value ..."
type Event struct {
	Stage  string
	Fields map[string]string
	Raw    string // line without checksum

	// Checked is set when the line carried a matching checksum
	Checked bool
}

// ParseLine parses a boot log line. Trailing CR/LF is ignored. Lines from
// the console end in " crc=<hex16>", which is verified and stripped; lines
// from other log sinks carry no checksum.
func ParseLine(line string) (Event, error) {
	raw := strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(raw, linePrefix) {
		return Event{}, fmt.Errorf("not a boot log line: %q", raw)
	}

	checked := false
	if i := strings.LastIndex(raw, crcSuffix); i >= 0 {
		sum, err := strconv.ParseUint(raw[i+len(crcSuffix):], 16, 16)
		if err != nil || uint16(sum) != core.CRC16(raw[:i]) {
			return Event{}, fmt.Errorf("%w: %q", ErrChecksum, raw)
		}
		raw = raw[:i]
		checked = true
	}

	parts := strings.Fields(raw[len(linePrefix):])
	if len(parts) == 0 {
		return Event{}, fmt.Errorf("missing stage: %q", raw)
	}

	ev := Event{
		Stage:   parts[0],
		Fields:  make(map[string]string, len(parts)-1),
		Raw:     raw,
		Checked: checked,
	}
	for _, kv := range parts[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return Event{}, fmt.Errorf("malformed field %q in %q", kv, raw)
		}
		ev.Fields[key] = value
	}
	return ev, nil
}

// Uint returns a numeric field
func (e Event) Uint(key string) (uint32, error) {
	v, ok := e.Fields[key]
	if !ok {
		return 0, fmt.Errorf("%s: missing %s", e.Stage, key)
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %s=%q is not a number", e.Stage, key, v)
	}
	return uint32(n), nil
}

func (e Event) String() string {
	return e.Raw
}
