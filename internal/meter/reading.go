// internal/meter/reading.go
package meter

// Status word bits reported by the meter.
const (
	StatusEmptyPipe  = 0x0004 // bit 2
	StatusLowBattery = 0x0020 // bit 5
)

// Reading is one decoded, validated meter snapshot. All quantities are
// scaled integers as transmitted by the device; no unscaling happens
// anywhere in this gateway. A Reading is immutable after decode and
// superseded wholesale by the next successful poll.
type Reading struct {
	FlowRate     uint32 // L/h × 100
	ForwardTotal uint32 // m³ × 1000
	ReverseTotal uint32 // m³ × 1000
	Pressure     uint16 // MPa × 1000
	Temperature  uint16 // °C × 100
	Status       uint16
	SerialNumber uint32 // packed decimal digits; opaque identifier
	ModbusID     uint8
	BaudCode     uint16
}

// EmptyPipe reports the empty-pipe status bit.
func (r *Reading) EmptyPipe() bool { return r.Status&StatusEmptyPipe != 0 }

// LowBattery reports the low-battery status bit.
func (r *Reading) LowBattery() bool { return r.Status&StatusLowBattery != 0 }

// StatusLabel renders the status word the way the field display does.
// Empty-pipe wins over low-battery; unknown bits render as blank.
func (r *Reading) StatusLabel() string {
	switch {
	case r.Status == 0:
		return "Normal"
	case r.EmptyPipe():
		return "Empty!"
	case r.LowBattery():
		return "Low Battery!"
	default:
		return ""
	}
}

// BaudRateString resolves the meter's configured-baud enumeration code.
func (r *Reading) BaudRateString() string {
	switch r.BaudCode {
	case 0:
		return "9600"
	case 1:
		return "2400"
	case 2:
		return "4800"
	case 3:
		return "1200"
	default:
		return "unknown"
	}
}

// SplitScaled breaks a scaled integer into whole and fractional parts
// for display, e.g. forward total 1234567 at scale 1000 → (1234, 567).
func SplitScaled(raw, scale uint32) (whole, frac uint32) {
	return raw / scale, raw % scale
}
