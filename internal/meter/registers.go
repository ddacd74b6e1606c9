// internal/meter/registers.go
package meter

import "fmt"

// Word order of a 32-bit register pair.
type wordOrder int

const (
	// orderSwapped: the pair's second word carries the lower 16 bits,
	// i.e. value = (word[1] << 16) | word[0]. This is the BOVE device
	// convention for measurement registers, not an error.
	orderSwapped wordOrder = iota

	// orderStraight: plain big-endian across both words. The meter uses
	// this only for the packed-decimal serial number.
	orderStraight
)

// regField maps one payload field of the device profile: byte offset
// within the post-header payload, width in bytes, word order for pairs,
// and the assignment into the typed Reading.
type regField struct {
	name   string
	offset int
	width  int
	order  wordOrder
	set    func(r *Reading, v uint32)
}

// registerMap is the single source of truth for the BOVE payload layout.
// Offsets are fixed constants of the device profile; both decode and the
// payload-length floor derive from this table.
var registerMap = []regField{
	{name: "flowRate", offset: 0, width: 4, order: orderSwapped,
		set: func(r *Reading, v uint32) { r.FlowRate = v }},
	{name: "forwardTotal", offset: 12, width: 4, order: orderSwapped,
		set: func(r *Reading, v uint32) { r.ForwardTotal = v }},
	{name: "reverseTotal", offset: 18, width: 4, order: orderSwapped,
		set: func(r *Reading, v uint32) { r.ReverseTotal = v }},
	{name: "pressure", offset: 36, width: 2,
		set: func(r *Reading, v uint32) { r.Pressure = uint16(v) }},
	{name: "status", offset: 38, width: 2,
		set: func(r *Reading, v uint32) { r.Status = uint16(v) }},
	{name: "temperature", offset: 58, width: 2,
		set: func(r *Reading, v uint32) { r.Temperature = uint16(v) }},
	{name: "serialNumber", offset: 64, width: 4, order: orderStraight,
		set: func(r *Reading, v uint32) { r.SerialNumber = v }},
	{name: "modbusId", offset: 69, width: 1,
		set: func(r *Reading, v uint32) { r.ModbusID = uint8(v) }},
	{name: "baudCode", offset: 72, width: 2,
		set: func(r *Reading, v uint32) { r.BaudCode = uint16(v) }},
}

// payloadFloor is the minimum payload length the register map can be
// applied to, derived from the table rather than restated as a literal.
var payloadFloor = func() int {
	max := 0
	for _, f := range registerMap {
		if end := f.offset + f.width; end > max {
			max = end
		}
	}
	return max
}()

// DecodeReading interprets an already-validated payload into a Reading.
//
// There is no failure path for validated input: a payload shorter than
// the register map covers means the validation threshold and the map
// disagree, which is a programming defect, not a runtime condition.
func DecodeReading(payload []byte) *Reading {
	if len(payload) < payloadFloor {
		panic(fmt.Sprintf("meter: validated payload %d bytes, register map needs %d", len(payload), payloadFloor))
	}

	var r Reading
	for _, f := range registerMap {
		f.set(&r, extract(payload, f))
	}
	return &r
}

func extract(payload []byte, f regField) uint32 {
	switch f.width {
	case 1:
		return uint32(payload[f.offset])
	case 2:
		return u16At(payload, f.offset)
	case 4:
		first := u16At(payload, f.offset)
		second := u16At(payload, f.offset+2)
		if f.order == orderSwapped {
			return second<<16 | first
		}
		return first<<16 | second
	default:
		panic(fmt.Sprintf("meter: register %s has unsupported width %d", f.name, f.width))
	}
}

func u16At(payload []byte, off int) uint32 {
	return uint32(payload[off])<<8 | uint32(payload[off+1])
}
