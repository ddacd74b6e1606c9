// internal/meter/testdata_test.go
package meter

// meterSim builds device-faithful response frames for tests: correct
// CRC trailer, word-swapped measurement pairs, straight big-endian
// serial number.
type meterSim struct {
	flow     uint32
	forward  uint32
	reverse  uint32
	pressure uint16
	status   uint16
	temp     uint16
	serial   uint32
	modbusID uint8
	baudCode uint16
}

func (m meterSim) payload() []byte {
	p := make([]byte, 2*registerCount)

	put16 := func(off int, v uint16) {
		p[off] = byte(v >> 8)
		p[off+1] = byte(v)
	}
	putSwapped := func(off int, v uint32) {
		put16(off, uint16(v))       // low word first
		put16(off+2, uint16(v>>16)) // high word second
	}

	putSwapped(0, m.flow)
	putSwapped(12, m.forward)
	putSwapped(18, m.reverse)
	put16(36, m.pressure)
	put16(38, m.status)
	put16(58, m.temp)
	put16(64, uint16(m.serial>>16)) // straight big-endian pair
	put16(66, uint16(m.serial))
	p[69] = m.modbusID
	put16(72, m.baudCode)

	return p
}

// response assembles a complete frame for addr, CRC included.
func (m meterSim) response(addr uint8) []byte {
	p := m.payload()

	frame := make([]byte, 0, headerLen+len(p)+crcLen)
	frame = append(frame, addr, fcReadHolding, byte(len(p)))
	frame = append(frame, p...)

	crc := CRC16(frame)
	frame = append(frame, byte(crc), byte(crc>>8))
	return frame
}

func defaultSim() meterSim {
	return meterSim{
		flow:     12345,   // 123.45 L/h
		forward:  1234567, // 1234.567 m³
		reverse:  89012,   // 89.012 m³
		pressure: 101,     // 0.101 MPa
		status:   0,
		temp:     2215, // 22.15 °C
		serial:   0x12345678,
		modbusID: 1,
		baudCode: 1,
	}
}
