// internal/meter/frame.go
package meter

import (
	"errors"
	"fmt"
)

// Read geometry fixed by the BOVE device profile.
// One FC 0x03 read covers every register this gateway consumes.
const (
	fcReadHolding = 0x03

	startRegister = 1
	registerCount = 38

	headerLen = 3 // address + function + byte count
	crcLen    = 2

	// A complete response for the fixed quantity. Anything shorter is a
	// missing or truncated reply.
	responseLen = headerLen + 2*registerCount + crcLen

	// Modbus protocol ceiling for FC 0x03.
	maxReadQuantity = 125
)

// Frame validation failures. All are transient: the next poll cycle
// simply retries.
var (
	ErrTooShort         = errors.New("meter: response too short")
	ErrCRCMismatch      = errors.New("meter: response crc mismatch")
	ErrAddressMismatch  = errors.New("meter: response address mismatch")
	ErrFunctionMismatch = errors.New("meter: response function mismatch")
)

// CRC16 computes the Modbus CRC over data.
// Init 0xFFFF, reflected polynomial 0xA001, one shift per input bit.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// BuildReadRequest assembles an 8-byte FC 0x03 request.
// The CRC trailer is transmitted low byte first.
func BuildReadRequest(deviceAddr uint8, start, quantity uint16) ([]byte, error) {
	if quantity == 0 || quantity > maxReadQuantity {
		return nil, fmt.Errorf("meter: read quantity must be 1..%d, got %d", maxReadQuantity, quantity)
	}

	frame := []byte{
		deviceAddr,
		fcReadHolding,
		byte(start >> 8), byte(start),
		byte(quantity >> 8), byte(quantity),
		0, 0,
	}

	crc := CRC16(frame[:6])
	frame[6] = byte(crc)
	frame[7] = byte(crc >> 8)

	return frame, nil
}

// ValidateResponse checks a raw response frame and returns its payload
// (the register data after the 3-byte header, CRC trailer stripped).
//
// Checks run cheapest first: length, CRC, address, function.
func ValidateResponse(frame []byte, expectedAddr uint8) ([]byte, error) {
	if len(frame) < responseLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrTooShort, len(frame), responseLen)
	}

	recv := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	calc := CRC16(frame[:len(frame)-2])
	if recv != calc {
		return nil, fmt.Errorf("%w: recv 0x%04X calc 0x%04X", ErrCRCMismatch, recv, calc)
	}

	if frame[0] != expectedAddr {
		return nil, fmt.Errorf("%w: got %d want %d", ErrAddressMismatch, frame[0], expectedAddr)
	}
	if frame[1] != fcReadHolding {
		return nil, fmt.Errorf("%w: got 0x%02X want 0x%02X", ErrFunctionMismatch, frame[1], fcReadHolding)
	}

	return frame[headerLen : len(frame)-crcLen], nil
}
