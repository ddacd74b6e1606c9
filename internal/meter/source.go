// internal/meter/source.go
package meter

import (
	"github.com/AMRAli-AG/Flow-Gard/internal/serialbus"
)

// Source composes codec, transceiver and decoder into one polling
// operation against a single meter.
type Source struct {
	tr         *Transceiver
	deviceAddr uint8
	request    []byte
}

// NewSource builds a source for the meter at deviceAddr on port.
func NewSource(port serialbus.Port, deviceAddr uint8) *Source {
	// Geometry is fixed by the device profile, so the request cannot
	// fail to build and never changes between polls.
	request, err := BuildReadRequest(deviceAddr, startRegister, registerCount)
	if err != nil {
		panic("meter: fixed read request rejected: " + err.Error())
	}

	return &Source{
		tr:         NewTransceiver(port),
		deviceAddr: deviceAddr,
		request:    request,
	}
}

// Acquire runs one complete transaction and returns the decoded
// reading. A nil Reading with a non-nil error means "no reading this
// cycle"; partial decodes never escape.
func (s *Source) Acquire() (*Reading, error) {
	raw, err := s.tr.Exchange(s.request)
	if err != nil {
		return nil, err
	}

	payload, err := ValidateResponse(raw, s.deviceAddr)
	if err != nil {
		return nil, err
	}

	return DecodeReading(payload), nil
}
