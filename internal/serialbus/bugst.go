// internal/serialbus/bugst.go
package serialbus

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DevicePort implements Port on top of a real UART via go.bug.st/serial.
//
// The library has no "read current settings" call, so the adapter keeps
// the last configuration it applied. The port is opened with the console
// settings passed to Open; callers snapshot via Settings() before
// switching modes.
type DevicePort struct {
	port    serial.Port
	current Settings
	rd      [1]byte
}

// pollReadTimeout bounds each PollByte against the OS read path.
// It has to stay well under the transceiver's 5 ms poll slice.
const pollReadTimeout = time.Millisecond

// Open opens the UART at device with the given initial settings.
func Open(device string, initial Settings) (*DevicePort, error) {
	mode, err := toMode(initial)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialbus: open %s: %w", device, err)
	}

	if err := port.SetReadTimeout(pollReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serialbus: set read timeout: %w", err)
	}

	return &DevicePort{port: port, current: initial}, nil
}

// Close releases the UART.
func (p *DevicePort) Close() error {
	return p.port.Close()
}

// Configure reprograms the line and records the new settings.
func (p *DevicePort) Configure(s Settings) error {
	mode, err := toMode(s)
	if err != nil {
		return err
	}
	if err := p.port.SetMode(mode); err != nil {
		return fmt.Errorf("serialbus: set mode: %w", err)
	}
	p.current = s
	return nil
}

// Settings returns the last applied line configuration.
func (p *DevicePort) Settings() Settings {
	return p.current
}

// WriteByte transmits a single byte.
func (p *DevicePort) WriteByte(b byte) error {
	buf := [1]byte{b}
	if _, err := p.port.Write(buf[:]); err != nil {
		return fmt.Errorf("serialbus: write: %w", err)
	}
	return nil
}

// PollByte returns one pending byte without blocking beyond the
// 1 ms read timeout set at open.
func (p *DevicePort) PollByte() (byte, bool) {
	n, err := p.port.Read(p.rd[:])
	if err != nil || n == 0 {
		return 0, false
	}
	return p.rd[0], true
}

func toMode(s Settings) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
	}

	switch s.Parity {
	case ParityNone:
		mode.Parity = serial.NoParity
	case ParityEven:
		mode.Parity = serial.EvenParity
	case ParityOdd:
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("serialbus: unsupported parity %d", s.Parity)
	}

	switch s.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("serialbus: unsupported stop bits %d", s.StopBits)
	}

	// go.bug.st/serial exposes no flow control knob; the field bus
	// runs without it either way.
	if s.FlowControl != FlowNone {
		return nil, fmt.Errorf("serialbus: unsupported flow control %d", s.FlowControl)
	}

	return mode, nil
}
