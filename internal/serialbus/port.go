// internal/serialbus/port.go
package serialbus

// Parity of a serial line.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// FlowControl of a serial line.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowHardware
)

// Settings is one full line configuration, snapshotable and restorable.
type Settings struct {
	BaudRate    int
	Parity      Parity
	StopBits    int
	DataBits    int
	FlowControl FlowControl
}

// Port is the narrow transport contract the transaction engine drives.
// The same physical UART serves the operator console and the field bus,
// so the engine must be able to snapshot and restore the line settings.
type Port interface {
	// Configure reprograms the line. Failure is fatal to the current
	// poll cycle; the caller decides process-level consequences.
	Configure(s Settings) error

	// Settings returns the currently active line configuration.
	Settings() Settings

	// WriteByte transmits a single byte.
	WriteByte(b byte) error

	// PollByte returns one pending byte, or ok=false if none is
	// available right now. It never blocks.
	PollByte() (b byte, ok bool)
}
