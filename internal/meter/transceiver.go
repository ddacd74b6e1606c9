// internal/meter/transceiver.go
package meter

import (
	"fmt"
	"time"

	"github.com/AMRAli-AG/Flow-Gard/internal/serialbus"
)

// BusSettings are fixed by the meter: 2400 baud, 8E1, no flow control.
// Not negotiable at runtime.
var BusSettings = serialbus.Settings{
	BaudRate:    2400,
	Parity:      serialbus.ParityEven,
	StopBits:    1,
	DataBits:    8,
	FlowControl: serialbus.FlowNone,
}

const (
	// Settle after the request before sampling the line.
	settleAfterRequest = 100 * time.Millisecond
	// Settle after handing the UART back to the console.
	settleAfterRestore = 10 * time.Millisecond

	// Absolute ceiling on one receive window.
	responseDeadline = 2000 * time.Millisecond
	// Once enough bytes are in, this much line silence means the reply
	// is over. The engine never knows the reply length in advance.
	interByteCutoff = 150 * time.Millisecond
	// Idle cutoff arms only after this many bytes; a lone line glitch
	// must not terminate the window early.
	cutoffArmCount = 4

	// Pause between poll-read probes.
	pollSlice = 5 * time.Millisecond

	rxBufferSize = 256
)

// Transceiver executes exactly one request/response exchange per call,
// switching the shared UART from console to field-bus mode and back.
// It owns no state beyond the in-flight buffer.
type Transceiver struct {
	port serialbus.Port

	// Clock hooks for tests; real callers leave the defaults.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewTransceiver wraps port with the fixed bus timing profile.
func NewTransceiver(port serialbus.Port) *Transceiver {
	return &Transceiver{
		port:  port,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Exchange writes request on the field bus and collects the reply.
//
// An empty or short reply is an expected outcome (no answer, truncated
// answer) and returns nil error; frame validation decides what it
// means. Only a line reconfiguration failure is an error here, and it
// kills the whole poll cycle.
func (t *Transceiver) Exchange(request []byte) ([]byte, error) {
	console := t.port.Settings()

	if err := t.port.Configure(BusSettings); err != nil {
		return nil, fmt.Errorf("meter: switch to bus mode: %w", err)
	}

	for _, b := range request {
		if err := t.port.WriteByte(b); err != nil {
			t.restore(console)
			return nil, fmt.Errorf("meter: write request: %w", err)
		}
	}

	t.sleep(settleAfterRequest)

	buf := make([]byte, 0, rxBufferSize)
	start := t.now()
	lastByte := start

	for t.now().Sub(start) < responseDeadline {
		if b, ok := t.port.PollByte(); ok {
			buf = append(buf, b)
			lastByte = t.now()
			if len(buf) >= rxBufferSize {
				break
			}
		}

		if len(buf) >= cutoffArmCount && t.now().Sub(lastByte) > interByteCutoff {
			break
		}

		t.sleep(pollSlice)
	}

	if err := t.restore(console); err != nil {
		return nil, err
	}

	return buf, nil
}

func (t *Transceiver) restore(console serialbus.Settings) error {
	if err := t.port.Configure(console); err != nil {
		return fmt.Errorf("meter: restore console mode: %w", err)
	}
	t.sleep(settleAfterRestore)
	return nil
}
