// internal/telemetry/message.go
package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/AMRAli-AG/Flow-Gard/internal/meter"
)

// Device identity reported on the attributes topic.
const (
	FirmwareVersion = "2.0.0"
	DeviceModel     = "BOVE-Modbus-Meter"
)

// telemetryFields is the collector's wire contract: flat JSON, integer
// values only, these exact names. Dashboards unscale on their side.
type telemetryFields struct {
	FlowRate     uint32 `json:"flowRate"`
	ForwardTotal uint32 `json:"forwardTotal"`
	ReverseTotal uint32 `json:"reverseTotal"`
	Pressure     uint16 `json:"pressure"`
	Temperature  uint16 `json:"temperature"`
	Status       uint16 `json:"status"`
	Leak         int    `json:"leak"`
	Empty        int    `json:"empty"`
	LowBattery   int    `json:"lowBattery"`
}

type attributeFields struct {
	FirmwareVersion string `json:"firmwareVersion"`
	DeviceModel     string `json:"deviceModel"`
	SerialNumber    string `json:"serialNumber"`
	ModbusID        uint8  `json:"modbusId"`
	BaudRate        string `json:"baudRate"`
}

// EncodeTelemetry serializes one reading for the telemetry topic.
// Each call builds a fresh message; messages are never reused across
// publish attempts.
func EncodeTelemetry(r *meter.Reading) ([]byte, error) {
	// leak mirrors the empty-pipe bit. The deployed collector binds
	// both names, so both stay.
	msg := telemetryFields{
		FlowRate:     r.FlowRate,
		ForwardTotal: r.ForwardTotal,
		ReverseTotal: r.ReverseTotal,
		Pressure:     r.Pressure,
		Temperature:  r.Temperature,
		Status:       r.Status,
		Leak:         boolBit(r.EmptyPipe()),
		Empty:        boolBit(r.EmptyPipe()),
		LowBattery:   boolBit(r.LowBattery()),
	}
	return json.Marshal(msg)
}

// EncodeAttributes serializes the static device identity.
func EncodeAttributes(r *meter.Reading) ([]byte, error) {
	msg := attributeFields{
		FirmwareVersion: FirmwareVersion,
		DeviceModel:     DeviceModel,
		// Packed decimal digits; rendered as hex so the digits read
		// back verbatim.
		SerialNumber: fmt.Sprintf("%08X", r.SerialNumber),
		ModbusID:     r.ModbusID,
		BaudRate:     r.BaudRateString(),
	}
	return json.Marshal(msg)
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
