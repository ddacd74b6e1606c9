// internal/meter/registers_test.go
package meter

import (
	"strings"
	"testing"
)

func TestDecodeReading_RoundTrip(t *testing.T) {
	sim := defaultSim()
	r := DecodeReading(sim.payload())

	if r.FlowRate != sim.flow {
		t.Errorf("FlowRate=%d want %d", r.FlowRate, sim.flow)
	}
	if r.ForwardTotal != sim.forward {
		t.Errorf("ForwardTotal=%d want %d", r.ForwardTotal, sim.forward)
	}
	if r.ReverseTotal != sim.reverse {
		t.Errorf("ReverseTotal=%d want %d", r.ReverseTotal, sim.reverse)
	}
	if r.Pressure != sim.pressure {
		t.Errorf("Pressure=%d want %d", r.Pressure, sim.pressure)
	}
	if r.Status != sim.status {
		t.Errorf("Status=%d want %d", r.Status, sim.status)
	}
	if r.Temperature != sim.temp {
		t.Errorf("Temperature=%d want %d", r.Temperature, sim.temp)
	}
	if r.SerialNumber != sim.serial {
		t.Errorf("SerialNumber=%08X want %08X", r.SerialNumber, sim.serial)
	}
	if r.ModbusID != sim.modbusID {
		t.Errorf("ModbusID=%d want %d", r.ModbusID, sim.modbusID)
	}
	if r.BaudCode != sim.baudCode {
		t.Errorf("BaudCode=%d want %d", r.BaudCode, sim.baudCode)
	}
}

func TestDecodeReading_WordSwap(t *testing.T) {
	// Measurement pairs carry the low word first on the wire.
	sim := defaultSim()
	sim.flow = 0x00012345
	p := sim.payload()

	if p[0] != 0x23 || p[1] != 0x45 || p[2] != 0x00 || p[3] != 0x01 {
		t.Fatalf("fixture wire order wrong: % X", p[:4])
	}
	if r := DecodeReading(p); r.FlowRate != 0x00012345 {
		t.Fatalf("FlowRate=%08X want 00012345", r.FlowRate)
	}
}

func TestDecodeReading_SerialIsStraightBigEndian(t *testing.T) {
	// The serial number register pair is NOT word-swapped.
	sim := defaultSim()
	sim.serial = 0xAABBCCDD
	p := sim.payload()

	if p[64] != 0xAA || p[65] != 0xBB || p[66] != 0xCC || p[67] != 0xDD {
		t.Fatalf("fixture wire order wrong: % X", p[64:68])
	}
	if r := DecodeReading(p); r.SerialNumber != 0xAABBCCDD {
		t.Fatalf("SerialNumber=%08X want AABBCCDD", r.SerialNumber)
	}
}

func TestDecodeReading_ShortPayloadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("short payload did not panic")
		}
	}()
	DecodeReading(make([]byte, 10))
}

func TestStatusLabels(t *testing.T) {
	cases := []struct {
		status     uint16
		label      string
		empty      bool
		lowBattery bool
	}{
		{0x0000, "Normal", false, false},
		{0x0004, "Empty!", true, false},
		{0x0020, "Low Battery!", false, true},
		{0x0024, "Empty!", true, true},
	}

	for _, c := range cases {
		r := Reading{Status: c.status}
		if got := r.StatusLabel(); got != c.label {
			t.Errorf("status %04X: label %q want %q", c.status, got, c.label)
		}
		if r.EmptyPipe() != c.empty {
			t.Errorf("status %04X: EmptyPipe=%v want %v", c.status, r.EmptyPipe(), c.empty)
		}
		if r.LowBattery() != c.lowBattery {
			t.Errorf("status %04X: LowBattery=%v want %v", c.status, r.LowBattery(), c.lowBattery)
		}
	}
}

func TestBaudRateString(t *testing.T) {
	cases := map[uint16]string{
		0: "9600",
		1: "2400",
		2: "4800",
		3: "1200",
		9: "unknown",
	}
	for code, want := range cases {
		r := Reading{BaudCode: code}
		if got := r.BaudRateString(); got != want {
			t.Errorf("code %d: got %q want %q", code, got, want)
		}
	}
}

func TestSplitScaled(t *testing.T) {
	if w, f := SplitScaled(1234567, 1000); w != 1234 || f != 567 {
		t.Fatalf("SplitScaled(1234567,1000)=(%d,%d) want (1234,567)", w, f)
	}
	if w, f := SplitScaled(12345, 100); w != 123 || f != 45 {
		t.Fatalf("SplitScaled(12345,100)=(%d,%d) want (123,45)", w, f)
	}
}

func TestRegisterMap_NamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range registerMap {
		if seen[f.name] {
			t.Fatalf("duplicate register name %q", f.name)
		}
		if strings.TrimSpace(f.name) == "" {
			t.Fatalf("unnamed register at offset %d", f.offset)
		}
		seen[f.name] = true
	}
}
