// internal/telemetry/publisher_test.go
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/AMRAli-AG/Flow-Gard/internal/meter"
	"github.com/AMRAli-AG/Flow-Gard/internal/session"
)

type fakeGate struct {
	ready bool
	epoch uint64
}

func (g *fakeGate) Ready() bool   { return g.ready }
func (g *fakeGate) Epoch() uint64 { return g.epoch }

type published struct {
	topic   string
	payload []byte
}

type fakeSession struct {
	out        []published
	publishErr error
}

func (f *fakeSession) Subscribe(session.Events)      {}
func (f *fakeSession) Connect(context.Context) error { return nil }
func (f *fakeSession) InputReady() bool              { return false }
func (f *fakeSession) ProcessInput()                 {}
func (f *fakeSession) KeepaliveTick()                {}
func (f *fakeSession) Disconnect()                   {}

func (f *fakeSession) Publish(topic string, payload []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.out = append(f.out, published{topic: topic, payload: payload})
	return nil
}

func sampleReading() *meter.Reading {
	return &meter.Reading{
		FlowRate:     12345,
		ForwardTotal: 1234567,
		ReverseTotal: 89012,
		Pressure:     101,
		Temperature:  2215,
		Status:       0x0024,
		SerialNumber: 0x00123456,
		ModbusID:     1,
		BaudCode:     1,
	}
}

func newTestPublisher(gate *fakeGate) (*Publisher, *fakeSession) {
	sess := &fakeSession{}
	return New(sess, gate, "v1/devices/me/telemetry", "v1/devices/me/attributes"), sess
}

func TestPublishReading_GateClosed(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: false, epoch: 1})

	if err := pub.PublishReading(sampleReading()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err=%v, want ErrNotConnected", err)
	}
	if len(sess.out) != 0 {
		t.Fatalf("published while not connected")
	}
}

func TestPublishReading_NilReading(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: true, epoch: 1})

	if err := pub.PublishReading(nil); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err=%v, want ErrInvalidData", err)
	}
	if len(sess.out) != 0 {
		t.Fatalf("published an absent reading")
	}
}

func TestPublishReading_WireContract(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: true, epoch: 1})

	if err := pub.PublishReading(sampleReading()); err != nil {
		t.Fatalf("PublishReading err=%v", err)
	}
	if len(sess.out) != 1 || sess.out[0].topic != "v1/devices/me/telemetry" {
		t.Fatalf("out=%+v", sess.out)
	}

	var fields map[string]json.Number
	dec := json.NewDecoder(bytes.NewReader(sess.out[0].payload))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		t.Fatalf("payload not flat numeric JSON: %v", err)
	}

	want := map[string]string{
		"flowRate":     "12345",
		"forwardTotal": "1234567",
		"reverseTotal": "89012",
		"pressure":     "101",
		"temperature":  "2215",
		"status":       "36", // 0x0024
		"leak":         "1",
		"empty":        "1",
		"lowBattery":   "1",
	}
	if len(fields) != len(want) {
		t.Fatalf("field set %v, want exactly %d fields", fields, len(want))
	}
	for name, val := range want {
		if got, ok := fields[name]; !ok || got.String() != val {
			t.Errorf("field %q = %v, want %s", name, got, val)
		}
	}
}

func TestPublishReading_StatusNormal(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: true, epoch: 1})

	r := sampleReading()
	r.Status = 0

	if err := pub.PublishReading(r); err != nil {
		t.Fatalf("PublishReading err=%v", err)
	}

	var fields map[string]int
	if err := json.Unmarshal(sess.out[0].payload, &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fields["leak"] != 0 || fields["empty"] != 0 || fields["lowBattery"] != 0 {
		t.Fatalf("status flags set on normal status: %v", fields)
	}
}

func TestPublishAttributes_OncePerEpoch(t *testing.T) {
	gate := &fakeGate{ready: true, epoch: 1}
	pub, sess := newTestPublisher(gate)
	r := sampleReading()

	if err := pub.PublishAttributes(r); err != nil {
		t.Fatalf("first PublishAttributes err=%v", err)
	}
	if err := pub.PublishAttributes(r); err != nil {
		t.Fatalf("repeat PublishAttributes err=%v", err)
	}
	if len(sess.out) != 1 {
		t.Fatalf("published %d times within one epoch, want 1", len(sess.out))
	}

	// New session establishment: attributes go out again.
	gate.epoch = 2
	if err := pub.PublishAttributes(r); err != nil {
		t.Fatalf("new-epoch PublishAttributes err=%v", err)
	}
	if len(sess.out) != 2 {
		t.Fatalf("published %d times across two epochs, want 2", len(sess.out))
	}
}

func TestPublishAttributes_Contract(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: true, epoch: 1})

	if err := pub.PublishAttributes(sampleReading()); err != nil {
		t.Fatalf("PublishAttributes err=%v", err)
	}
	if sess.out[0].topic != "v1/devices/me/attributes" {
		t.Fatalf("topic=%q", sess.out[0].topic)
	}

	var fields map[string]any
	if err := json.Unmarshal(sess.out[0].payload, &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if fields["firmwareVersion"] != FirmwareVersion {
		t.Errorf("firmwareVersion=%v", fields["firmwareVersion"])
	}
	if fields["deviceModel"] != DeviceModel {
		t.Errorf("deviceModel=%v", fields["deviceModel"])
	}
	if fields["serialNumber"] != "00123456" {
		t.Errorf("serialNumber=%v, want zero-padded 00123456", fields["serialNumber"])
	}
	if fields["modbusId"] != float64(1) {
		t.Errorf("modbusId=%v", fields["modbusId"])
	}
	if fields["baudRate"] != "2400" {
		t.Errorf("baudRate=%v, want resolved string 2400", fields["baudRate"])
	}
}

func TestPublishAttributes_FailureDoesNotMarkEpoch(t *testing.T) {
	gate := &fakeGate{ready: true, epoch: 1}
	pub, sess := newTestPublisher(gate)
	r := sampleReading()

	sess.publishErr = errors.New("no puback")
	if err := pub.PublishAttributes(r); err == nil {
		t.Fatalf("expected delivery error")
	}

	// The epoch stays uncovered; the retry must actually publish.
	sess.publishErr = nil
	if err := pub.PublishAttributes(r); err != nil {
		t.Fatalf("retry err=%v", err)
	}
	if len(sess.out) != 1 {
		t.Fatalf("retry did not publish")
	}
}

func TestPublishReading_DeliveryErrorReported(t *testing.T) {
	pub, sess := newTestPublisher(&fakeGate{ready: true, epoch: 1})
	sess.publishErr = errors.New("ack timeout")

	if err := pub.PublishReading(sampleReading()); err == nil {
		t.Fatalf("delivery failure swallowed")
	}
}
