package transportmem

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

type recorder struct {
	mu   sync.Mutex
	data [][]byte
}

func (r *recorder) Deliver(data []byte, timestampMicros int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	r.data = append(r.data, buf)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func TestLoopbackDelivery(t *testing.T) {
	transport := New()
	device := transport.AddDevice("LoopMIDI", contracts.Unlimited, contracts.Unlimited)

	tx, err := device.Transmitter()
	if err != nil {
		t.Fatalf("Transmitter returned error: %v", err)
	}
	rec := &recorder{}
	if err := tx.SetReceiver(rec); err != nil {
		t.Fatalf("SetReceiver returned error: %v", err)
	}

	rx, err := device.Receiver()
	if err != nil {
		t.Fatalf("Receiver returned error: %v", err)
	}
	if err := rx.Deliver([]byte{0x90, 0x40, 0x7F}, 0); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if rec.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", rec.count())
	}
	if !bytes.Equal(rec.data[0], []byte{0x90, 0x40, 0x7F}) {
		t.Errorf("delivered bytes = % X, want 90 40 7F", rec.data[0])
	}
}

func TestUnwiredDeliveryIsDropped(t *testing.T) {
	transport := New()
	device := transport.AddDevice("LoopMIDI", 1, 1)

	rx, err := device.Receiver()
	if err != nil {
		t.Fatalf("Receiver returned error: %v", err)
	}
	if err := rx.Deliver([]byte{0x90, 0x40, 0x7F}, 0); err != nil {
		t.Errorf("delivery to an unwired device should be dropped, got %v", err)
	}
}

// Wiring a device to its own receiver must not recurse.
func TestSelfLoopIsGuarded(t *testing.T) {
	transport := New()
	device := transport.AddDevice("LoopMIDI", 1, 1)

	tx, err := device.Transmitter()
	if err != nil {
		t.Fatalf("Transmitter returned error: %v", err)
	}
	self, err := device.Receiver()
	if err != nil {
		t.Fatalf("Receiver returned error: %v", err)
	}
	if err := tx.SetReceiver(self); err != nil {
		t.Fatalf("SetReceiver returned error: %v", err)
	}

	other, err := device.Receiver()
	if err != nil {
		t.Fatalf("Receiver returned error: %v", err)
	}
	if err := other.Deliver([]byte{0xF8}, 0); err != nil {
		t.Errorf("self-loop delivery should be dropped, got %v", err)
	}
}

func TestDirectionEnforcement(t *testing.T) {
	transport := New()
	input := transport.AddDevice("Keyboard", 1, 0)
	output := transport.AddDevice("Synth", 0, 1)

	if _, err := input.Receiver(); !errors.Is(err, contracts.ErrUnsupportedDirection) {
		t.Errorf("expected ErrUnsupportedDirection, got %v", err)
	}
	if _, err := output.Transmitter(); !errors.Is(err, contracts.ErrUnsupportedDirection) {
		t.Errorf("expected ErrUnsupportedDirection, got %v", err)
	}
}

func TestClosedReceiverRejectsDelivery(t *testing.T) {
	transport := New()
	device := transport.AddDevice("LoopMIDI", 1, 1)

	rx, err := device.Receiver()
	if err != nil {
		t.Fatalf("Receiver returned error: %v", err)
	}
	if err := rx.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := rx.Deliver([]byte{0xF8}, 0); err == nil {
		t.Error("expected an error delivering through a closed handle")
	}
}

func TestClosedTransportStopsEnumerating(t *testing.T) {
	transport := New()
	transport.AddDevice("LoopMIDI", 1, 1)

	if err := transport.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := transport.Devices(); err == nil {
		t.Error("expected an error enumerating a closed transport")
	}
}
