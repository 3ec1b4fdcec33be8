package routing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

func TestConnectWiresTransmitterToReceiver(t *testing.T) {
	conns := NewConnections(testLogger)
	from := newFakeDevice("Keyboard", 1, 0)
	to := newFakeDevice("Synth", 0, 1)

	conn, err := conns.Connect(from, to)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if conn.ID() == "" {
		t.Error("expected a nonempty connection ID")
	}
	if from.tx.Receiver() != contracts.Receiver(to.rx) {
		t.Error("transmitter slot does not hold the target receiver")
	}

	from.tx.deliver([]byte{0x90, 0x40, 0x7F}, 100)
	if to.rx.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", to.rx.count())
	}
}

// A transmitter holds at most one connection: a second connect replaces the
// first, and the displaced receiver sees nothing further.
func TestConnectReplacesPriorAssignment(t *testing.T) {
	conns := NewConnections(testLogger)
	a := newFakeDevice("A", 1, 0)
	b := newFakeDevice("B", 0, 1)
	c := newFakeDevice("C", 0, 1)

	if _, err := conns.Connect(a, b); err != nil {
		t.Fatalf("Connect(A, B) returned error: %v", err)
	}
	a.tx.deliver([]byte{0x90, 0x40, 0x7F}, 0)

	if _, err := conns.Connect(a, c); err != nil {
		t.Fatalf("Connect(A, C) returned error: %v", err)
	}
	a.tx.deliver([]byte{0x80, 0x40, 0x00}, 0)
	a.tx.deliver([]byte{0x90, 0x41, 0x10}, 0)

	if b.rx.count() != 1 {
		t.Errorf("displaced receiver saw %d deliveries, want 1", b.rx.count())
	}
	if c.rx.count() != 2 {
		t.Errorf("current receiver saw %d deliveries, want 2", c.rx.count())
	}
}

func TestConnectUnsupportedDirections(t *testing.T) {
	conns := NewConnections(testLogger)
	input := newFakeDevice("Keyboard", 1, 0)
	output := newFakeDevice("Synth", 0, 1)

	if _, err := conns.Connect(output, input); !errors.Is(err, contracts.ErrUnsupportedDirection) {
		t.Errorf("expected ErrUnsupportedDirection, got %v", err)
	}
	if _, err := conns.Connect(input, input); !errors.Is(err, contracts.ErrUnsupportedDirection) {
		t.Errorf("expected ErrUnsupportedDirection connecting to a transmit-only device, got %v", err)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	conns := NewConnections(testLogger)
	from := newFakeDevice("Keyboard", 1, 0)
	to := newFakeDevice("Synth", 0, 1)

	// Disconnecting an unwired transmitter must not panic or change state.
	conns.Disconnect(from.tx)
	if from.tx.Receiver() != nil {
		t.Error("slot should remain empty")
	}
	conns.Disconnect(nil)

	if _, err := conns.Connect(from, to); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	conns.Disconnect(from.tx)
	conns.Disconnect(from.tx)
	if from.tx.Receiver() != nil {
		t.Error("slot should be cleared after disconnect")
	}

	from.tx.deliver([]byte{0x90, 0x40, 0x7F}, 0)
	if to.rx.count() != 0 {
		t.Errorf("disconnected receiver saw %d deliveries, want 0", to.rx.count())
	}
}

func TestConnectionCloseIsIdempotent(t *testing.T) {
	conns := NewConnections(testLogger)
	from := newFakeDevice("Keyboard", 1, 0)
	to := newFakeDevice("Synth", 0, 1)

	conn, err := conns.Connect(from, to)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if from.tx.Receiver() != nil {
		t.Error("slot should be cleared after Close")
	}
}

func TestSendNormalizesMessageForms(t *testing.T) {
	conns := NewConnections(testLogger)
	to := newFakeDevice("Synth", 0, 1)

	structured := contracts.Message{Status: 0x90, Data1: 0x40, Data2: 0x7F, Event: contracts.EventNoteOn}
	forms := []any{
		[]byte{0x90, 0x40, 0x7F},
		structured,
		&structured,
	}
	for _, form := range forms {
		if err := conns.Send(to, form, 2500); err != nil {
			t.Fatalf("Send(%T) returned error: %v", form, err)
		}
	}

	if to.rx.count() != len(forms) {
		t.Fatalf("expected %d deliveries, got %d", len(forms), to.rx.count())
	}
	data, ts := to.rx.last()
	if !bytes.Equal(data, []byte{0x90, 0x40, 0x7F}) {
		t.Errorf("delivered bytes = % X, want 90 40 7F", data)
	}
	if ts != 2500 {
		t.Errorf("delivered timestamp = %d, want 2500", ts)
	}
}

// Platform receiver handles own OS resources, so repeated sends to the same
// device must reuse one handle and Close must release it.
func TestSendReusesDeliveryHandle(t *testing.T) {
	conns := NewConnections(testLogger)
	to := newFakeDevice("Synth", 0, 1)

	for i := 0; i < 3; i++ {
		if err := conns.Send(to, []byte{0xF8}, contracts.TimestampNow); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	}
	if opens := to.receiverOpens(); opens != 1 {
		t.Errorf("Send coerced %d receiver handles, want 1", opens)
	}
	if to.rx.count() != 3 {
		t.Errorf("expected 3 deliveries, got %d", to.rx.count())
	}

	if err := conns.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !to.rx.isClosed() {
		t.Error("cached delivery handle was not closed")
	}
}

func TestSendRejectsMalformedAndMisdirected(t *testing.T) {
	conns := NewConnections(testLogger)
	input := newFakeDevice("Keyboard", 1, 0)
	output := newFakeDevice("Synth", 0, 1)

	if err := conns.Send(output, []byte{}, contracts.TimestampNow); !errors.Is(err, contracts.ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage for empty wire bytes, got %v", err)
	}
	if err := conns.Send(input, []byte{0x90, 0x40, 0x7F}, contracts.TimestampNow); !errors.Is(err, contracts.ErrUnsupportedDirection) {
		t.Errorf("expected ErrUnsupportedDirection for transmit-only target, got %v", err)
	}
}
