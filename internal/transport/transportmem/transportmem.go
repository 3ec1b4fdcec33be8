// Package transportmem provides an in-memory MIDI transport. Its devices are
// loopback endpoints: bytes delivered to a device's receiver re-emerge from
// the device's transmitter and are forwarded to whatever receiver currently
// occupies its slot. It backs virtual wiring and the routing tests.
package transportmem

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// Transport is an in-memory device registry.
type Transport struct {
	mu      sync.Mutex
	devices []contracts.Device
	closed  bool
}

func New() *Transport {
	return &Transport{}
}

// AddDevice registers a loopback device with the given capability counts.
// Zero disables a direction; contracts.Unlimited lifts the limit.
func (t *Transport) AddDevice(name string, maxTransmitters, maxReceivers int) *Device {
	d := &Device{
		name:  name,
		maxTx: maxTransmitters,
		maxRx: maxReceivers,
	}
	d.tx = &Transmitter{device: d}
	t.mu.Lock()
	t.devices = append(t.devices, d)
	t.mu.Unlock()
	return d
}

// Devices returns a snapshot of the registered devices in insertion order.
func (t *Transport) Devices() ([]contracts.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("transport is closed")
	}
	out := make([]contracts.Device, len(t.devices))
	copy(out, t.devices)
	return out, nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

// Device is a loopback endpoint. All receiver handles feed the single shared
// transmitter, mirroring platforms where a device exposes one transmitter
// object regardless of how many handles are taken.
type Device struct {
	name  string
	maxTx int
	maxRx int
	tx    *Transmitter
}

func (d *Device) Name() string { return d.name }

func (d *Device) MaxTransmitters() int { return d.maxTx }

func (d *Device) MaxReceivers() int { return d.maxRx }

func (d *Device) Transmitter() (contracts.Transmitter, error) {
	if d.maxTx == 0 {
		return nil, fmt.Errorf("%w: %q has no transmitter", contracts.ErrUnsupportedDirection, d.name)
	}
	return d.tx, nil
}

func (d *Device) Receiver() (contracts.Receiver, error) {
	if d.maxRx == 0 {
		return nil, fmt.Errorf("%w: %q has no receiver", contracts.ErrUnsupportedDirection, d.name)
	}
	return &Receiver{device: d}, nil
}

// Transmitter holds the device's single receiver slot.
type Transmitter struct {
	device *Device
	mu     sync.Mutex
	slot   contracts.Receiver
}

func (tx *Transmitter) SetReceiver(r contracts.Receiver) error {
	tx.mu.Lock()
	tx.slot = r
	tx.mu.Unlock()
	return nil
}

func (tx *Transmitter) Receiver() contracts.Receiver {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.slot
}

// Close releases the handle. The receiver slot is left untouched: handles are
// cheap references to the shared transmitter, and clearing the slot is the
// caller's explicit disconnect.
func (tx *Transmitter) Close() error { return nil }

// Receiver is a handle for delivering bytes into the device.
type Receiver struct {
	device *Device
	closed atomic.Bool
}

// Deliver loops the bytes back out of the device's transmitter. Deliveries to
// an unwired transmitter are dropped, as are deliveries that would loop into
// the same device's own receiver (a device wired to itself without a
// subscriber would otherwise recurse forever).
func (r *Receiver) Deliver(data []byte, timestampMicros int64) error {
	if r.closed.Load() {
		return fmt.Errorf("receiver handle for %q is closed", r.device.name)
	}
	dest := r.device.tx.Receiver()
	if dest == nil {
		return nil
	}
	if loop, ok := dest.(*Receiver); ok && loop.device == r.device {
		return nil
	}
	return dest.Deliver(data, timestampMicros)
}

func (r *Receiver) Close() error {
	r.closed.Store(true)
	return nil
}
