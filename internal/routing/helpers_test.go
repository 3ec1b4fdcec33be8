package routing

import (
	"sync"

	"github.com/leandrodaf/midiroute/internal/logger"
	"github.com/leandrodaf/midiroute/sdk/contracts"
)

var testLogger = logger.NewNopLogger()

// fakeDevice is a scripted endpoint whose handles the tests can inspect.
type fakeDevice struct {
	name  string
	maxTx int
	maxRx int
	tx    *fakeTransmitter
	rx    *captureReceiver

	mu      sync.Mutex
	rxOpens int
}

func newFakeDevice(name string, maxTx, maxRx int) *fakeDevice {
	return &fakeDevice{
		name:  name,
		maxTx: maxTx,
		maxRx: maxRx,
		tx:    &fakeTransmitter{},
		rx:    &captureReceiver{},
	}
}

func (d *fakeDevice) Name() string { return d.name }

func (d *fakeDevice) MaxTransmitters() int { return d.maxTx }

func (d *fakeDevice) MaxReceivers() int { return d.maxRx }

func (d *fakeDevice) Transmitter() (contracts.Transmitter, error) {
	return d.tx, nil
}

func (d *fakeDevice) Receiver() (contracts.Receiver, error) {
	d.mu.Lock()
	d.rxOpens++
	d.mu.Unlock()
	return d.rx, nil
}

func (d *fakeDevice) receiverOpens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxOpens
}

// fakeTransmitter records slot assignments and close calls.
type fakeTransmitter struct {
	mu     sync.Mutex
	slot   contracts.Receiver
	closed bool
}

func (tx *fakeTransmitter) SetReceiver(r contracts.Receiver) error {
	tx.mu.Lock()
	tx.slot = r
	tx.mu.Unlock()
	return nil
}

func (tx *fakeTransmitter) Receiver() contracts.Receiver {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.slot
}

func (tx *fakeTransmitter) Close() error {
	tx.mu.Lock()
	tx.closed = true
	tx.mu.Unlock()
	return nil
}

func (tx *fakeTransmitter) isClosed() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.closed
}

// deliver pushes bytes through the current slot the way a platform I/O
// thread would.
func (tx *fakeTransmitter) deliver(data []byte, timestampMicros int64) {
	if dest := tx.Receiver(); dest != nil {
		_ = dest.Deliver(data, timestampMicros)
	}
}

// captureReceiver records every delivery.
type captureReceiver struct {
	mu         sync.Mutex
	deliveries [][]byte
	timestamps []int64
	closed     bool
}

func (r *captureReceiver) Deliver(data []byte, timestampMicros int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	r.deliveries = append(r.deliveries, buf)
	r.timestamps = append(r.timestamps, timestampMicros)
	return nil
}

func (r *captureReceiver) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *captureReceiver) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *captureReceiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries)
}

func (r *captureReceiver) last() ([]byte, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.deliveries) == 0 {
		return nil, 0
	}
	return r.deliveries[len(r.deliveries)-1], r.timestamps[len(r.timestamps)-1]
}
