package routing

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/leandrodaf/midiroute/internal/codec"
	"github.com/leandrodaf/midiroute/sdk/contracts"
	"go.uber.org/multierr"
)

// Connections wires transmitting endpoints to receiving endpoints and
// performs ad-hoc sends of individual messages.
type Connections struct {
	logger contracts.Logger

	mu    sync.Mutex
	sends map[string]contracts.Receiver
}

func NewConnections(logger contracts.Logger) *Connections {
	return &Connections{
		logger: logger,
		sends:  make(map[string]contracts.Receiver),
	}
}

type connection struct {
	id        string
	tx        contracts.Transmitter
	closeOnce sync.Once
}

func (c *connection) ID() string { return c.id }

func (c *connection) Transmitter() contracts.Transmitter { return c.tx }

// Close severs the connection by clearing the transmitter's receiver slot.
// Idempotent.
func (c *connection) Close() error {
	c.closeOnce.Do(func() {
		_ = c.tx.SetReceiver(nil)
	})
	return nil
}

// Connect coerces from to a transmitter and to to a receiver, then assigns
// the receiver into the transmitter's single slot. Any prior assignment is
// replaced; the displaced receiver is not notified.
func (m *Connections) Connect(from, to contracts.Device) (contracts.Connection, error) {
	tx, err := AsTransmitter(from)
	if err != nil {
		return nil, err
	}
	rx, err := AsReceiver(to)
	if err != nil {
		_ = tx.Close()
		return nil, err
	}
	if err := tx.SetReceiver(rx); err != nil {
		_ = tx.Close()
		return nil, fmt.Errorf("wiring %q to %q: %w", from.Name(), to.Name(), err)
	}

	conn := &connection{id: uuid.NewString(), tx: tx}
	m.logger.Info("MIDI endpoints connected",
		m.logger.Field().String("connectionID", conn.id),
		m.logger.Field().String("from", from.Name()),
		m.logger.Field().String("to", to.Name()))
	return conn, nil
}

// Disconnect clears the transmitter's receiver slot unconditionally. Safe to
// call on a transmitter with no active connection.
func (m *Connections) Disconnect(tx contracts.Transmitter) {
	if tx == nil {
		return
	}
	_ = tx.SetReceiver(nil)
}

// Send normalizes msg to wire bytes and delivers it to the endpoint's
// receiver with the given timestamp (microseconds, TimestampNow for
// immediate). Transport failures are surfaced unchanged, never retried.
func (m *Connections) Send(to contracts.Device, msg any, timestampMicros int64) error {
	wire, err := codec.Normalize(msg)
	if err != nil {
		return err
	}
	rx, err := m.sendReceiver(to)
	if err != nil {
		return err
	}
	if err := rx.Deliver(wire, timestampMicros); err != nil {
		return fmt.Errorf("delivering to %q: %w", to.Name(), err)
	}
	return nil
}

// sendReceiver returns the cached delivery handle for the device, coercing one
// on first use. Platform receiver handles own OS resources (winmm opens the
// device, CoreMIDI creates an output port), so Send must not coerce a fresh
// handle per call.
func (m *Connections) sendReceiver(to contracts.Device) (contracts.Receiver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rx, ok := m.sends[to.Name()]; ok {
		return rx, nil
	}
	rx, err := AsReceiver(to)
	if err != nil {
		return nil, err
	}
	m.sends[to.Name()] = rx
	return rx, nil
}

// Close releases the delivery handles coerced by Send, aggregating errors.
func (m *Connections) Close() error {
	m.mu.Lock()
	drained := make([]contracts.Receiver, 0, len(m.sends))
	for _, rx := range m.sends {
		drained = append(drained, rx)
	}
	m.sends = make(map[string]contracts.Receiver)
	m.mu.Unlock()

	var err error
	for _, rx := range drained {
		err = multierr.Append(err, rx.Close())
	}
	return err
}
