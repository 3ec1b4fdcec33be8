package routing

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/leandrodaf/midiroute/sdk/contracts"
	"go.uber.org/multierr"
)

// Registry binds caller-supplied callbacks to live ports. Each registration
// creates a synthetic receiving endpoint wired into the port's transmitter
// slot and returns an opaque binding handle; the handle, not the callback
// value, identifies the registration on removal.
type Registry struct {
	logger   contracts.Logger
	mu       sync.Mutex
	bindings map[string]*binding
}

func NewRegistry(logger contracts.Logger) *Registry {
	return &Registry{
		logger:   logger,
		bindings: make(map[string]*binding),
	}
}

type binding struct {
	id   string
	tx   contracts.Transmitter
	recv *callbackReceiver
}

func (b *binding) ID() string { return b.id }

// callbackReceiver adapts a plain function to the receiver capability. It
// converts the transport's microsecond timestamps to milliseconds
// (integer-truncating) and copies inbound bytes so the callback never aliases
// a transport buffer.
type callbackReceiver struct {
	cb     contracts.Callback
	closed atomic.Bool
}

func (r *callbackReceiver) Deliver(data []byte, timestampMicros int64) error {
	if r.closed.Load() {
		return nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	r.cb(buf, timestampMicros/1000)
	return nil
}

// Close is idempotent. A delivery already dispatched before Close may still
// invoke the callback once; there is no ordering guarantee with in-flight
// deliveries.
func (r *callbackReceiver) Close() error {
	r.closed.Store(true)
	return nil
}

// AddReceiver coerces port to a transmitter, wires a synthetic receiver for
// cb into its slot and records the binding.
func (r *Registry) AddReceiver(port contracts.Device, cb contracts.Callback) (contracts.Binding, error) {
	if cb == nil {
		return nil, errors.New("nil receiver callback")
	}
	tx, err := AsTransmitter(port)
	if err != nil {
		return nil, err
	}
	recv := &callbackReceiver{cb: cb}
	if err := tx.SetReceiver(recv); err != nil {
		_ = tx.Close()
		return nil, err
	}

	b := &binding{id: uuid.NewString(), tx: tx, recv: recv}
	r.mu.Lock()
	r.bindings[b.id] = b
	r.mu.Unlock()

	r.logger.Debug("receiver callback registered",
		r.logger.Field().String("bindingID", b.id),
		r.logger.Field().String("port", port.Name()))
	return b, nil
}

// RemoveReceiver tears down the binding: the synthetic receiver is closed,
// the transmitter slot cleared and the handle released. Removal stops future
// deliveries only. Unknown or already-removed bindings are deliberately a
// silent no-op, since a caller may race removal against shutdown.
func (r *Registry) RemoveReceiver(bd contracts.Binding) {
	if bd == nil {
		return
	}
	r.mu.Lock()
	b, ok := r.bindings[bd.ID()]
	if ok {
		delete(r.bindings, bd.ID())
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	r.teardown(b)
}

// Close tears down every live binding, aggregating teardown errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	drained := make([]*binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		drained = append(drained, b)
	}
	r.bindings = make(map[string]*binding)
	r.mu.Unlock()

	var err error
	for _, b := range drained {
		err = multierr.Append(err, r.teardown(b))
	}
	return err
}

func (r *Registry) teardown(b *binding) error {
	_ = b.recv.Close()
	// The slot may already belong to a newer binding or connection on the same
	// transmitter handle. Only the binding whose receiver still occupies it may
	// clear the slot and release the handle.
	if b.tx.Receiver() != contracts.Receiver(b.recv) {
		r.logger.Debug("receiver callback removed",
			r.logger.Field().String("bindingID", b.id))
		return nil
	}
	_ = b.tx.SetReceiver(nil)
	if err := b.tx.Close(); err != nil {
		r.logger.Error("closing transmitter handle",
			r.logger.Field().String("bindingID", b.id),
			r.logger.Field().Error("error", err))
		return err
	}
	r.logger.Debug("receiver callback removed",
		r.logger.Field().String("bindingID", b.id))
	return nil
}
