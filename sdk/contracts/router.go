package contracts

// Callback receives inbound wire bytes together with a millisecond timestamp
// (the transport's microsecond timestamp, integer-truncated). Callbacks run
// synchronously on the platform I/O thread: a slow callback stalls further
// inbound delivery on that endpoint.
type Callback func(data []byte, timestampMillis int64)

// Connection is a live directed edge from a transmitting endpoint to a
// receiving endpoint. Close severs it and is idempotent.
type Connection interface {
	ID() string
	Transmitter() Transmitter
	Close() error
}

// Binding is the opaque handle returned when a callback is registered. It
// must be passed back to RemoveReceiver to stop delivery.
type Binding interface {
	ID() string
}

// Router is the public surface of the routing layer.
type Router interface {
	// ListDevices returns a snapshot of all endpoints known to the transport.
	ListDevices() ([]Device, error)
	// FindInput returns the first endpoint whose name contains the given
	// substring and that can transmit. ErrNotFound when nothing matches.
	FindInput(name string) (Device, error)
	// FindOutput is FindInput for endpoints that can receive.
	FindOutput(name string) (Device, error)
	// Connect wires from's transmitter to to's receiver, replacing any prior
	// assignment on the transmitter.
	Connect(from, to Device) (Connection, error)
	// Disconnect clears the transmitter's receiver slot. Idempotent.
	Disconnect(tx Transmitter)
	// Send delivers a single message to the endpoint's receiver. msg may be
	// wire bytes ([]byte), a structured Message, or a NativeMessage.
	Send(to Device, msg any, timestampMicros int64) error
	// AddReceiver attaches a callback to the endpoint's transmitter as a
	// synthetic receiving endpoint.
	AddReceiver(port Device, cb Callback) (Binding, error)
	// RemoveReceiver tears down a binding. Unknown or already-removed
	// bindings are a silent no-op.
	RemoveReceiver(b Binding)
	// Close tears down all bindings and the transport.
	Close() error
}
