package contracts

// Unlimited is the capability count a platform reports when it imposes no
// limit on transmitter or receiver handles for a device.
const Unlimited = -1

// Device is an opaque handle to a platform MIDI endpoint. The platform owns
// the underlying handle; this layer never copies or persists it beyond a
// lookup result. A zero capability count means the direction is unsupported;
// Unlimited (or any other nonzero count) means it is available.
type Device interface {
	Name() string
	MaxTransmitters() int
	MaxReceivers() int
	Transmitter() (Transmitter, error)
	Receiver() (Receiver, error)
}

// Transmitter is a device handle that sources MIDI data. It holds a single
// receiver slot: assigning a new receiver silently replaces the previous one,
// and the displaced receiver is not notified.
type Transmitter interface {
	// SetReceiver assigns the receiver slot. A nil receiver clears it.
	SetReceiver(Receiver) error
	// Receiver returns the current slot contents, nil when unwired.
	Receiver() Receiver
	Close() error
}

// Receiver is a device handle that accepts MIDI data. Timestamps are
// microseconds since a platform-defined origin; TimestampNow means deliver
// immediately.
type Receiver interface {
	Deliver(data []byte, timestampMicros int64) error
	Close() error
}

// Transport enumerates the platform's MIDI devices. Enumeration is an eager
// snapshot: device topology can change between calls, and enumeration order
// is platform-defined.
type Transport interface {
	Devices() ([]Device, error)
	Close() error
}
