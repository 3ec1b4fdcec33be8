//go:build darwin
// +build darwin

// Package transportdarwin adapts CoreMIDI to the transport contract.
package transportdarwin

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midiroute/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// portConnection is the disconnectable handle CoreMIDI hands back when an
// input port is connected to a source.
type portConnection interface {
	Disconnect()
}

// Transport wraps a CoreMIDI client.
type Transport struct {
	client coremidi.Client
}

func New(clientName string) (*Transport, error) {
	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client: %w", err)
	}
	return &Transport{client: client}, nil
}

// Devices enumerates CoreMIDI sources (transmit-only endpoints) followed by
// destinations (receive-only endpoints).
func (t *Transport) Devices() ([]contracts.Device, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("listing CoreMIDI sources: %w", err)
	}
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("listing CoreMIDI destinations: %w", err)
	}

	devices := make([]contracts.Device, 0, len(sources)+len(destinations))
	for _, source := range sources {
		devices = append(devices, &sourceDevice{transport: t, source: source})
	}
	for _, destination := range destinations {
		devices = append(devices, &destinationDevice{transport: t, destination: destination})
	}
	return devices, nil
}

// Close is a no-op: CoreMIDI clients are disposed with the process.
func (t *Transport) Close() error { return nil }

// sourceDevice is a CoreMIDI source, which can only transmit.
type sourceDevice struct {
	transport *Transport
	source    coremidi.Source
}

func (d *sourceDevice) Name() string { return d.source.Name() }

func (d *sourceDevice) MaxTransmitters() int { return 1 }

func (d *sourceDevice) MaxReceivers() int { return 0 }

func (d *sourceDevice) Transmitter() (contracts.Transmitter, error) {
	return &sourceTransmitter{transport: d.transport, source: d.source}, nil
}

func (d *sourceDevice) Receiver() (contracts.Receiver, error) {
	return nil, fmt.Errorf("%w: CoreMIDI source %q cannot receive", contracts.ErrUnsupportedDirection, d.source.Name())
}

// sourceTransmitter binds an input port to the source while a receiver
// occupies the slot. CoreMIDI invokes the packet handler on its own I/O
// thread; deliveries run synchronously on it.
type sourceTransmitter struct {
	transport *Transport
	source    coremidi.Source

	mu   sync.Mutex
	slot contracts.Receiver
	conn portConnection
}

func (x *sourceTransmitter) SetReceiver(r contracts.Receiver) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.conn != nil {
		x.conn.Disconnect()
		x.conn = nil
	}
	x.slot = r
	if r == nil {
		return nil
	}

	port, err := coremidi.NewInputPort(x.transport.client, "midiroute input", x.handlePacket)
	if err != nil {
		x.slot = nil
		return fmt.Errorf("creating CoreMIDI input port: %w", err)
	}
	conn, err := port.Connect(x.source)
	if err != nil {
		x.slot = nil
		return fmt.Errorf("connecting to CoreMIDI source %q: %w", x.source.Name(), err)
	}
	x.conn = conn
	return nil
}

func (x *sourceTransmitter) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	x.mu.Lock()
	dest := x.slot
	x.mu.Unlock()
	if dest == nil {
		return
	}
	_ = dest.Deliver(packet.Data, time.Now().UnixMicro())
}

func (x *sourceTransmitter) Receiver() contracts.Receiver {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.slot
}

func (x *sourceTransmitter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		x.conn.Disconnect()
		x.conn = nil
	}
	x.slot = nil
	return nil
}

// destinationDevice is a CoreMIDI destination, which can only receive.
type destinationDevice struct {
	transport   *Transport
	destination coremidi.Destination
}

func (d *destinationDevice) Name() string { return d.destination.Name() }

func (d *destinationDevice) MaxTransmitters() int { return 0 }

func (d *destinationDevice) MaxReceivers() int { return 1 }

func (d *destinationDevice) Transmitter() (contracts.Transmitter, error) {
	return nil, fmt.Errorf("%w: CoreMIDI destination %q cannot transmit", contracts.ErrUnsupportedDirection, d.destination.Name())
}

func (d *destinationDevice) Receiver() (contracts.Receiver, error) {
	port, err := coremidi.NewOutputPort(d.transport.client, "midiroute output")
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI output port: %w", err)
	}
	return &destinationReceiver{destination: d.destination, port: port}, nil
}

type destinationReceiver struct {
	destination coremidi.Destination
	port        coremidi.OutputPort
}

// Deliver sends the bytes as a single packet. CoreMIDI interprets a zero
// timestamp as "now", which is how TimestampNow is mapped.
func (r *destinationReceiver) Deliver(data []byte, timestampMicros int64) error {
	var ts uint64
	if timestampMicros > 0 {
		ts = uint64(timestampMicros)
	}
	packet := coremidi.NewPacket(data, ts)
	if err := packet.Send(&r.port, &r.destination); err != nil {
		return fmt.Errorf("sending CoreMIDI packet to %q: %w", r.destination.Name(), err)
	}
	return nil
}

// Close is a no-op: output ports are disposed with the client.
func (r *destinationReceiver) Close() error { return nil }
