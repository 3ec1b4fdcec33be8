//go:build cgo
// +build cgo

// Package transportrtmidi adapts the gomidi rtmidi driver to the transport
// contract. It is the portable backend used where no first-party platform
// adapter exists.
package transportrtmidi

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/midiroute/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Transport wraps an rtmidi driver instance.
type Transport struct {
	driver *rtmididrv.Driver
}

func New() (*Transport, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("creating rtmidi driver: %w", err)
	}
	return &Transport{driver: driver}, nil
}

// Devices enumerates input ports (transmit-only endpoints) followed by output
// ports (receive-only endpoints).
func (t *Transport) Devices() ([]contracts.Device, error) {
	ins, err := t.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	outs, err := t.driver.Outs()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI outputs: %w", err)
	}

	devices := make([]contracts.Device, 0, len(ins)+len(outs))
	for _, in := range ins {
		devices = append(devices, &inputDevice{in: in})
	}
	for _, out := range outs {
		devices = append(devices, &outputDevice{out: out})
	}
	return devices, nil
}

func (t *Transport) Close() error {
	return t.driver.Close()
}

// inputDevice is an rtmidi input port, which can only transmit.
type inputDevice struct {
	in drivers.In
}

func (d *inputDevice) Name() string { return d.in.String() }

func (d *inputDevice) MaxTransmitters() int { return 1 }

func (d *inputDevice) MaxReceivers() int { return 0 }

func (d *inputDevice) Transmitter() (contracts.Transmitter, error) {
	return &inputTransmitter{in: d.in}, nil
}

func (d *inputDevice) Receiver() (contracts.Receiver, error) {
	return nil, fmt.Errorf("%w: MIDI input %q cannot receive", contracts.ErrUnsupportedDirection, d.in.String())
}

// inputTransmitter listens on the port while a receiver occupies the slot.
// rtmidi invokes the listener on its own thread; deliveries run synchronously
// on it.
type inputTransmitter struct {
	in drivers.In

	mu   sync.Mutex
	slot contracts.Receiver
	stop func()
}

func (x *inputTransmitter) SetReceiver(r contracts.Receiver) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.stop != nil {
		x.stop()
		x.stop = nil
	}
	x.slot = r
	if r == nil {
		return nil
	}

	stop, err := midi.ListenTo(x.in, func(msg midi.Message, timestampms int32) {
		x.mu.Lock()
		dest := x.slot
		x.mu.Unlock()
		if dest == nil {
			return
		}
		// rtmidi reports milliseconds; the transport contract is micros.
		_ = dest.Deliver([]byte(msg), int64(timestampms)*1000)
	})
	if err != nil {
		x.slot = nil
		return fmt.Errorf("listening on %q: %w", x.in.String(), err)
	}
	x.stop = stop
	return nil
}

func (x *inputTransmitter) Receiver() contracts.Receiver {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.slot
}

func (x *inputTransmitter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.stop != nil {
		x.stop()
		x.stop = nil
	}
	x.slot = nil
	return nil
}

// outputDevice is an rtmidi output port, which can only receive.
type outputDevice struct {
	out drivers.Out
}

func (d *outputDevice) Name() string { return d.out.String() }

func (d *outputDevice) MaxTransmitters() int { return 0 }

func (d *outputDevice) MaxReceivers() int { return 1 }

func (d *outputDevice) Transmitter() (contracts.Transmitter, error) {
	return nil, fmt.Errorf("%w: MIDI output %q cannot transmit", contracts.ErrUnsupportedDirection, d.out.String())
}

func (d *outputDevice) Receiver() (contracts.Receiver, error) {
	send, err := midi.SendTo(d.out)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI output %q: %w", d.out.String(), err)
	}
	return &outputReceiver{out: d.out, send: send}, nil
}

type outputReceiver struct {
	out  drivers.Out
	send func(midi.Message) error
}

// Deliver sends the bytes immediately. rtmidi does not schedule, so the
// timestamp is ignored.
func (r *outputReceiver) Deliver(data []byte, timestampMicros int64) error {
	if err := r.send(midi.Message(data)); err != nil {
		return fmt.Errorf("sending to %q: %w", r.out.String(), err)
	}
	return nil
}

func (r *outputReceiver) Close() error {
	return r.out.Close()
}
