// Package routing implements device discovery, endpoint wiring and the
// callback registry over an abstract MIDI transport.
package routing

import (
	"fmt"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// CanTransmit reports whether the device can source MIDI data. The platform
// reports a maximum handle count per direction: zero means unsupported and a
// negative sentinel means unlimited, so any nonzero count grants the
// capability.
func CanTransmit(d contracts.Device) bool {
	return d.MaxTransmitters() != 0
}

// CanReceive reports whether the device can accept MIDI data.
func CanReceive(d contracts.Device) bool {
	return d.MaxReceivers() != 0
}

// AsTransmitter coerces the device to a transmitter handle.
func AsTransmitter(d contracts.Device) (contracts.Transmitter, error) {
	if !CanTransmit(d) {
		return nil, fmt.Errorf("%w: %q cannot transmit", contracts.ErrUnsupportedDirection, d.Name())
	}
	return d.Transmitter()
}

// AsReceiver coerces the device to a receiver handle.
func AsReceiver(d contracts.Device) (contracts.Receiver, error) {
	if !CanReceive(d) {
		return nil, fmt.Errorf("%w: %q cannot receive", contracts.ErrUnsupportedDirection, d.Name())
	}
	return d.Receiver()
}
