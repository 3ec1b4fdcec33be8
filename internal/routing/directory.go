package routing

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// Directory enumerates the transport's endpoints and filters them by name
// substring and directional capability.
type Directory struct {
	transport contracts.Transport
	logger    contracts.Logger
}

func NewDirectory(transport contracts.Transport, logger contracts.Logger) *Directory {
	return &Directory{transport: transport, logger: logger}
}

// ListDevices returns an eager snapshot of all endpoints. Device topology can
// change between calls, and enumeration order is platform-defined.
func (d *Directory) ListDevices() ([]contracts.Device, error) {
	devices, err := d.transport.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI devices: %w", err)
	}
	return devices, nil
}

// FindInput returns the first endpoint whose display name contains name and
// that can transmit (a device a program receives from). The match is
// case-sensitive; no match yields ErrNotFound.
func (d *Directory) FindInput(name string) (contracts.Device, error) {
	return d.find(name, CanTransmit)
}

// FindOutput is FindInput for endpoints that can receive (a device a program
// sends to).
func (d *Directory) FindOutput(name string) (contracts.Device, error) {
	return d.find(name, CanReceive)
}

func (d *Directory) find(name string, capable func(contracts.Device) bool) (contracts.Device, error) {
	devices, err := d.transport.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI devices: %w", err)
	}
	for _, dev := range devices {
		if strings.Contains(dev.Name(), name) && capable(dev) {
			d.logger.Debug("MIDI device matched",
				d.logger.Field().String("query", name),
				d.logger.Field().String("device", dev.Name()))
			return dev, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", contracts.ErrNotFound, name)
}
