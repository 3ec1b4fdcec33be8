//go:build !darwin
// +build !darwin

package transportdarwin

import (
	"fmt"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// Transport is the non-darwin stand-in so the package compiles everywhere.
type Transport struct{}

func New(clientName string) (*Transport, error) {
	return &Transport{}, nil
}

func (t *Transport) Devices() ([]contracts.Device, error) {
	return nil, fmt.Errorf("CoreMIDI is not available on this platform")
}

func (t *Transport) Close() error { return nil }
