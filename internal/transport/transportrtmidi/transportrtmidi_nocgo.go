//go:build !cgo
// +build !cgo

package transportrtmidi

import (
	"fmt"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// Transport is the cgo-less stand-in so the package compiles everywhere.
type Transport struct{}

func New() (*Transport, error) {
	return &Transport{}, nil
}

func (t *Transport) Devices() ([]contracts.Device, error) {
	return nil, fmt.Errorf("rtmidi is not available without cgo")
}

func (t *Transport) Close() error { return nil }
