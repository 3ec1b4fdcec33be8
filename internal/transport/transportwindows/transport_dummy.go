//go:build !windows
// +build !windows

package transportwindows

import (
	"fmt"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// Transport is the non-Windows stand-in so the package compiles everywhere.
type Transport struct{}

func New(clientName string) (*Transport, error) {
	return &Transport{}, nil
}

func (t *Transport) Devices() ([]contracts.Device, error) {
	return nil, fmt.Errorf("winmm is not available on this platform")
}

func (t *Transport) Close() error { return nil }
