package midiroute

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midiroute/internal/transport/transportdarwin"
	"github.com/leandrodaf/midiroute/internal/transport/transportrtmidi"
	"github.com/leandrodaf/midiroute/internal/transport/transportwindows"
	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// ErrUnsupportedOS is returned when no platform transport exists for the
// current operating system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// transportInitializers maps OS names to platform transport constructors.
var transportInitializers = map[string]func(*contracts.ClientOptions) (contracts.Transport, error){
	"darwin": func(opts *contracts.ClientOptions) (contracts.Transport, error) {
		return transportdarwin.New(opts.ClientName)
	},
	"windows": func(opts *contracts.ClientOptions) (contracts.Transport, error) {
		return transportwindows.New(opts.ClientName)
	},
	"linux": func(opts *contracts.ClientOptions) (contracts.Transport, error) {
		return transportrtmidi.New()
	},
}

// newPlatformTransport initializes the MIDI transport for the current
// operating system, returning ErrUnsupportedOS when there is none.
func newPlatformTransport(opts *contracts.ClientOptions) (contracts.Transport, error) {
	if initializer, exists := transportInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
