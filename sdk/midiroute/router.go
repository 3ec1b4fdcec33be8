package midiroute

import (
	"github.com/leandrodaf/midiroute/internal/routing"
	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// NewRouter creates a routing layer over a MIDI transport. Defaults are
// applied for anything the options leave unset, and unless WithTransport
// injects one, the transport is chosen for the current operating system.
//
// opts ...contracts.Option: A variadic list of option functions to customize
// the router configuration.
//
// Returns:
//   - contracts.Router: The routing layer.
//   - error: An error, if any occurred during setup.
func NewRouter(opts ...contracts.Option) (contracts.Router, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	transport := options.Transport
	if transport == nil {
		transport, err = newPlatformTransport(&options)
		if err != nil {
			return nil, err
		}
	}

	return routing.NewRouter(transport, options.Logger), nil
}
