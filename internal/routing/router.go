package routing

import (
	"github.com/leandrodaf/midiroute/sdk/contracts"
	"go.uber.org/multierr"
)

// Router is the concrete routing layer over a single transport. It creates no
// goroutines of its own: inbound delivery happens on whatever thread the
// transport invokes receivers on.
type Router struct {
	transport contracts.Transport
	logger    contracts.Logger
	directory *Directory
	conns     *Connections
	registry  *Registry
}

func NewRouter(transport contracts.Transport, logger contracts.Logger) *Router {
	return &Router{
		transport: transport,
		logger:    logger,
		directory: NewDirectory(transport, logger),
		conns:     NewConnections(logger),
		registry:  NewRegistry(logger),
	}
}

func (r *Router) ListDevices() ([]contracts.Device, error) {
	return r.directory.ListDevices()
}

func (r *Router) FindInput(name string) (contracts.Device, error) {
	return r.directory.FindInput(name)
}

func (r *Router) FindOutput(name string) (contracts.Device, error) {
	return r.directory.FindOutput(name)
}

func (r *Router) Connect(from, to contracts.Device) (contracts.Connection, error) {
	return r.conns.Connect(from, to)
}

func (r *Router) Disconnect(tx contracts.Transmitter) {
	r.conns.Disconnect(tx)
}

func (r *Router) Send(to contracts.Device, msg any, timestampMicros int64) error {
	return r.conns.Send(to, msg, timestampMicros)
}

func (r *Router) AddReceiver(port contracts.Device, cb contracts.Callback) (contracts.Binding, error) {
	return r.registry.AddReceiver(port, cb)
}

func (r *Router) RemoveReceiver(b contracts.Binding) {
	r.registry.RemoveReceiver(b)
}

// Close tears down all callback bindings, the cached send handles and then
// the transport itself.
func (r *Router) Close() error {
	err := r.registry.Close()
	err = multierr.Append(err, r.conns.Close())
	return multierr.Append(err, r.transport.Close())
}
