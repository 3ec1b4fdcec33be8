package contracts

// ClientOptions defines the configuration options for the router.
type ClientOptions struct {
	Logger     Logger    // Logger for routing events and errors.
	LogLevel   LogLevel  // Level of logging to use.
	ClientName string    // Name the platform transport registers under.
	Transport  Transport // Explicit transport; defaults to the platform one.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the router.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the router.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithClientName sets the name the platform transport registers under.
func WithClientName(name string) Option {
	return func(opts *ClientOptions) {
		opts.ClientName = name
	}
}

// WithTransport injects a specific transport instead of the platform default.
// Useful for virtual wiring and tests.
func WithTransport(t Transport) Option {
	return func(opts *ClientOptions) {
		opts.Transport = t
	}
}
