package midiroute

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/leandrodaf/midiroute/internal/logger"
	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// envDefaults are the environment-driven fallbacks for options the caller
// does not set explicitly.
type envDefaults struct {
	ClientName string `env:"MIDIROUTE_CLIENT_NAME" envDefault:"midiroute"`
	LogLevel   int    `env:"MIDIROUTE_LOG_LEVEL" envDefault:"0"`
}

// applyDefaultOptions sets default values for ClientOptions if not explicitly
// provided. Environment values seed the struct before the option functions
// run, so an explicit option always wins even when it carries a zero value
// (InfoLevel).
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	defaults := envDefaults{}
	if err := env.Parse(&defaults); err != nil {
		return contracts.ClientOptions{}, fmt.Errorf("reading environment defaults: %w", err)
	}

	options := &contracts.ClientOptions{
		LogLevel:   contracts.LogLevel(defaults.LogLevel),
		ClientName: defaults.ClientName,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.ClientName == "" {
		options.ClientName = defaults.ClientName
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
