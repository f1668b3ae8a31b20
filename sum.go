package sumstring

import (
	"context"

	"github.com/reglet-dev/sumstring/domain/ports"
	"github.com/reglet-dev/sumstring/infrastructure/wasm"
)

// Option configures a single SumAsString call.
type Option func(*sumConfig)

type sumConfig struct {
	summer ports.Summer
}

// WithSummer replaces the adapter that performs the call.
// This is useful for injecting mocks during testing.
func WithSummer(s ports.Summer) Option {
	return func(c *sumConfig) {
		if s != nil {
			c.summer = s
		}
	}
}

var defaultSummer ports.Summer = wasm.NewSumAdapter()

// SumAsString returns the decimal string form of a+b.
//
// With the default overflow policy a sum above math.MaxUint64 fails with an
// error matching errors.ErrOverflow from the domain/errors package.
func SumAsString(ctx context.Context, a, b uint64, opts ...Option) (string, error) {
	cfg := sumConfig{summer: defaultSummer}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.summer.SumAsString(ctx, a, b)
}
