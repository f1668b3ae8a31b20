package wasm

import "github.com/reglet-dev/sumstring/domain/policy"

// SumAdapterOption configures a SumAdapter.
type SumAdapterOption func(*sumAdapterConfig)

type sumAdapterConfig struct {
	overflow policy.OverflowPolicy
}

func defaultSumAdapterConfig() sumAdapterConfig {
	return sumAdapterConfig{overflow: policy.DefaultOverflowPolicy}
}

// WithLocalOverflowPolicy sets the overflow policy used when the adapter
// computes the sum in-process. Under wasip1 the host's policy applies instead.
func WithLocalOverflowPolicy(p policy.OverflowPolicy) SumAdapterOption {
	return func(c *sumAdapterConfig) {
		c.overflow = p
	}
}
