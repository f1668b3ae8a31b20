//go:build !wasip1

// Package wasm provides infrastructure adapters that interface with the WASM host environment.
// Outside wasip1 builds the adapters compute results in-process.
package wasm

import (
	"context"
	"strconv"

	"github.com/reglet-dev/sumstring/domain/ports"
)

// Compile-time interface compliance check
var _ ports.Summer = (*SumAdapter)(nil)

// SumAdapter implements ports.Summer in-process for non-WASM builds.
type SumAdapter struct {
	cfg sumAdapterConfig
}

// NewSumAdapter creates a new SumAdapter.
func NewSumAdapter(opts ...SumAdapterOption) *SumAdapter {
	cfg := defaultSumAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SumAdapter{cfg: cfg}
}

// SumAsString adds x and y under the configured overflow policy.
func (a *SumAdapter) SumAsString(ctx context.Context, x, y uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum, err := a.cfg.overflow.Add(x, y)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(sum, 10), nil
}
