package ports

import "context"

// Summer adds two unsigned integers and renders the sum as decimal text.
// The guest SDK calls the host through this port; off-wasm builds use an
// in-process adapter.
type Summer interface {
	// SumAsString returns the canonical base-10 representation of a+b.
	SumAsString(ctx context.Context, a, b uint64) (string, error)
}
