package hostfuncs

import (
	"context"
	"fmt"

	"github.com/reglet-dev/sumstring/domain/entities"
)

// HostFuncBundle is a pre-configured set of related host functions.
// Bundles allow registering multiple handlers at once.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

// DescribedBundle is a bundle that also publishes a binding record for each handler.
type DescribedBundle interface {
	HostFuncBundle

	// Bindings returns one record per handler name.
	Bindings() []entities.Binding
}

type staticBundle struct {
	handlers map[string]ByteHandler
	bindings []entities.Binding
}

func (b *staticBundle) Handlers() map[string]ByteHandler {
	return b.handlers
}

func (b *staticBundle) Bindings() []entities.Binding {
	return b.bindings
}

// ArithmeticBundle returns a bundle with the arithmetic host functions:
// sum_as_string.
func ArithmeticBundle(opts ...SumOption) DescribedBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			SumAsStringName: NewJSONHandler(func(ctx context.Context, req SumAsStringRequest) SumAsStringResponse {
				return PerformSumAsString(ctx, req, opts...)
			}),
		},
		bindings: []entities.Binding{SumAsStringBinding()},
	}
}

// WithBundle registers all handlers from a bundle. When the bundle is a
// DescribedBundle its binding records are registered too, and every record
// must name a handler the bundle provides.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		handlers := bundle.Handlers()
		described := map[string]bool{}

		if db, ok := bundle.(DescribedBundle); ok {
			for _, binding := range db.Bindings() {
				handler, found := handlers[binding.Name]
				if !found {
					b.errors = append(b.errors, fmt.Errorf("binding %q has no handler in bundle", binding.Name))
					continue
				}
				if err := b.addBinding(binding, handler); err != nil {
					b.errors = append(b.errors, err)
				}
				described[binding.Name] = true
			}
		}

		for name, handler := range handlers {
			if described[name] {
				continue
			}
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithHandler registers a typed host function with automatic JSON handling.
// The handler will be wrapped with NewJSONHandler for JSON serialization.
func WithHandler[Req any, Resp any](name string, fn HostFunc[Req, Resp]) RegistryOption {
	return func(b *registryBuilder) {
		handler := NewJSONHandler(fn)
		if err := b.addHandler(name, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}
