package host

import (
	"context"
	"fmt"

	wazeroadapter "github.com/reglet-dev/sumstring/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor owns a wazero runtime with the sum_as_string module registered.
type Executor struct {
	runtime       wazero.Runtime
	runtimeConfig wazero.RuntimeConfig
	module        *Module
}

// NewExecutor creates a runtime, instantiates WASI preview1 and registers
// the host module.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.module == nil {
		m, err := DefaultModule()
		if err != nil {
			return nil, fmt.Errorf("failed to create default module: %w", err)
		}
		e.module = m
	}

	var rt wazero.Runtime
	if e.runtimeConfig != nil {
		rt = wazero.NewRuntimeWithConfig(ctx, e.runtimeConfig)
	} else {
		rt = wazero.NewRuntime(ctx)
	}
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if err := e.module.Register(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	e.runtime = rt
	return e, nil
}

// Module returns the registered host module.
func (e *Executor) Module() *Module {
	return e.module
}

// Close releases resources held by the executor, including loaded plugins.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// PluginInstance represents an instantiated guest module.
type PluginInstance struct {
	module api.Module
}

// LoadPlugin instantiates a guest module. Its imports from the host module
// are resolved at this point; an unknown import fails the load.
func (e *Executor) LoadPlugin(ctx context.Context, wasmBytes []byte) (*PluginInstance, error) {
	mod, err := e.runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	// Reactor modules built for wasip1 need _initialize before any export.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &PluginInstance{module: mod}, nil
}

// deallocateExport is the guest export that frees a buffer from "allocate".
const deallocateExport = "deallocate"

// Invoke copies payload into guest memory, calls export(ptr, len) and returns
// a copy of the bytes the packed result points to. The export owns its input
// buffer; the returned buffer is freed through the guest's "deallocate" export
// once it has been copied.
func (p *PluginInstance) Invoke(ctx context.Context, export string, payload []byte) ([]byte, error) {
	f := p.module.ExportedFunction(export)
	if f == nil {
		return nil, fmt.Errorf("export %q not found", export)
	}

	allocate := p.module.ExportedFunction(wazeroadapter.AllocateExport)
	if allocate == nil {
		return nil, fmt.Errorf("guest does not export '%s'", wazeroadapter.AllocateExport)
	}
	resAlloc, err := allocate.Call(ctx, uint64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(resAlloc) == 0 {
		return nil, fmt.Errorf("allocate returned no results")
	}

	mem := p.module.Memory()
	if mem == nil {
		return nil, fmt.Errorf("guest module exports no memory")
	}
	ptr := uint32(resAlloc[0]) //nolint:gosec // G115: guest pointers are 32-bit
	if !mem.Write(ptr, payload) {
		return nil, fmt.Errorf("failed to write input to guest memory")
	}

	results, err := f.Call(ctx, uint64(ptr), uint64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("call %q: %w", export, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("export %q returned no results", export)
	}

	resp, err := wazeroadapter.ReadPacked(p.module, results[0])
	if err != nil {
		return nil, err
	}
	p.release(ctx, results[0])
	return resp, nil
}

// release hands a returned buffer back to the guest allocator. Guests
// without a "deallocate" export manage their own memory.
func (p *PluginInstance) release(ctx context.Context, packed uint64) {
	deallocate := p.module.ExportedFunction(deallocateExport)
	if deallocate == nil {
		return
	}
	ptr, length := uint32(packed>>32), uint32(packed) //nolint:gosec // G115: packed format stores 32-bit values
	_, _ = deallocate.Call(ctx, uint64(ptr), uint64(length))
}

// Close closes the guest module.
func (p *PluginInstance) Close(ctx context.Context) error {
	return p.module.Close(ctx)
}
