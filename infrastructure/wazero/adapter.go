package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/sumstring/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the host module guests import from.
const DefaultModuleName = "sumstring"

// AllocateExport is the guest export used to reserve response memory.
const AllocateExport = "allocate"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives ABI failures. Defaults to slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "sumstring").
	ModuleName string

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "sumstring").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithLogger sets the logger used for ABI failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// RegisterWithRuntime registers all handlers from a HandlerRegistry with a wazero runtime.
// This creates a host module with the configured name (default: "sumstring") and
// exports every handler in the registry, and nothing else.
//
// Each handler is wrapped to:
//   - Read request bytes from guest memory using the packed i64 ptr+len format
//   - Invoke the ByteHandler with the request payload
//   - Allocate response memory in the guest using the "allocate" export
//   - Write response bytes to guest memory
//   - Return packed i64 ptr+len of the response
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ModuleName == "" {
		return fmt.Errorf("host module name cannot be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	names := registry.Names()
	if len(names) == 0 {
		return fmt.Errorf("host module %q: registry has no handlers", cfg.ModuleName)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	for _, name := range names {
		funcName := name
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = handleRegistryCall(ctx, mod, stack[0], registry, funcName, cfg)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			WithName(funcName).
			Export(funcName)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

// handleRegistryCall reads the request from guest memory, invokes the handler,
// and writes the response. It returns the packed response location.
func handleRegistryCall(ctx context.Context, mod api.Module, packed uint64, registry *hostfuncs.HandlerRegistry, name string, cfg AdapterConfig) uint64 {
	log := cfg.Logger.With("function", name, "guest", mod.Name())
	ptr, length := unpackPtrLen(packed)

	if length > cfg.MaxRequestSize {
		errMsg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, cfg.MaxRequestSize)
		log.ErrorContext(ctx, "wazero: "+errMsg)
		return writeErrorResponse(ctx, log, mod, hostfuncs.NewValidationError(errMsg))
	}

	mem := mod.Memory()
	if mem == nil {
		log.ErrorContext(ctx, "wazero: guest module exports no memory")
		return 0
	}

	requestBytes, ok := mem.Read(ptr, length)
	if !ok {
		errMsg := "failed to read request from guest memory"
		log.ErrorContext(ctx, "wazero: "+errMsg, "ptr", ptr, "length", length)
		return writeErrorResponse(ctx, log, mod, hostfuncs.NewInternalError(errMsg))
	}

	responseBytes, err := registry.Invoke(ctx, name, requestBytes)
	if err != nil {
		log.ErrorContext(ctx, "wazero: handler invocation failed", "error", err)
		return writeErrorResponse(ctx, log, mod, hostfuncs.NewInternalError(err.Error()))
	}

	return writeResponse(ctx, log, mod, responseBytes)
}

// writeResponse allocates memory in the guest and writes the response bytes.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, log *slog.Logger, mod api.Module, data []byte) uint64 {
	allocateFn := mod.ExportedFunction(AllocateExport)
	if allocateFn == nil {
		log.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		log.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	if len(results) == 0 {
		log.ErrorContext(ctx, "wazero: guest allocate returned no results")
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		log.ErrorContext(ctx, "wazero: failed to write response to guest memory", "ptr", ptr, "length", len(data))
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by guest memory
}

func writeErrorResponse(ctx context.Context, log *slog.Logger, mod api.Module, errResp hostfuncs.ErrorResponse) uint64 {
	return writeResponse(ctx, log, mod, errResp.ToJSON())
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}

// ReadPacked copies the bytes a packed ptr+len refers to out of mod's memory.
func ReadPacked(mod api.Module, packed uint64) ([]byte, error) {
	ptr, length := unpackPtrLen(packed)
	if ptr == 0 && length == 0 {
		return nil, fmt.Errorf("null response from guest")
	}
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("guest module exports no memory")
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("packed range ptr=%d len=%d is outside guest memory", ptr, length)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
