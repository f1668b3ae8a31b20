// Package wazero provides adapters for registering host functions with the wazero runtime.
//
// This package bridges the pure Go host function implementations in hostfuncs with
// the wazero WebAssembly runtime. It handles:
//
//   - Converting between packed i64 pointer+length format and byte slices
//   - Reading request data from guest memory
//   - Allocating and writing response data to guest memory
//   - Registering handlers with the wazero host module builder
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.ArithmeticBundle()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//
//	err = wazeroadapter.RegisterWithRuntime(ctx, runtime, registry,
//	    wazeroadapter.WithModuleName("sumstring"),
//	)
//
// Guests then declare the import as:
//
//	//go:wasmimport sumstring sum_as_string
//	func hostSumAsString(requestPacked uint64) uint64
package wazero
