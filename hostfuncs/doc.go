// Package hostfuncs provides pure Go implementations of host function logic.
// These implementations have NO WASM runtime dependencies (no wazero/wasmtime).
// They can be used by any WASM host, and host.Module.Call invokes them
// in-process through the same middleware chain a guest call takes.
package hostfuncs
