// Package host exposes sum_as_string to WebAssembly guests.
//
// A Module is the host-side function table: it holds exactly one callable,
// sum_as_string, and registers it into a wazero runtime as a host module that
// guests import from (by default "sumstring"). An Executor owns a runtime
// with the module registered and loads guest modules that call it.
package host
