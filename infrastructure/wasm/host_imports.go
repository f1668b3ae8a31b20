//go:build wasip1

// Package wasm provides infrastructure adapters that interface with the WASM host environment.
package wasm

// Define the host function signature for sum_as_string.
//
//go:wasmimport sumstring sum_as_string
//nolint:revive // intentional snake_case to match WASM import convention
func host_sum_as_string(requestPacked uint64) uint64
