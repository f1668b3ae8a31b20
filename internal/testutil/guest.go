// Package testutil provides common test utilities for host-side tests,
// including a hand-assembled guest module that imports sum_as_string.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// GuestHeapBase is the first address the guest's bump allocator hands out.
const GuestHeapBase = 1024

// GuestCallExport is the guest export that forwards (ptr, len) to the host import.
const GuestCallExport = "call_sum"

// GuestLiveAllocationsExport reports allocations the guest still holds.
const GuestLiveAllocationsExport = "live_allocations"

// GuestOption configures GuestModule.
type GuestOption func(*guestConfig)

type guestConfig struct {
	importName string
	allocate   bool
}

// WithoutAllocate omits the "allocate" export so the host cannot write responses.
func WithoutAllocate() GuestOption {
	return func(c *guestConfig) {
		c.allocate = false
	}
}

// WithImportName changes the imported function name (default "sum_as_string").
func WithImportName(name string) GuestOption {
	return func(c *guestConfig) {
		c.importName = name
	}
}

// GuestModule returns the binary of a minimal guest that:
//
//   - imports moduleName.sum_as_string as (i64) -> i64
//   - exports one page of memory as "memory"
//   - exports a bump allocator "allocate" (i32) -> i32 starting at GuestHeapBase
//   - exports "deallocate" (ptr i32, len i32) which only updates the live count
//   - exports "live_allocations" () -> i32, the number of allocations not yet
//     passed to deallocate
//   - exports "call_sum" (ptr i32, len i32) -> i64 that packs ptr<<32|len,
//     calls the host import, frees its input and returns the host's result
func GuestModule(moduleName string, opts ...GuestOption) []byte {
	cfg := guestConfig{importName: "sum_as_string", allocate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	module := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}

	appendSection := func(sectionID byte, payload []byte) {
		module = append(module, sectionID)
		module = append(module, encodeULEB128(uint32(len(payload)))...)
		module = append(module, payload...)
	}

	// Type section:
	// 0: (i64) -> i64
	// 1: (i32) -> i32
	// 2: (i32, i32) -> i64
	// 3: (i32, i32) -> ()
	// 4: () -> i32
	appendSection(0x01, []byte{
		0x05,
		0x60, 0x01, 0x7e, 0x01, 0x7e,
		0x60, 0x01, 0x7f, 0x01, 0x7f,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7e,
		0x60, 0x02, 0x7f, 0x7f, 0x00,
		0x60, 0x00, 0x01, 0x7f,
	})

	// Import section: func 0 = moduleName.importName, type 0
	imports := []byte{0x01}
	imports = append(imports, encodeName(moduleName)...)
	imports = append(imports, encodeName(cfg.importName)...)
	imports = append(imports, 0x00, 0x00)
	appendSection(0x02, imports)

	// Function section: allocate is func 1, call_sum func 2, deallocate
	// func 3, live_allocations func 4
	appendSection(0x03, []byte{0x04, 0x01, 0x02, 0x03, 0x04})

	// Memory section: one memory, min 1 page
	appendSection(0x05, []byte{0x01, 0x00, 0x01})

	// Global section: 0 is the mutable heap pointer (GuestHeapBase),
	// 1 is the mutable live allocation count (0)
	globals := []byte{0x02, 0x7f, 0x01, 0x41}
	globals = append(globals, encodeSLEB128(GuestHeapBase)...)
	globals = append(globals, 0x0b)
	globals = append(globals, 0x7f, 0x01, 0x41, 0x00, 0x0b)
	appendSection(0x06, globals)

	// Export section
	type export struct {
		name  string
		kind  byte
		index byte
	}
	exports := []export{
		{"memory", 0x02, 0},
		{GuestCallExport, 0x00, 2},
		{GuestLiveAllocationsExport, 0x00, 4},
	}
	if cfg.allocate {
		exports = append(exports,
			export{"allocate", 0x00, 1},
			export{"deallocate", 0x00, 3},
		)
	}
	exportPayload := encodeULEB128(uint32(len(exports)))
	for _, e := range exports {
		exportPayload = append(exportPayload, encodeName(e.name)...)
		exportPayload = append(exportPayload, e.kind, e.index)
	}
	appendSection(0x07, exportPayload)

	// allocate: return the heap pointer, advance it by size, count one
	// live allocation.
	allocateBody := []byte{
		0x00,
		0x23, 0x00,
		0x23, 0x00, 0x20, 0x00, 0x6a, 0x24, 0x00,
		0x23, 0x01, 0x41, 0x01, 0x6a, 0x24, 0x01,
		0x0b,
	}

	// call_sum: one i64 local holds the host result while the input is freed.
	callBody := []byte{
		0x01, 0x01, 0x7e,
		0x20, 0x00, 0xad, 0x42, 0x20, 0x86,
		0x20, 0x01, 0xad, 0x84,
		0x10, 0x00,
		0x21, 0x02,
		0x20, 0x00, 0x20, 0x01, 0x10, 0x03,
		0x20, 0x02,
		0x0b,
	}

	// deallocate: memory is never reused, only the live count drops.
	deallocateBody := []byte{
		0x00,
		0x23, 0x01, 0x41, 0x01, 0x6b, 0x24, 0x01,
		0x0b,
	}

	liveBody := []byte{
		0x00,
		0x23, 0x01,
		0x0b,
	}

	bodies := [][]byte{allocateBody, callBody, deallocateBody, liveBody}
	code := encodeULEB128(uint32(len(bodies)))
	for _, body := range bodies {
		code = append(code, encodeULEB128(uint32(len(body)))...)
		code = append(code, body...)
	}
	appendSection(0x0a, code)

	return module
}

// MustJSON marshals v or fails the test.
func MustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func encodeName(s string) []byte {
	out := encodeULEB128(uint32(len(s)))
	return append(out, s...)
}

func encodeULEB128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func encodeSLEB128(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
