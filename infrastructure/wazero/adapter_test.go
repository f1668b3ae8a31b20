package wazero

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"testing"

	"github.com/reglet-dev/sumstring/hostfuncs"
	"github.com/reglet-dev/sumstring/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := defaultAdapterConfig()

	assert.Equal(t, "sumstring", cfg.ModuleName)
	assert.Equal(t, uint32(hostfuncs.DefaultMaxRequestSize), cfg.MaxRequestSize)
	assert.Nil(t, cfg.Logger)
}

func TestAdapterOptions(t *testing.T) {
	cfg := defaultAdapterConfig()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	WithModuleName("custom_module")(&cfg)
	WithMaxRequestSize(2048)(&cfg)
	WithLogger(logger)(&cfg)

	assert.Equal(t, "custom_module", cfg.ModuleName)
	assert.Equal(t, uint32(2048), cfg.MaxRequestSize)
	assert.Same(t, logger, cfg.Logger)
}

func TestPackUnpackPtrLen(t *testing.T) {
	tests := []struct {
		ptr    uint32
		length uint32
	}{
		{0, 0},
		{1, 1},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{0x12345678, 0x9ABCDEF0},
		{100, 50},
	}

	for _, tt := range tests {
		packed := packPtrLen(tt.ptr, tt.length)
		gotPtr, gotLen := unpackPtrLen(packed)

		assert.Equal(t, tt.ptr, gotPtr, "ptr of %x", packed)
		assert.Equal(t, tt.length, gotLen, "len of %x", packed)
	}
}

// guestHarness wires a registry into a fresh runtime and instantiates the test guest.
type guestHarness struct {
	ctx    context.Context
	guest  api.Module
	logBuf *bytes.Buffer
}

func newGuestHarness(t *testing.T, registry *hostfuncs.HandlerRegistry, guestOpts []testutil.GuestOption, opts ...AdapterOption) *guestHarness {
	t.Helper()

	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() {
		require.NoError(t, r.Close(ctx))
	})

	logBuf := &bytes.Buffer{}
	opts = append([]AdapterOption{WithLogger(slog.New(slog.NewTextHandler(logBuf, nil)))}, opts...)
	require.NoError(t, RegisterWithRuntime(ctx, r, registry, opts...))

	guest, err := r.Instantiate(ctx, testutil.GuestModule(DefaultModuleName, guestOpts...))
	require.NoError(t, err)

	return &guestHarness{ctx: ctx, guest: guest, logBuf: logBuf}
}

// call writes payload at the guest heap base and runs the forwarding export.
func (h *guestHarness) call(t *testing.T, payload []byte) uint64 {
	t.Helper()

	const ptr = 64 // below the bump allocator's base, so responses never overlap
	require.True(t, h.guest.Memory().Write(ptr, payload))

	results, err := h.guest.ExportedFunction(testutil.GuestCallExport).Call(h.ctx, ptr, uint64(len(payload)))
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func sumRegistry(t *testing.T, opts ...hostfuncs.SumOption) *hostfuncs.HandlerRegistry {
	t.Helper()
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
		hostfuncs.WithBundle(hostfuncs.ArithmeticBundle(opts...)),
	)
	require.NoError(t, err)
	return reg
}

func TestRegisterWithRuntime_SumAsString(t *testing.T) {
	h := newGuestHarness(t, sumRegistry(t), nil)

	tests := []struct {
		name string
		a, b uint64
		want string
	}{
		{"zero", 0, 0, "0"},
		{"two plus two", 2, 2, "4"},
		{"max plus zero", math.MaxUint64, 0, "18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := h.call(t, testutil.MustJSON(t, hostfuncs.SumAsStringRequest{A: tt.a, B: tt.b}))

			ptr, _ := unpackPtrLen(packed)
			assert.GreaterOrEqual(t, ptr, uint32(testutil.GuestHeapBase), "response must live in allocator memory")

			raw, err := ReadPacked(h.guest, packed)
			require.NoError(t, err)

			var resp hostfuncs.SumAsStringResponse
			require.NoError(t, json.Unmarshal(raw, &resp))
			assert.Nil(t, resp.Error)
			assert.Equal(t, tt.want, resp.Result)
		})
	}
}

func TestRegisterWithRuntime_Overflow(t *testing.T) {
	h := newGuestHarness(t, sumRegistry(t), nil)

	packed := h.call(t, testutil.MustJSON(t, hostfuncs.SumAsStringRequest{A: math.MaxUint64, B: 1}))
	raw, err := ReadPacked(h.guest, packed)
	require.NoError(t, err)

	var resp hostfuncs.SumAsStringResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "overflow", resp.Error.Type)
	assert.Equal(t, "SUM_OVERFLOW", resp.Error.Code)
}

func TestRegisterWithRuntime_RequestTooLarge(t *testing.T) {
	h := newGuestHarness(t, sumRegistry(t), nil, WithMaxRequestSize(8))

	packed := h.call(t, testutil.MustJSON(t, hostfuncs.SumAsStringRequest{A: 1, B: 2}))
	raw, err := ReadPacked(h.guest, packed)
	require.NoError(t, err)

	errResp, ok := hostfuncs.ParseErrorResponse(raw)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
	assert.Contains(t, errResp.Message, "exceeds maximum 8 bytes")
	assert.Contains(t, h.logBuf.String(), "exceeds maximum")
}

func TestRegisterWithRuntime_OutOfBoundsRequest(t *testing.T) {
	h := newGuestHarness(t, sumRegistry(t), nil)

	// One page is 64KiB; this range ends past it.
	results, err := h.guest.ExportedFunction(testutil.GuestCallExport).Call(h.ctx, 65530, 100)
	require.NoError(t, err)

	raw, err := ReadPacked(h.guest, results[0])
	require.NoError(t, err)
	errResp, ok := hostfuncs.ParseErrorResponse(raw)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", errResp.Error)
}

func TestRegisterWithRuntime_MissingAllocate(t *testing.T) {
	h := newGuestHarness(t, sumRegistry(t), []testutil.GuestOption{testutil.WithoutAllocate()})

	packed := h.call(t, testutil.MustJSON(t, hostfuncs.SumAsStringRequest{A: 1, B: 2}))
	assert.Equal(t, uint64(0), packed)
	assert.Contains(t, h.logBuf.String(), "missing 'allocate' export")

	_, err := ReadPacked(h.guest, packed)
	require.Error(t, err)
}

func TestRegisterWithRuntime_ExportsOnlyRegistryHandlers(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	require.NoError(t, RegisterWithRuntime(ctx, r, sumRegistry(t)))

	hostMod := r.Module(DefaultModuleName)
	require.NotNil(t, hostMod)

	defs := hostMod.ExportedFunctionDefinitions()
	require.Len(t, defs, 1)
	def, ok := defs[hostfuncs.SumAsStringName]
	require.True(t, ok)
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, def.ParamTypes())
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, def.ResultTypes())
}

func TestRegisterWithRuntime_UnknownImportFailsToLink(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	require.NoError(t, RegisterWithRuntime(ctx, r, sumRegistry(t)))

	_, err := r.Instantiate(ctx, testutil.GuestModule(DefaultModuleName, testutil.WithImportName("product_as_string")))
	require.Error(t, err)
}

func TestRegisterWithRuntime_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty registry", func(t *testing.T) {
		r := wazero.NewRuntime(ctx)
		defer r.Close(ctx)

		empty, err := hostfuncs.NewRegistry()
		require.NoError(t, err)
		err = RegisterWithRuntime(ctx, r, empty)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no handlers")
	})

	t.Run("empty module name", func(t *testing.T) {
		r := wazero.NewRuntime(ctx)
		defer r.Close(ctx)

		err := RegisterWithRuntime(ctx, r, sumRegistry(t), WithModuleName(""))
		require.Error(t, err)
	})

	t.Run("module registered twice", func(t *testing.T) {
		r := wazero.NewRuntime(ctx)
		defer r.Close(ctx)

		require.NoError(t, RegisterWithRuntime(ctx, r, sumRegistry(t)))
		err := RegisterWithRuntime(ctx, r, sumRegistry(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to instantiate host module")
	})
}
