package host

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reglet-dev/sumstring/config"
	"github.com/reglet-dev/sumstring/domain/errors"
	"github.com/reglet-dev/sumstring/hostfuncs"
	"github.com/reglet-dev/sumstring/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildExamplePlugin compiles examples/plugin as a wasip1 reactor.
// The test is skipped when no Go toolchain or module cache is usable.
func buildExamplePlugin(t *testing.T) []byte {
	t.Helper()
	if testing.Short() {
		t.Skip("building a wasip1 guest is slow; skipped with -short")
	}

	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found in PATH")
	}

	out := filepath.Join(t.TempDir(), "plugin.wasm")
	cmd := exec.Command(goBin, "build", "-buildmode=c-shared", "-o", out, "./examples/plugin")
	cmd.Dir = ".."
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm", "CGO_ENABLED=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		msg := string(output)
		for _, unavailable := range []string{"dial tcp", "missing go.sum entry", "GOFLAGS=-mod=mod", "unsupported GOOS/GOARCH"} {
			if strings.Contains(msg, unavailable) {
				t.Skipf("cannot build wasip1 guest here: %s", msg)
			}
		}
		t.Fatalf("failed to build examples/plugin: %v\n%s", err, msg)
	}

	wasm, err := os.ReadFile(out)
	require.NoError(t, err)
	return wasm
}

func TestExamplePlugin_OverflowPolicies(t *testing.T) {
	wasm := buildExamplePlugin(t)
	ctx := context.Background()

	tests := []struct {
		a, b uint64
		want string
	}{
		{0, 0, "0"},
		{2, 2, "4"},
		{math.MaxUint64, 0, "18446744073709551615"},
		{1 << 53, 1, "9007199254740993"},
	}

	overflow := map[string]string{
		"wrap":     "0",
		"saturate": "18446744073709551615",
	}

	for _, p := range []string{"error", "wrap", "saturate"} {
		t.Run(p, func(t *testing.T) {
			cfg := config.Default()
			cfg.OverflowPolicy = p
			m, err := NewModule(cfg, WithLogger(quietLogger()))
			require.NoError(t, err)

			e, err := NewExecutor(ctx, WithModule(m))
			require.NoError(t, err)
			defer e.Close(ctx)

			plugin, err := e.LoadPlugin(ctx, wasm)
			require.NoError(t, err)

			call := func(a, b uint64) (string, error) {
				payload, err := json.Marshal(hostfuncs.SumAsStringRequest{A: a, B: b})
				require.NoError(t, err)
				resp, err := plugin.Invoke(ctx, "sum", payload)
				require.NoError(t, err)
				return wireformat.DecodeSumResponse(resp)
			}

			for _, tt := range tests {
				got, err := call(tt.a, tt.b)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got, "sum_as_string(%d, %d)", tt.a, tt.b)
			}

			// repeated calls give identical answers
			first, _ := call(123, 456)
			second, _ := call(123, 456)
			assert.Equal(t, first, second)

			got, err := call(math.MaxUint64, 1)
			if want, ok := overflow[p]; ok {
				require.NoError(t, err)
				assert.Equal(t, want, got)
			} else {
				assert.ErrorIs(t, err, errors.ErrOverflow)
			}
		})
	}
}
