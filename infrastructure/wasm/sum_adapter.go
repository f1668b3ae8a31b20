//go:build wasip1

package wasm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/sumstring/domain/ports"
	"github.com/reglet-dev/sumstring/internal/abi"
	"github.com/reglet-dev/sumstring/wireformat"
)

// Compile-time interface compliance check
var _ ports.Summer = (*SumAdapter)(nil)

// SumAdapter implements ports.Summer by calling the host's sum_as_string import.
// The overflow policy is decided by the host; local options are ignored.
type SumAdapter struct{}

// NewSumAdapter creates a new SumAdapter.
func NewSumAdapter(_ ...SumAdapterOption) *SumAdapter {
	return &SumAdapter{}
}

// SumAsString asks the host to add a and b.
func (a *SumAdapter) SumAsString(ctx context.Context, x, y uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reqData, err := json.Marshal(wireformat.SumRequestWire{A: x, B: y})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqPacked := abi.PtrFromBytes(reqData)
	defer abi.DeallocatePacked(reqPacked)

	resPacked := host_sum_as_string(reqPacked)

	resBytes := abi.BytesFromPtr(resPacked)
	if resBytes == nil {
		return "", fmt.Errorf("host returned null response")
	}
	defer abi.DeallocatePacked(resPacked)

	return wireformat.DecodeSumResponse(resBytes)
}
