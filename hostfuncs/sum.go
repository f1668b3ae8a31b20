package hostfuncs

import (
	"context"
	"strconv"

	"github.com/reglet-dev/sumstring/domain/entities"
	"github.com/reglet-dev/sumstring/domain/errors"
	"github.com/reglet-dev/sumstring/domain/policy"
	"github.com/reglet-dev/sumstring/wireformat"
)

// SumAsStringName is the exported name of the sum binding.
const SumAsStringName = "sum_as_string"

// SumAsStringRequest contains the two operands.
type SumAsStringRequest = wireformat.SumRequestWire

// SumAsStringResponse carries either the decimal sum or an error.
type SumAsStringResponse = wireformat.SumResponseWire

// SumAsStringBinding returns the binding record for sum_as_string.
func SumAsStringBinding() entities.Binding {
	return entities.Binding{
		Name:        SumAsStringName,
		Params:      []entities.ValueKind{entities.KindUint64, entities.KindUint64},
		Result:      entities.KindString,
		Description: "Adds two unsigned integers and returns the sum as a base-10 string.",
	}
}

// SumOption is a functional option for configuring sum behavior.
type SumOption func(*sumConfig)

type sumConfig struct {
	overflow policy.OverflowPolicy
}

func defaultSumConfig() sumConfig {
	return sumConfig{
		overflow: policy.DefaultOverflowPolicy,
	}
}

// WithOverflowPolicy sets how overflowing sums are handled.
func WithOverflowPolicy(p policy.OverflowPolicy) SumOption {
	return func(c *sumConfig) {
		c.overflow = p
	}
}

// SumAsString adds a and b under policy p and returns the canonical decimal
// form of the result: no sign, no separators, no leading zeros except "0".
func SumAsString(a, b uint64, p policy.OverflowPolicy) (string, error) {
	sum, err := p.Add(a, b)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(sum, 10), nil
}

// PerformSumAsString is the host-function form of SumAsString.
// Failures are reported in the response rather than as a Go error.
func PerformSumAsString(ctx context.Context, req SumAsStringRequest, opts ...SumOption) SumAsStringResponse {
	cfg := defaultSumConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	result, err := SumAsString(req.A, req.B, cfg.overflow)
	if err != nil {
		return SumAsStringResponse{Error: errors.ToErrorDetail(err)}
	}
	return SumAsStringResponse{Result: result}
}
