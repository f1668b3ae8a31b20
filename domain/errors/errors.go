// Package errors provides domain-specific error types for the binding.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strconv"

	"github.com/reglet-dev/sumstring/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Error types and codes carried on the wire.
const (
	TypeOverflow = "overflow"
	TypeConfig   = "config"
	TypeInternal = "internal"

	CodeSumOverflow = "SUM_OVERFLOW"
)

// ErrOverflow is the sentinel matched by every OverflowError.
var ErrOverflow = stdErrors.New("unsigned integer overflow")

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    TypeInternal,
	}
}

// FromErrorDetail maps a wire ErrorDetail back to the matching Go error type.
// Unknown types are returned as the ErrorDetail itself.
func FromErrorDetail(d *entities.ErrorDetail) error {
	if d == nil {
		return nil
	}
	if d.Type == TypeOverflow {
		oe := &OverflowError{}
		if d.Details != nil {
			oe.A = detailUint(d.Details["a"])
			oe.B = detailUint(d.Details["b"])
		}
		return oe
	}
	return d
}

// detailUint accepts the shapes a uint64 takes after a JSON round trip.
func detailUint(v any) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case float64:
		return uint64(n)
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0
		}
		return u
	default:
		return 0
	}
}

// OverflowError reports that a+b does not fit in 64 bits.
type OverflowError struct {
	A uint64
	B uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("sum of %d and %d overflows uint64", e.A, e.B)
}

// Is reports whether target is ErrOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// ToErrorDetail implements DetailedError.
// Operands travel as decimal strings so they survive float64 JSON decoding.
func (e *OverflowError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(TypeOverflow, e.Error()).
		WithCode(CodeSumOverflow).
		WithDetails(map[string]any{
			"a": strconv.FormatUint(e.A, 10),
			"b": strconv.FormatUint(e.B, 10),
		})
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: TypeConfig, Code: e.Field}
}
