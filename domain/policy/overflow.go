// Package policy decides how unsigned addition behaves when the result does
// not fit in 64 bits.
package policy

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/reglet-dev/sumstring/domain/errors"
)

// OverflowPolicy selects the behavior of Add on overflow.
type OverflowPolicy string

const (
	// OverflowError surfaces an *errors.OverflowError to the caller.
	OverflowError OverflowPolicy = "error"
	// OverflowWrap wraps around modulo 2^64.
	OverflowWrap OverflowPolicy = "wrap"
	// OverflowSaturate clamps the result at math.MaxUint64.
	OverflowSaturate OverflowPolicy = "saturate"
)

// DefaultOverflowPolicy is used when no policy is configured.
const DefaultOverflowPolicy = OverflowError

// Policies lists every supported policy in a stable order.
func Policies() []OverflowPolicy {
	return []OverflowPolicy{OverflowError, OverflowWrap, OverflowSaturate}
}

// ParseOverflowPolicy converts a config string to an OverflowPolicy.
// The empty string maps to DefaultOverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	if s == "" {
		return DefaultOverflowPolicy, nil
	}

	known := Policies()
	names := make([]string, 0, len(known))
	for _, p := range known {
		if string(p) == s {
			return p, nil
		}
		names = append(names, string(p))
	}
	return "", fmt.Errorf("unknown overflow policy %q (want one of %s)", s, strings.Join(names, ", "))
}

// Add returns a+b under policy p. An unknown policy behaves like OverflowError.
func (p OverflowPolicy) Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry == 0 {
		return sum, nil
	}

	switch p {
	case OverflowWrap:
		return sum, nil
	case OverflowSaturate:
		return math.MaxUint64, nil
	default:
		return 0, &errors.OverflowError{A: a, B: b}
	}
}
