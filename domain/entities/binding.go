package entities

import (
	"fmt"
	"strings"
)

// ValueKind is the type of a binding parameter or result as seen by the host.
type ValueKind string

const (
	// KindUint64 is a non-negative 64-bit integer.
	KindUint64 ValueKind = "uint64"
	// KindString is an owned UTF-8 string.
	KindString ValueKind = "string"
)

// Valid reports whether k is a known kind.
func (k ValueKind) Valid() bool {
	switch k {
	case KindUint64, KindString:
		return true
	default:
		return false
	}
}

// Binding describes one callable exported to the host runtime.
// Bindings are registered once at module load and never mutated.
type Binding struct {
	// Name is the exported function name.
	Name string `json:"name"`

	// Params lists parameter kinds in call order.
	Params []ValueKind `json:"params"`

	// Result is the kind of the returned value.
	Result ValueKind `json:"result"`

	// Description is a short human-readable summary.
	Description string `json:"description,omitempty"`
}

// Arity returns the number of parameters the binding accepts.
func (b Binding) Arity() int {
	return len(b.Params)
}

// Signature renders the binding as name(p0, p1) -> result.
func (b Binding) Signature() string {
	params := make([]string, len(b.Params))
	for i, p := range b.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("%s(%s) -> %s", b.Name, strings.Join(params, ", "), b.Result)
}

// Validate checks that the binding is well-formed.
func (b Binding) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("binding name cannot be empty")
	}
	for i, p := range b.Params {
		if !p.Valid() {
			return fmt.Errorf("binding %q: parameter %d has unknown kind %q", b.Name, i, p)
		}
	}
	if !b.Result.Valid() {
		return fmt.Errorf("binding %q: result has unknown kind %q", b.Name, b.Result)
	}
	return nil
}
