// Package wireformat defines the JSON wire format structures for communication
// between the WASM host and guest. These types must remain stable
// and backward compatible as they define the ABI contract.
package wireformat

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/sumstring/domain/entities"
	"github.com/reglet-dev/sumstring/domain/errors"
)

// ErrorDetail is the structured error carried inside typed responses.
type ErrorDetail = entities.ErrorDetail

// SumRequestWire is the JSON wire format for a sum_as_string call from Guest to Host.
// Both operands are required.
type SumRequestWire struct {
	A uint64 `json:"a"`
	B uint64 `json:"b"`
}

// SumResponseWire is the JSON wire format for a sum_as_string response from Host to Guest.
// Exactly one of Result or Error is set.
type SumResponseWire struct {
	Error  *ErrorDetail `json:"error,omitempty"`
	Result string       `json:"result,omitempty"`
}

// ErrorResponse is a transport-level error (bad payload, unknown function,
// recovered panic) returned instead of a typed response.
type ErrorResponse struct {
	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR", "INTERNAL_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code (e.g., 400, 500).
	Code int `json:"code"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// AsError converts the response into a Go error.
func (e ErrorResponse) AsError() error {
	return fmt.Errorf("host error %s (%d): %s", e.Error, e.Code, e.Message)
}

// ParseErrorResponse reports whether data is an ErrorResponse and returns it.
// Typed responses whose "error" field is an object are not ErrorResponses.
func ParseErrorResponse(data []byte) (ErrorResponse, bool) {
	var probe struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    int             `json:"code"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ErrorResponse{}, false
	}
	var kind string
	if len(probe.Error) == 0 || json.Unmarshal(probe.Error, &kind) != nil || kind == "" {
		return ErrorResponse{}, false
	}
	return ErrorResponse{Error: kind, Message: probe.Message, Code: probe.Code}, true
}

// DecodeSumResponse turns raw response bytes into the decimal result.
// Transport errors and domain errors (e.g. *errors.OverflowError) are returned
// as Go errors.
func DecodeSumResponse(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty response from host")
	}
	if errResp, ok := ParseErrorResponse(data); ok {
		return "", errResp.AsError()
	}

	var resp SumResponseWire
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", errors.FromErrorDetail(resp.Error)
	}
	if resp.Result == "" {
		return "", fmt.Errorf("host response has no result")
	}
	return resp.Result, nil
}
