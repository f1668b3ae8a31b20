package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil // Return JSON error, not Go error
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs host function invocations
// to logger. Every call gets a fresh invocation id, stored in the HostContext
// and attached to each record. A nil logger uses slog.Default().
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			l := logger
			if l == nil {
				l = slog.Default()
			}

			id := uuid.NewString()
			if hc, ok := ctx.(HostContext); ok {
				hc.SetValue(invocationIDKey{}, id)
			}
			l = l.With("function", functionName(ctx), "invocation_id", id)

			l.DebugContext(ctx, "invoking host function", "request_bytes", len(payload))
			start := time.Now()
			resp, err := next(ctx, payload)
			elapsed := time.Since(start)

			switch {
			case err != nil:
				l.ErrorContext(ctx, "host function failed", "error", err, "duration", elapsed)
			default:
				if errResp, isErr := ParseErrorResponse(resp); isErr {
					l.WarnContext(ctx, "host function returned error response",
						"error_type", errResp.Error, "message", errResp.Message, "duration", elapsed)
				} else {
					l.DebugContext(ctx, "host function completed", "response_bytes", len(resp), "duration", elapsed)
				}
			}
			return resp, err
		}
	}
}
