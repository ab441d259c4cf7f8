package funcs

import (
	"context"
	"log/slog"
)

// Middleware is a function that wraps a Handler to add cross-cutting
// behavior. Middleware executes in FIFO order (first registered wraps first,
// onion model).
type Middleware func(next Handler) Handler

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and
// converts them to structured ErrorResponse JSON instead of crashing the
// host process.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
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

// LoggingMiddleware returns a middleware that logs script calls through the
// given slog logger at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			funcName := "unknown"
			if cc, ok := ctx.(CallContext); ok {
				funcName = cc.FunctionName()
			}
			logger.Debug("script call", "function", funcName)
			resp, err := next(ctx, payload)
			if err != nil {
				logger.Warn("script call failed", "function", funcName, "error", err)
			}
			return resp, err
		}
	}
}
