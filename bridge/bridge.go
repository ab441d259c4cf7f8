// Package bridge is the command path between guest scripts and the
// embedding application: one registered native callback, reachable from
// script code as the builtin function "invoke".
//
// The bridge is prepared before the engine starts and is immutable
// afterwards. That ordering is the whole concurrency story: the callback
// slot is written once at construction, strictly before any script call
// that could read it, so dispatch needs no locking.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/settings"
	"github.com/phptoro/bridge-sdk/wireformat"
)

// EmptyParams is the effective argument payload when a script omits the
// second invoke argument or passes an empty string.
const EmptyParams = "{}"

// NativeCallback is the single host capability entry point. The command
// selects a host operation by name; argsPayload is an opaque serialized
// argument bag (conventionally JSON) interpreted entirely by the callback.
//
// A nil Response means "command failed" and is a valid outcome, not an
// error. A non-nil Response transfers ownership of its buffer to the
// bridge, which copies and releases it.
//
// The call is synchronous and blocking: the script thread suspends until
// the callback returns. There is no timeout and no cancellation; a callback
// that never returns stalls the running script indefinitely.
type NativeCallback func(command string, argsPayload string) *Response

// Bridge holds the prepared callback and the configuration defaults the
// engine applies at startup. Construct it with Prepare; the zero value and
// the nil pointer both behave as "bridge not initialised".
type Bridge struct {
	callback NativeCallback
	defaults []settings.Setting
	logger   *slog.Logger
}

// Option configures a Bridge during Prepare.
type Option func(*Bridge)

// WithDefaults appends configuration entries applied after the stock
// defaults during engine startup. Later entries override earlier ones.
func WithDefaults(extra ...settings.Setting) Option {
	return func(b *Bridge) {
		b.defaults = append(b.defaults, extra...)
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Prepare builds the bridge the engine consults at startup. It must run
// before engine.New: there is no way to attach a bridge to a running
// engine, and preparing one afterwards has no effect on engines already
// started (caller error).
//
// Preparing twice with the same callback yields equivalent bridges; the
// engine only ever reads the one it was constructed with.
func Prepare(callback NativeCallback, opts ...Option) *Bridge {
	b := &Bridge{
		callback: callback,
		defaults: settings.Defaults(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Defaults returns the configuration entries the engine applies at startup,
// in apply order.
func (b *Bridge) Defaults() []settings.Setting {
	if b == nil {
		return settings.Defaults()
	}
	out := make([]settings.Setting, len(b.defaults))
	copy(out, b.defaults)
	return out
}

// Invoke dispatches one command to the native callback and returns the
// result string. The bool is the single success sentinel: false means "no
// result available", covering both a missing callback and a callback that
// declined the command. Callers that need the reason must consult the logs.
//
// The callback is invoked at most once per call; retries are the script's
// responsibility.
func (b *Bridge) Invoke(command, argsPayload string) (string, bool) {
	if b == nil || b.callback == nil {
		logger := slog.Default()
		if b != nil && b.logger != nil {
			logger = b.logger
		}
		logger.Warn("invoke: bridge not initialised", "command", command)
		return "", false
	}

	payload := argsPayload
	if payload == "" {
		payload = EmptyParams
	}

	resp := b.callback(command, payload)
	if resp == nil {
		// Valid "command failed" outcome, not worth a warning.
		return "", false
	}
	return resp.take(), true
}

// Handler returns the script-facing envelope handler registered in the
// function table as the builtin "invoke". A missing command is an
// argument-arity error raised before dispatch; the callback is not invoked.
func (b *Bridge) Handler() funcs.Handler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req wireformat.InvokeRequestWire
		if err := json.Unmarshal(payload, &req); err != nil {
			return funcs.NewValidationError("invoke: malformed request: " + err.Error()).ToJSON(), nil
		}
		if err := ValidateRequest(&req); err != nil {
			return funcs.NewValidationError("invoke: " + err.Error()).ToJSON(), nil
		}

		result, ok := b.Invoke(req.Command, req.Params)

		resp := wireformat.InvokeResponseWire{OK: ok, Result: result}
		out, err := json.Marshal(resp)
		if err != nil {
			return funcs.NewInternalError("invoke: failed to marshal response: " + err.Error()).ToJSON(), nil
		}
		return out, nil
	}
}
