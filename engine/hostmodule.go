package engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tetratelabs/wazero/api"

	"github.com/phptoro/bridge-sdk/wireformat"
)

// HostModuleName is the import namespace guests use to reach the function
// table.
const HostModuleName = "toro_host"

// registerHostFunctions exports every function-table entry to the guest,
// plus the mandatory log_message import. Arguments and results travel as
// packed pointer/length pairs in guest linear memory; the guest allocates
// response buffers through its exported allocate function.
func (e *Engine) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(HostModuleName)

	for _, name := range e.registry.Names() {
		localName := name
		builder.NewFunctionBuilder().
			WithFunc(func(ctx context.Context, m api.Module, packed uint64) uint64 {
				ptr := uint32(packed >> 32)
				length := uint32(packed)
				payload, ok := m.Memory().Read(ptr, length)
				if !ok {
					return 0
				}
				resp, err := e.registry.Invoke(ctx, localName, payload)
				if err != nil {
					e.reportError(err)
					return 0
				}

				allocate := m.ExportedFunction("allocate")
				if allocate == nil {
					return 0
				}
				results, err := allocate.Call(ctx, uint64(len(resp)))
				if err != nil || len(results) == 0 {
					return 0
				}
				respPtr := uint32(results[0])
				if !m.Memory().Write(respPtr, resp) {
					return 0
				}
				return (uint64(respPtr) << 32) | uint64(len(resp))
			}).
			Export(name)
	}

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, packed uint64) {
			ptr := uint32(packed >> 32)
			length := uint32(packed)
			payload, ok := m.Memory().Read(ptr, length)
			if !ok {
				return
			}

			var msg wireformat.LogMessageWire
			if err := json.Unmarshal(payload, &msg); err != nil {
				e.logger.Info("guest log (raw)", "payload", string(payload))
				return
			}
			e.logger.Log(ctx, guestLevel(msg.Level), "guest log", "msg", msg.Message)
		}).
		Export("log_message")

	_, err := builder.Instantiate(ctx)
	return err
}

func guestLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
