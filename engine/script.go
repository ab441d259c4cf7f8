package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Script is an instantiated guest module. Its stdout is wired to the
// engine's output sink, so capture and redirection apply to guest prints
// as well as builtin output.
type Script struct {
	module api.Module
	engine *Engine
}

// Load instantiates a guest module. The module's host imports resolve
// against the function table registered at engine startup.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Script, error) {
	cfg := wazero.NewModuleConfig().
		WithStdout(e).
		WithStderr(errorWriter{engine: e})

	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		err = fmt.Errorf("failed to instantiate script: %w", err)
		e.reportError(err)
		return nil, err
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			err = fmt.Errorf("failed to call _initialize: %w", err)
			e.reportError(err)
			return nil, err
		}
	}

	return &Script{module: mod, engine: e}, nil
}

// Call invokes an exported guest function with an optional input buffer,
// using the packed pointer/length convention. The returned bytes are copied
// out of guest memory before the call returns.
func (s *Script) Call(ctx context.Context, name string, input []byte) ([]byte, error) {
	out, err := s.call(ctx, name, input)
	if err != nil {
		s.engine.reportError(err)
		return nil, err
	}
	return out, nil
}

func (s *Script) call(ctx context.Context, name string, input []byte) ([]byte, error) {
	f := s.module.ExportedFunction(name)
	if f == nil {
		return nil, fmt.Errorf("export %q not found", name)
	}

	var results []uint64
	var err error

	if len(input) == 0 {
		results, err = f.Call(ctx)
	} else {
		allocate := s.module.ExportedFunction("allocate")
		if allocate == nil {
			return nil, fmt.Errorf("guest does not export 'allocate'")
		}
		resAlloc, errAlloc := allocate.Call(ctx, uint64(len(input)))
		if errAlloc != nil {
			return nil, fmt.Errorf("failed to allocate in guest: %w", errAlloc)
		}
		if len(resAlloc) == 0 {
			return nil, fmt.Errorf("allocate returned no results")
		}
		ptr := uint32(resAlloc[0])
		if !s.module.Memory().Write(ptr, input) {
			return nil, fmt.Errorf("failed to write input to guest memory")
		}
		results, err = f.Call(ctx, uint64(ptr), uint64(len(input)))
	}

	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	packed := results[0]
	ptr := uint32(packed >> 32)
	length := uint32(packed)
	if ptr == 0 || length == 0 {
		return nil, nil
	}
	data, ok := s.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from guest memory")
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

// errorWriter routes guest stderr through the engine's error reporting.
type errorWriter struct {
	engine *Engine
}

func (w errorWriter) Write(p []byte) (int, error) {
	w.engine.reportError(fmt.Errorf("%s", p))
	return len(p), nil
}
