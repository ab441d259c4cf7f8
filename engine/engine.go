// Package engine hosts the embedded script runtime: a wazero sandbox whose
// guests call back into the application through the function table. The
// embedding contract is strictly ordered: prepare the bridge, construct the
// engine, optionally install the info-page override, then run scripts.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/phptoro/bridge-sdk/bridge"
	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/infopage"
	hostlog "github.com/phptoro/bridge-sdk/log"
	"github.com/phptoro/bridge-sdk/schema"
	"github.com/phptoro/bridge-sdk/settings"
	"github.com/phptoro/bridge-sdk/wireformat"
)

// Version of the engine, reported on the introspection page.
const Version = "0.1.0"

// Engine manages the runtime lifecycle and the single output sink guests
// and builtins write to. It executes on one goroutine at a time (the
// cooperative model of the embedding host); none of its state is locked.
type Engine struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	registry *funcs.Registry
	bridge   *bridge.Bridge
	table    *settings.Table
	logger   *slog.Logger
	sources  RequestSources
	cliMode  bool

	// out is the current output sink. CaptureOutput swaps it for a buffer
	// and restores it on every exit path; everything that prints goes
	// through Engine.Write so redirection takes effect immediately.
	out           io.Writer
	bufSize       int
	implicitFlush bool
	displayErrors bool
	logErrors     bool
	htmlErrors    bool
}

// New constructs the engine: settings are applied (bridge defaults first,
// then per-option overrides), the function table is built with the engine
// builtins, and the host module is instantiated so guests can import every
// table entry. The bridge must already be prepared; it cannot be attached
// afterwards.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		bridge:  cfg.bridge,
		out:     cfg.out,
		logger:  cfg.logger,
		sources: cfg.sources,
		cliMode: cfg.cliMode,
	}
	if e.logger == nil {
		e.logger = slog.New(hostlog.NewHandler(os.Stderr))
	}
	if e.sources.Env == nil {
		e.sources.Env = environMap()
	}

	e.table = settings.NewTable(e.bridge.Defaults(), cfg.overrides)
	e.bufSize = e.table.Int("output_buffering", 4096)
	e.implicitFlush = e.table.Bool("implicit_flush")
	e.displayErrors = e.table.Bool("display_errors")
	e.logErrors = e.table.Bool("log_errors")
	e.htmlErrors = e.table.Bool("html_errors")

	regOpts := append([]funcs.RegistryOption{
		funcs.WithBuiltin("invoke", e.bridge.Handler()),
		funcs.WithBuiltin(infopage.FunctionName, e.infoHandler()),
		funcs.WithBuiltin("request_vars", e.requestVarsHandler()),
	}, cfg.registryOpts...)

	reg, err := funcs.NewRegistry(regOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build function table: %w", err)
	}
	e.registry = reg

	rc := wazero.NewRuntimeConfig()
	if e.table.Bool(e.cacheKey()) {
		e.cache = wazero.NewCompilationCache()
		rc = rc.WithCompilationCache(e.cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Close releases resources held by the engine.
func (e *Engine) Close(ctx context.Context) error {
	if err := e.runtime.Close(ctx); err != nil {
		return err
	}
	if e.cache != nil {
		return e.cache.Close(ctx)
	}
	return nil
}

// Functions returns the engine's function table. The override mechanism
// operates on this table after startup.
func (e *Engine) Functions() *funcs.Registry {
	return e.registry
}

// Settings returns the applied configuration table.
func (e *Engine) Settings() *settings.Table {
	return e.table
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Write sends p to the current output sink, honoring implicit_flush.
// Engine satisfies io.Writer so guest stdout and builtins share one sink.
func (e *Engine) Write(p []byte) (int, error) {
	n, err := e.out.Write(p)
	if err == nil && e.implicitFlush {
		if f, ok := e.out.(interface{ Flush() error }); ok {
			if ferr := f.Flush(); ferr != nil {
				return n, ferr
			}
		}
	}
	return n, err
}

// CaptureOutput runs fn with the output sink swapped for an in-memory
// buffer sized by output_buffering and returns everything fn wrote. The
// real sink is restored on every exit path, including panics; leaving the
// engine in a captured state would silently swallow all later output.
//
// The swap is unsynchronized on purpose: the engine runs single-threaded,
// and capture is only ever entered from a handler already executing on the
// engine's goroutine.
func (e *Engine) CaptureOutput(fn func() error) (_ []byte, err error) {
	prev := e.out
	buf := &bytes.Buffer{}
	buf.Grow(e.bufSize)
	e.out = buf
	defer func() { e.out = prev }()

	if err := fn(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// reportError routes a script-level error according to the display_errors
// and log_errors settings. html_errors picks the display format.
func (e *Engine) reportError(err error) {
	if err == nil {
		return
	}
	if e.displayErrors {
		if e.htmlErrors {
			fmt.Fprintf(e, "<br />\n<b>Error</b>: %s<br />\n", err)
		} else {
			fmt.Fprintf(e, "Error: %s\n", err)
		}
	}
	if e.logErrors {
		e.logger.Error("script error", "error", err)
	}
}

func (e *Engine) cacheKey() string {
	if e.cliMode {
		return "cache.enable_cli"
	}
	return "cache.enable"
}

func (e *Engine) mode() string {
	if e.cliMode {
		return "command-line"
	}
	return "embedded"
}

// infoHandler renders the stock introspection page to the output sink.
// The wire response only signals success; the page itself is output.
func (e *Engine) infoHandler() funcs.Handler {
	return func(ctx context.Context, _ []byte) ([]byte, error) {
		if err := infopage.Render(e, e.snapshot()); err != nil {
			return nil, err
		}
		return json.Marshal(wireformat.InfoResponseWire{OK: true})
	}
}

func (e *Engine) snapshot() infopage.Snapshot {
	snap := infopage.Snapshot{
		Version:   Version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Mode:      e.mode(),
		Settings:  e.table.All(),
		Functions: e.registry.Entries(),
	}
	if envelope, err := schema.GenerateSchema(wireformat.InvokeRequestWire{}); err == nil {
		snap.EnvelopeSchema = string(envelope)
	}
	return snap
}

// requestVarsHandler exposes the populated variable sources to the guest,
// shaped by variables_order and request_order.
func (e *Engine) requestVarsHandler() funcs.Handler {
	return func(ctx context.Context, _ []byte) ([]byte, error) {
		varsOrder, _ := e.table.Get("variables_order")
		reqOrder, _ := e.table.Get("request_order")
		resp := wireformat.RequestVarsWire{
			Vars:    PopulateVariables(varsOrder, e.sources),
			Request: MergeRequest(reqOrder, e.sources),
		}
		return json.Marshal(resp)
	}
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
