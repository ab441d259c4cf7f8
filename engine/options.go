package engine

import (
	"io"
	"log/slog"
	"os"

	"github.com/phptoro/bridge-sdk/bridge"
	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/settings"
)

// Option defines a functional option for configuring the engine.
type Option func(*engineConfig)

type engineConfig struct {
	bridge       *bridge.Bridge
	out          io.Writer
	logger       *slog.Logger
	registryOpts []funcs.RegistryOption
	overrides    []settings.Setting
	sources      RequestSources
	cliMode      bool
}

func defaultConfig() engineConfig {
	return engineConfig{
		out: os.Stdout,
	}
}

// WithBridge attaches a prepared command bridge. Without one, script calls
// to invoke fail with the bridge-not-initialised sentinel.
func WithBridge(b *bridge.Bridge) Option {
	return func(c *engineConfig) {
		c.bridge = b
	}
}

// WithOutput sets the real output sink. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *engineConfig) {
		c.out = w
	}
}

// WithLogger sets the engine logger. Defaults to a plain-text handler on
// os.Stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithFunctions adds entries or middleware to the function table, alongside
// the engine builtins.
func WithFunctions(opts ...funcs.RegistryOption) Option {
	return func(c *engineConfig) {
		c.registryOpts = append(c.registryOpts, opts...)
	}
}

// WithSetting overrides one configuration entry. Overrides are applied
// after the bridge defaults, before startup completes.
func WithSetting(name, value string) Option {
	return func(c *engineConfig) {
		c.overrides = append(c.overrides, settings.Setting{Name: name, Value: value})
	}
}

// WithRequestSources supplies the request variable sources populated per
// variables_order. The env source defaults to the process environment when
// left nil.
func WithRequestSources(src RequestSources) Option {
	return func(c *engineConfig) {
		c.sources = src
	}
}

// WithCommandLineMode switches the engine to command-line execution mode,
// which consults cache.enable_cli instead of cache.enable.
func WithCommandLineMode() Option {
	return func(c *engineConfig) {
		c.cliMode = true
	}
}
