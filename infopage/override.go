package infopage

import (
	"context"
	"encoding/json"
	"io"

	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/wireformat"
)

// Sink is the engine's output surface as seen by the override: the real
// output stream plus scoped redirection into a capture buffer.
type Sink interface {
	io.Writer

	// CaptureOutput runs fn with the output sink swapped for an internal
	// buffer and returns what fn wrote. Implementations must restore the
	// real sink on every exit path.
	CaptureOutput(fn func() error) ([]byte, error)
}

// Install replaces the builtin introspection handler with a themed version,
// permanently, for the remaining process lifetime. If the function table has
// no entry by that name, or the entry was registered by the embedding
// application rather than the engine, Install leaves the table untouched and
// returns false.
//
// Install must run after the engine has started (the function table must be
// populated) and before guest scripts can call the builtin; like the rest of
// the engine it relies on the single-threaded execution model rather than
// locks.
func Install(reg *funcs.Registry, sink Sink) bool {
	return reg.Override(FunctionName, func(orig funcs.Handler) funcs.Handler {
		return themedHandler(orig, sink)
	})
}

// themedHandler captures the stock page, splices the theme CSS before the
// first closing style tag, and writes the result to the real sink. If the
// anchor is missing the capture is written unchanged: failing to theme the
// page is preferable to breaking it, so that path still reports success.
// The only hard failure is an empty capture.
func themedHandler(orig funcs.Handler, sink Sink) funcs.Handler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		captured, err := sink.CaptureOutput(func() error {
			_, err := orig(ctx, payload)
			return err
		})
		if err != nil {
			return nil, err
		}

		if len(captured) == 0 {
			return infoResult(false)
		}

		page, _ := Splice(captured, []byte(StyleAnchor), []byte(ThemeCSS))
		if _, err := sink.Write(page); err != nil {
			return nil, err
		}
		return infoResult(true)
	}
}

func infoResult(ok bool) ([]byte, error) {
	return json.Marshal(wireformat.InfoResponseWire{OK: ok})
}
