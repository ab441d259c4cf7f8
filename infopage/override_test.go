package infopage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/internal/testutil"
)

// fakeSink implements Sink over two buffers so tests can tell captured
// writes from real ones, and records whether the real sink was restored.
type fakeSink struct {
	real     bytes.Buffer
	capture  *bytes.Buffer
	captures int
}

func (s *fakeSink) Write(p []byte) (int, error) {
	if s.capture != nil {
		return s.capture.Write(p)
	}
	return s.real.Write(p)
}

func (s *fakeSink) CaptureOutput(fn func() error) (_ []byte, err error) {
	s.captures++
	buf := &bytes.Buffer{}
	s.capture = buf
	defer func() { s.capture = nil }()

	if err := fn(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stockHandler(sink Sink, page string) funcs.Handler {
	return func(ctx context.Context, _ []byte) ([]byte, error) {
		if _, err := sink.Write([]byte(page)); err != nil {
			return nil, err
		}
		return []byte(`{"ok":true}`), nil
	}
}

func newTestRegistry(t *testing.T, opts ...funcs.RegistryOption) *funcs.Registry {
	t.Helper()
	reg, err := funcs.NewRegistry(opts...)
	require.NoError(t, err)
	return reg
}

func decodeOK(t *testing.T, resp []byte) bool {
	t.Helper()
	ok, _ := testutil.DecodeJSON(t, resp)["ok"].(bool)
	return ok
}

func TestInstall_AbsentEntryIsNoOp(t *testing.T) {
	sink := &fakeSink{}
	reg := newTestRegistry(t)

	assert.False(t, Install(reg, sink))
	assert.Empty(t, reg.Names())
}

func TestInstall_UserEntryIsNoOp(t *testing.T) {
	sink := &fakeSink{}
	reg := newTestRegistry(t, funcs.WithUserHandler(FunctionName, stockHandler(sink, "user page")))

	assert.False(t, Install(reg, sink))

	// The user handler still runs untouched: no capture, direct write.
	resp, err := reg.Invoke(context.Background(), FunctionName, nil)
	require.NoError(t, err)
	assert.True(t, decodeOK(t, resp))
	assert.Zero(t, sink.captures)
	assert.Equal(t, "user page", sink.real.String())
}

func TestInstall_ThemesCapturedOutput(t *testing.T) {
	page := "<html><style>stock{}</style><body>info</body></html>"
	sink := &fakeSink{}
	reg := newTestRegistry(t, funcs.WithBuiltin(FunctionName, stockHandler(sink, page)))

	require.True(t, Install(reg, sink))

	resp, err := reg.Invoke(context.Background(), FunctionName, nil)
	require.NoError(t, err)
	assert.True(t, decodeOK(t, resp))
	assert.Equal(t, 1, sink.captures)

	got := sink.real.String()
	prefix, suffix, found := strings.Cut(page, StyleAnchor)
	require.True(t, found)
	assert.Equal(t, prefix+ThemeCSS+StyleAnchor+suffix, got)
}

func TestInstall_AnchorMissingFallsBackVerbatim(t *testing.T) {
	page := "<html><body>no style block</body></html>"
	sink := &fakeSink{}
	reg := newTestRegistry(t, funcs.WithBuiltin(FunctionName, stockHandler(sink, page)))

	require.True(t, Install(reg, sink))

	resp, err := reg.Invoke(context.Background(), FunctionName, nil)
	require.NoError(t, err)
	assert.True(t, decodeOK(t, resp), "fallback still reports success")
	assert.Equal(t, page, sink.real.String())
}

func TestInstall_EmptyCaptureFails(t *testing.T) {
	sink := &fakeSink{}
	silent := func(ctx context.Context, _ []byte) ([]byte, error) {
		return []byte(`{"ok":true}`), nil // renders nothing
	}
	reg := newTestRegistry(t, funcs.WithBuiltin(FunctionName, silent))

	require.True(t, Install(reg, sink))

	resp, err := reg.Invoke(context.Background(), FunctionName, nil)
	require.NoError(t, err)
	assert.False(t, decodeOK(t, resp))
	assert.Zero(t, sink.real.Len(), "failure must not write anything")
}

func TestInstall_OriginalErrorRestoresSink(t *testing.T) {
	sink := &fakeSink{}
	failing := func(ctx context.Context, _ []byte) ([]byte, error) {
		_, _ = sink.Write([]byte("partial"))
		return nil, errors.New("render failed")
	}
	reg := newTestRegistry(t, funcs.WithBuiltin(FunctionName, failing))

	require.True(t, Install(reg, sink))

	_, err := reg.Invoke(context.Background(), FunctionName, nil)
	require.Error(t, err)

	// Redirection ended: later writes reach the real sink again.
	_, _ = sink.Write([]byte("after"))
	assert.Equal(t, "after", sink.real.String())
}
