package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phptoro/bridge-sdk/internal/testutil"
	hostlog "github.com/phptoro/bridge-sdk/log"
	"github.com/phptoro/bridge-sdk/settings"
)

// countingCallback instruments a NativeCallback: it records every call and
// how often each response buffer was released.
type countingCallback struct {
	calls    int
	commands []string
	payloads []string
	releases int
	result   *string // nil means "command failed"
}

func (c *countingCallback) fn() NativeCallback {
	return func(command, argsPayload string) *Response {
		c.calls++
		c.commands = append(c.commands, command)
		c.payloads = append(c.payloads, argsPayload)
		if c.result == nil {
			return nil
		}
		return NewResponse([]byte(*c.result), func() { c.releases++ })
	}
}

func strptr(s string) *string { return &s }

func TestInvoke_NoCallbackRegistered(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(hostlog.NewHandler(&logBuf, hostlog.WithLevel(slog.LevelWarn)))

	t.Run("nil bridge", func(t *testing.T) {
		var b *Bridge
		result, ok := b.Invoke("anything", "{}")
		assert.False(t, ok)
		assert.Empty(t, result)
	})

	t.Run("prepared with nil callback", func(t *testing.T) {
		b := Prepare(nil, WithLogger(logger))
		result, ok := b.Invoke("anything", "{}")
		assert.False(t, ok)
		assert.Empty(t, result)
		assert.Contains(t, logBuf.String(), "bridge not initialised")
	})
}

func TestInvoke_CallsCallbackExactlyOnce(t *testing.T) {
	cb := &countingCallback{result: strptr(`{"answer":42}`)}
	b := Prepare(cb.fn())

	result, ok := b.Invoke("math.answer", `{"q":"life"}`)
	require.True(t, ok)
	assert.Equal(t, `{"answer":42}`, result)

	assert.Equal(t, 1, cb.calls)
	assert.Equal(t, []string{"math.answer"}, cb.commands)
	assert.Equal(t, []string{`{"q":"life"}`}, cb.payloads)
	assert.Equal(t, 1, cb.releases, "buffer must be released exactly once")
}

func TestInvoke_EmptyPayloadBecomesEmptyObject(t *testing.T) {
	cb := &countingCallback{result: strptr("ok")}
	b := Prepare(cb.fn())

	_, ok := b.Invoke("cmd", "")
	require.True(t, ok)
	assert.Equal(t, []string{"{}"}, cb.payloads)
}

func TestInvoke_NilResultIsFailureSentinel(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(hostlog.NewHandler(&logBuf, hostlog.WithLevel(slog.LevelWarn)))

	cb := &countingCallback{result: nil}
	b := Prepare(cb.fn(), WithLogger(logger))

	result, ok := b.Invoke("cmd", "{}")
	assert.False(t, ok)
	assert.Empty(t, result)
	assert.Equal(t, 1, cb.calls)
	assert.Empty(t, logBuf.String(), "a failed command is not a warning")
}

func TestResponse_ReleaseExactlyOnce(t *testing.T) {
	releases := 0
	resp := NewResponse([]byte("data"), func() { releases++ })

	assert.Equal(t, "data", resp.take())
	assert.Equal(t, 1, releases)

	// A stray extra Release must not run the destructor again.
	resp.Release()
	assert.Equal(t, 1, releases)
}

func TestResponse_NilSafety(t *testing.T) {
	var resp *Response
	assert.NotPanics(t, func() { resp.Release() })

	assert.NotPanics(t, func() { StringResponse("x").Release() })
}

func TestHandler_EnvelopeDispatch(t *testing.T) {
	cb := &countingCallback{result: strptr("pong")}
	b := Prepare(cb.fn())
	handler := b.Handler()

	t.Run("success envelope", func(t *testing.T) {
		out, err := handler(context.Background(), []byte(`{"command":"ping","params":"{\"n\":1}"}`))
		require.NoError(t, err)

		testutil.AssertJSONEqual(t, `{"ok":true,"result":"pong"}`, string(out))
		assert.Equal(t, []string{`{"n":1}`}, cb.payloads)
	})

	t.Run("omitted params default to empty object", func(t *testing.T) {
		cb.payloads = nil
		_, err := handler(context.Background(), []byte(`{"command":"ping"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"{}"}, cb.payloads)
	})
}

func TestHandler_MissingCommandAbortsBeforeDispatch(t *testing.T) {
	cb := &countingCallback{result: strptr("never")}
	b := Prepare(cb.fn())
	handler := b.Handler()

	for name, payload := range map[string]string{
		"command omitted": `{"params":"{}"}`,
		"command empty":   `{"command":""}`,
		"empty envelope":  `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := handler(context.Background(), []byte(payload))
			require.NoError(t, err)

			var errResp struct {
				Error string `json:"error"`
				Code  int    `json:"code"`
			}
			require.NoError(t, json.Unmarshal(out, &errResp))
			assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
			assert.Equal(t, 400, errResp.Code)
		})
	}

	assert.Zero(t, cb.calls, "callback must never run on an arity error")
}

func TestHandler_MalformedEnvelope(t *testing.T) {
	cb := &countingCallback{result: strptr("never")}
	b := Prepare(cb.fn())

	out, err := b.Handler()(context.Background(), []byte(`not json`))
	require.NoError(t, err)
	assert.Contains(t, string(out), "VALIDATION_ERROR")
	assert.Zero(t, cb.calls)
}

func TestPrepare_Defaults(t *testing.T) {
	t.Run("stock defaults", func(t *testing.T) {
		b := Prepare(nil)
		assert.Equal(t, settings.Defaults(), b.Defaults())
	})

	t.Run("extra defaults appended", func(t *testing.T) {
		b := Prepare(nil, WithDefaults(settings.Setting{Name: "display_errors", Value: "0"}))
		defaults := b.Defaults()
		assert.Equal(t, settings.Setting{Name: "display_errors", Value: "0"}, defaults[len(defaults)-1])
	})

	t.Run("nil bridge still yields defaults", func(t *testing.T) {
		var b *Bridge
		assert.Equal(t, settings.Defaults(), b.Defaults())
	})
}
