package funcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallContext(t *testing.T) {
	ctx := context.Background()
	cc := NewCallContext(ctx, "runtime_info")

	require.NotNil(t, cc)
	assert.Equal(t, "runtime_info", cc.FunctionName())
}

func TestCallContext_SetGetValue(t *testing.T) {
	cc := NewCallContext(context.Background(), "invoke")

	// Initially no value
	_, ok := cc.GetValue("caller")
	assert.False(t, ok)

	// Set a value
	cc.SetValue("caller", "script.wasm")
	val, ok := cc.GetValue("caller")
	assert.True(t, ok)
	assert.Equal(t, "script.wasm", val)

	// Set another value
	cc.SetValue("attempt", 2)
	val2, ok := cc.GetValue("attempt")
	assert.True(t, ok)
	assert.Equal(t, 2, val2)

	// First value still there
	val, ok = cc.GetValue("caller")
	assert.True(t, ok)
	assert.Equal(t, "script.wasm", val)
}

func TestCallContext_ImplementsContext(t *testing.T) {
	parent := context.Background()
	cc := NewCallContext(parent, "request_vars")

	// Verify it implements context.Context
	var ctx context.Context = cc
	assert.NotNil(t, ctx)

	// Verify context methods work
	assert.Nil(t, cc.Done())
	assert.Nil(t, cc.Err())
	assert.Nil(t, cc.Value("nonexistent"))
}

func TestCallContextFrom(t *testing.T) {
	t.Run("wraps plain context", func(t *testing.T) {
		ctx := context.Background()
		cc := CallContextFrom(ctx, "invoke")
		assert.Equal(t, "invoke", cc.FunctionName())
	})

	t.Run("returns existing CallContext unchanged", func(t *testing.T) {
		original := NewCallContext(context.Background(), "original")
		original.SetValue("marker", true)

		returned := CallContextFrom(original, "different")

		// Should return the same CallContext
		assert.Equal(t, "original", returned.FunctionName())
		val, ok := returned.GetValue("marker")
		assert.True(t, ok)
		assert.Equal(t, true, val)
	})
}

func TestCallContext_ValuesFlowThroughMiddleware(t *testing.T) {
	// A middleware stores a call-scoped value; the handler reads it back
	// through the same CallContext the registry created for the call.
	tagging := func(next Handler) Handler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if cc, ok := ctx.(CallContext); ok {
				cc.SetValue("tag", cc.FunctionName())
			}
			return next(ctx, payload)
		}
	}

	var seen any
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		cc, ok := ctx.(CallContext)
		require.True(t, ok)
		seen, _ = cc.GetValue("tag")
		return nil, nil
	}

	reg, err := NewRegistry(
		WithMiddleware(tagging),
		WithBuiltin("invoke", handler),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "invoke", nil)
	require.NoError(t, err)
	assert.Equal(t, "invoke", seen)
}
