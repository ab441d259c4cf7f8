package funcs

import (
	"context"
)

// CallContext wraps a standard context.Context with call-specific helpers.
// It provides access to the invoked function name and allows middleware to
// store call-scoped values without polluting the standard context.
type CallContext interface {
	context.Context

	// FunctionName returns the name of the function being invoked.
	FunctionName() string

	// SetValue stores a call-scoped value. Unlike context.WithValue,
	// this mutates the existing CallContext for performance.
	SetValue(key, value any)

	// GetValue retrieves a call-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

// callContext is the concrete implementation of CallContext.
type callContext struct {
	context.Context
	values   map[any]any
	funcName string
}

// NewCallContext creates a new CallContext wrapping the given context.
func NewCallContext(ctx context.Context, funcName string) CallContext {
	return &callContext{
		Context:  ctx,
		funcName: funcName,
		values:   make(map[any]any),
	}
}

// FunctionName returns the name of the function being invoked.
func (c *callContext) FunctionName() string {
	return c.funcName
}

// SetValue stores a call-scoped value.
func (c *callContext) SetValue(key, value any) {
	c.values[key] = value
}

// GetValue retrieves a call-scoped value.
func (c *callContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// CallContextFrom extracts a CallContext from a context.Context.
// If the context is already a CallContext, it is returned directly.
// Otherwise, a new CallContext is created wrapping the given context.
func CallContextFrom(ctx context.Context, funcName string) CallContext {
	if cc, ok := ctx.(CallContext); ok {
		return cc
	}
	return NewCallContext(ctx, funcName)
}
