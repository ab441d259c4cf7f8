package funcs

import (
	"context"
	"encoding/json"
	"fmt"
)

// Func is a generic signature for a typed script-callable function.
// It accepts a context and a typed request, and returns a typed response.
type Func[Req any, Resp any] func(context.Context, Req) Resp

// Handler is a function that accepts raw bytes (JSON) and returns raw bytes
// (JSON). This is the common shape the engine exports into the guest
// namespace: every function-table entry resolves to a Handler.
type Handler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed Func into a Handler.
// It handles the JSON unmarshalling of the request and marshalling of the
// response.
//
// Usage:
//
//	handler := funcs.NewJSONHandler(func(ctx context.Context, req PingRequest) PingResponse {
//	    return PingResponse{Echo: req.Message}
//	})
func NewJSONHandler[Req any, Resp any](fn Func[Req, Resp]) Handler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request: %w", err)
		}

		resp := fn(ctx, req)

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}
