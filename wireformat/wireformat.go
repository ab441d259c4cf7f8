// Package wireformat defines the JSON wire format structures for
// communication between the engine host and guest scripts. These types must
// remain stable and backward compatible as they define the ABI contract.
package wireformat

import (
	"fmt"
	"time"
)

// ContextWireFormat is the JSON wire format for context.Context propagation.
// The fields are reserved guest-side ABI: guests may stamp deadline and
// request identity onto an invoke envelope, and the host carries them
// opaquely without acting on them. They exist so the envelope schema stays
// stable when host-side deadline enforcement lands.
type ContextWireFormat struct {
	Deadline  *time.Time `json:"deadline,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	TimeoutMs int64      `json:"timeout_ms,omitempty"`
}

// InvokeRequestWire is the JSON wire format for a command dispatch from
// Guest to Host. Params is an opaque serialized argument bag whose internal
// schema is defined by the receiving host logic; the bridge never inspects
// it. An empty Params is replaced by "{}" before dispatch.
type InvokeRequestWire struct {
	Command string            `json:"command" validate:"required"`
	Params  string            `json:"params,omitempty"`
	Context ContextWireFormat `json:"context"`
}

// InvokeResponseWire is the JSON wire format for a command dispatch result
// from Host to Guest. OK is the single success/failure sentinel: when false
// there is no result, and the reason (if any) is only in the host logs.
type InvokeResponseWire struct {
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
}

// InfoResponseWire is the JSON wire format returned by the runtime_info
// builtin. The rendered page itself goes to the engine output sink, not over
// the wire.
type InfoResponseWire struct {
	OK bool `json:"ok"`
}

// RequestVarsWire is the JSON wire format returned by the request_vars
// builtin: the populated variable sources plus the merged request map, both
// shaped by the variables_order and request_order settings.
type RequestVarsWire struct {
	Vars    map[string]map[string]string `json:"vars"`
	Request map[string]string            `json:"request"`
}

// LogMessageWire is the JSON wire format for guest log records routed to the
// host logger.
type LogMessageWire struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ErrorDetail provides structured error information, consistent across host
// and guest. Error Types: "validation", "internal", "panic", "config"
type ErrorDetail struct {
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`
	Message string       `json:"message"`
	Type    string       `json:"type"`
	Code    string       `json:"code"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}
