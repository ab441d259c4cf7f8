package bridge

// Response carries a command result from a NativeCallback back across the
// bridge. The backing buffer is owned by whoever produced it; the bridge is
// obligated to copy the contents and then call Release exactly once, on
// every path. The release guard keeps a stray double Release from running
// the destructor twice, but the dispatcher never relies on it.
type Response struct {
	data     []byte
	release  func()
	released bool
}

// NewResponse wraps a payload buffer and its destructor. release may be nil
// when the buffer needs no explicit cleanup (e.g. plain Go allocations).
func NewResponse(data []byte, release func()) *Response {
	return &Response{data: data, release: release}
}

// StringResponse wraps a plain Go string result. No destructor is needed;
// the dispatcher still copies before returning.
func StringResponse(s string) *Response {
	return &Response{data: []byte(s)}
}

// Release runs the destructor supplied at construction. The first call wins;
// later calls are no-ops.
func (r *Response) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	if r.release != nil {
		r.release()
	}
}

// take copies the payload into a host-managed string and releases the
// original buffer. Callers must not touch r afterwards.
func (r *Response) take() string {
	defer r.Release()
	return string(r.data)
}
