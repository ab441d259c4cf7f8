package infopage

import "bytes"

// Splice injects payload immediately before the first occurrence of anchor
// in content, preserving the anchor itself exactly once. When the anchor is
// absent it returns content unchanged and reports false, leaving the
// fallback decision to the caller.
func Splice(content, anchor, payload []byte) ([]byte, bool) {
	idx := bytes.Index(content, anchor)
	if idx < 0 {
		return content, false
	}

	out := make([]byte, 0, len(content)+len(payload))
	out = append(out, content[:idx]...)
	out = append(out, payload...)
	out = append(out, content[idx:]...)
	return out, true
}
