// Package funcs implements the engine's function table: pure Go handler
// logic with NO WASM runtime dependencies (no wazero imports). Any host
// that speaks the JSON handler shape can reuse it.
package funcs
