package funcs

import (
	"context"
	"fmt"
	"sort"
)

// Kind tags a function-table entry by origin. The override mechanism only
// touches builtin entries; anything the embedding application registered is
// left alone.
type Kind int

const (
	// KindBuiltin marks entries registered by the engine itself or one of
	// its bundled capabilities.
	KindBuiltin Kind = iota

	// KindUser marks entries registered by the embedding application.
	KindUser
)

// String returns the kind tag used in diagnostics output.
func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Entry is one row of the function table: a named, kind-tagged handler.
type Entry struct {
	Name    string
	Kind    Kind
	handler Handler
}

// Registry is the engine's function table: every name the guest can call
// maps to exactly one Entry. The set of names is fixed at construction;
// Override may later swap a builtin entry's handler in place.
//
// The engine runs single-threaded, and an override is installed once, after
// startup and before any script call that could observe it. The registry
// therefore takes no locks; that ordering is the caller's contract.
type Registry struct {
	entries    map[string]*Entry
	names      []string // sorted for consistent iteration
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	entries    map[string]*Entry
	middleware []Middleware
	errors     []error
}

// NewRegistry creates a Registry with the given options.
// Returns an error if any function name is registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBuiltin("runtime_info", infoHandler),
//	    WithUserHandler("notify", notifyHandler),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		entries:    make(map[string]*Entry),
		middleware: nil,
		errors:     nil,
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware chain to all handlers (FIFO order, first added
	// wraps outermost).
	for _, entry := range b.entries {
		wrapped := entry.handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			wrapped = b.middleware[i](wrapped)
		}
		entry.handler = wrapped
	}

	return &Registry{
		entries:    b.entries,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Invoke dispatches a script call by function name.
// Returns the JSON response bytes, or an ErrorResponse JSON if the name is
// not in the table.
func (r *Registry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	entry, ok := r.entries[name]
	if !ok {
		return NewNotFoundError(name).ToJSON(), nil
	}

	cctx := CallContextFrom(ctx, name)
	return entry.handler(cctx, payload)
}

// Lookup returns a copy of the entry for name. The handler itself is not
// exposed; callers that need to replace it go through Override.
func (r *Registry) Lookup(name string) (Entry, bool) {
	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return Entry{Name: entry.Name, Kind: entry.Kind}, true
}

// Override replaces the handler of a builtin entry with wrap(original),
// permanently. If the entry is absent, or was registered by the embedding
// application rather than the engine, the table is left untouched and
// Override reports false. There is no way to revert a replacement.
func (r *Registry) Override(name string, wrap func(Handler) Handler) bool {
	entry, ok := r.entries[name]
	if !ok || entry.Kind != KindBuiltin {
		return false
	}
	entry.handler = wrap(entry.handler)
	return true
}

// Has returns true if a function with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns a sorted list of all registered function names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Entries returns the table rows sorted by name, for diagnostics.
func (r *Registry) Entries() []Entry {
	result := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		e := r.entries[name]
		result = append(result, Entry{Name: e.Name, Kind: e.Kind})
	}
	return result
}

// addEntry registers a handler with the given name and kind.
// Returns an error if the name is already taken.
func (b *registryBuilder) addEntry(name string, kind Kind, handler Handler) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if _, exists := b.entries[name]; exists {
		return fmt.Errorf("duplicate function name: %q", name)
	}
	b.entries[name] = &Entry{Name: name, Kind: kind, handler: handler}
	return nil
}

// WithBuiltin registers a raw Handler as a builtin entry. Builtin entries
// are eligible for Override.
func WithBuiltin(name string, handler Handler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addEntry(name, KindBuiltin, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithUserHandler registers a raw Handler on behalf of the embedding
// application. User entries are never touched by Override.
func WithUserHandler(name string, handler Handler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addEntry(name, KindUser, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithFunc registers a typed user function with automatic JSON handling.
// The function is wrapped with NewJSONHandler for JSON serialization.
//
// Example usage:
//
//	WithFunc("notify", func(ctx context.Context, req NotifyRequest) NotifyResponse {
//	    return NotifyResponse{Shown: true}
//	})
func WithFunc[Req any, Resp any](name string, fn Func[Req, Resp]) RegistryOption {
	return func(b *registryBuilder) {
		handler := NewJSONHandler(fn)
		if err := b.addEntry(name, KindUser, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
