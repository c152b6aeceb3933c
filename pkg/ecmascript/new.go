package ecmascript

// Engine bundles a Runtime and a single Context, a convenience
// constructor for the common single-context embedding (most hosts never
// need more than one Context per Runtime).
type Engine struct {
	*Context
}

// New creates a Runtime and one Context over it in a single call,
// configured the same way CreateContext is.
func New(opts ...Option) *Engine {
	rt := NewRuntime()
	return &Engine{Context: rt.CreateContext(opts...)}
}
