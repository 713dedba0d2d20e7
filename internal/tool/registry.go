// Package tool defines the consumed tool-registry contract: dispatch a
// named tool call with its JSON input and get back either a result or
// nothing. A missing tool is surfaced to the model as plain text, never
// as an error that aborts the run.
package tool

import "context"

// Result is what a tool execution hands back.
type Result struct {
	Success bool
	Output  []byte
}

// NotFoundContent is what the run loop feeds back to the model in place
// of a tool's output when the registry has no handler for the requested
// name.
const NotFoundContent = "tool not found"

// Registry executes a named tool. Execute returns ok=false when no tool
// by that name exists; it must not return an error for that case — a
// missing tool is a normal outcome the driver surfaces to the model,
// not a failure of the registry itself.
type Registry interface {
	Execute(ctx context.Context, name string, inputJSON []byte) (result Result, ok bool)
}

// Func adapts a single-tool function into a one-entry Registry. Mostly
// useful in tests.
type Func func(ctx context.Context, name string, inputJSON []byte) (Result, bool)

// Execute calls f.
func (f Func) Execute(ctx context.Context, name string, inputJSON []byte) (Result, bool) {
	return f(ctx, name, inputJSON)
}

// MapRegistry is a simple name-keyed registry covering the single
// Execute contract the run loop needs.
type MapRegistry struct {
	handlers map[string]func(ctx context.Context, inputJSON []byte) Result
}

// NewMapRegistry returns an empty registry ready for Register calls.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{handlers: make(map[string]func(ctx context.Context, inputJSON []byte) Result)}
}

// Register installs a handler under name, replacing any existing one.
func (m *MapRegistry) Register(name string, handler func(ctx context.Context, inputJSON []byte) Result) {
	m.handlers[name] = handler
}

// Execute looks up name and runs its handler.
func (m *MapRegistry) Execute(ctx context.Context, name string, inputJSON []byte) (Result, bool) {
	h, ok := m.handlers[name]
	if !ok {
		return Result{}, false
	}
	return h(ctx, inputJSON), true
}
