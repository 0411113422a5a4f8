package hooks

import (
	"context"
	"sync"
)

// Hook names an extension point. Packages that dispatch hooks declare their
// own Hook constants next to the dispatching code.
type Hook string

// HandlerFunc handles a single hook invocation. The payload is shared between
// all handlers of the hook and may be mutated in place.
type HandlerFunc func(ctx context.Context, payload any)

// Dispatcher routes hook invocations to registered handlers.
// All methods are safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Hook][]HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Hook][]HandlerFunc),
	}
}

// Register appends a handler to the invocation chain for the given hook.
// Nil handlers are ignored.
func (d *Dispatcher) Register(hook Hook, fn HandlerFunc) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[hook] = append(d.handlers[hook], fn)
}

// Run invokes every handler registered for the hook, in registration order,
// passing each the same payload. Handler effects are not inspected and there
// is no way for a handler to abort the chain.
func (d *Dispatcher) Run(ctx context.Context, hook Hook, payload any) {
	d.mu.RLock()
	chain := d.handlers[hook]
	d.mu.RUnlock()

	for _, fn := range chain {
		fn(ctx, payload)
	}
}

// HandlerCount reports how many handlers are registered for the hook.
func (d *Dispatcher) HandlerCount(hook Hook) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.handlers[hook])
}
