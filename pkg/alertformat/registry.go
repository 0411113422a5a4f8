package alertformat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/forumkit/alertkit/pkg/hooks"
	"github.com/forumkit/alertkit/pkg/logger"
)

// HookRegisterFormatters fires exactly once, on the first formatter lookup.
// Listeners receive a *RegisterFormattersPayload and register their
// formatters on the carried registry.
const HookRegisterFormatters hooks.Hook = "alertformat.register_formatters"

// RegisterFormattersPayload is the mutable payload of HookRegisterFormatters.
type RegisterFormattersPayload struct {
	Registry *Registry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for registration diagnostics.
func WithRegistryLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// Registry holds formatters keyed by alert type code. Registration is
// deferred until the first lookup so formatter providers can hook in lazily.
type Registry struct {
	dispatcher *hooks.Dispatcher
	log        *slog.Logger

	registerOnce sync.Once

	mu          sync.RWMutex
	formatters  map[string]Formatter
	initialized map[string]bool
}

// NewRegistry creates a formatter registry dispatching its registration
// event on the given dispatcher.
func NewRegistry(dispatcher *hooks.Dispatcher, opts ...RegistryOption) (*Registry, error) {
	if dispatcher == nil {
		return nil, ErrDispatcherRequired
	}

	r := &Registry{
		dispatcher:  dispatcher,
		log:         slog.Default(),
		formatters:  make(map[string]Formatter),
		initialized: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register adds a formatter under its alert type code. Registering a second
// formatter for the same code replaces the first, so the outcome is
// deterministic regardless of when registration happens.
func (r *Registry) Register(f Formatter) {
	if f == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := f.AlertTypeCode()
	if _, exists := r.formatters[code]; exists {
		r.log.Debug("replacing alert formatter", logger.AlertType(code))
	}
	r.formatters[code] = f
	delete(r.initialized, code)
}

// FormatterFor returns the initialized formatter for the given alert type
// code. The first call dispatches the registration event; every call
// afterwards goes straight to lookup. The formatter's Init runs once on
// first retrieval; if it fails the error is returned and the next lookup
// retries it.
func (r *Registry) FormatterFor(ctx context.Context, code string) (Formatter, error) {
	r.registerOnce.Do(func() {
		r.dispatcher.Run(ctx, HookRegisterFormatters, &RegisterFormattersPayload{Registry: r})
	})

	r.mu.RLock()
	f, ok := r.formatters[code]
	ready := r.initialized[code]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Join(ErrFormatterNotFound, errors.New("code: "+code))
	}
	if ready {
		return f, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another goroutine may have finished
	// Init or replaced the formatter.
	f, ok = r.formatters[code]
	if !ok {
		return nil, errors.Join(ErrFormatterNotFound, errors.New("code: "+code))
	}
	if r.initialized[code] {
		return f, nil
	}

	if err := f.Init(ctx); err != nil {
		return nil, errors.Join(ErrInitFailed, err)
	}
	r.initialized[code] = true

	return f, nil
}

// Codes returns the codes of all registered formatters.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.formatters))
	for code := range r.formatters {
		codes = append(codes, code)
	}
	return codes
}
