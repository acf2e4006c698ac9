package nav

import (
	"context"
	"sync"
)

// Handler renders one screen and performs the user's next action.
type Handler interface {
	Show(ctx context.Context, st State) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, st State) error

func (f HandlerFunc) Show(ctx context.Context, st State) error { return f(ctx, st) }

// Registry maps screens to handlers. Resolve never fails: unknown or
// unregistered screens get the default handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Screen]Handler
	def      Handler
}

// NewRegistry returns a registry whose fallback is def.
func NewRegistry(def Handler) *Registry {
	return &Registry{handlers: make(map[Screen]Handler), def: def}
}

// Register binds h to s, replacing any earlier binding. Screens outside the
// enum are ignored.
func (r *Registry) Register(s Screen, h Handler) {
	if !s.Valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[s] = h
}

// Resolve returns the handler bound to s or the default.
func (r *Registry) Resolve(s Screen) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !s.Valid() {
		return r.def
	}
	if h, ok := r.handlers[s]; ok && h != nil {
		return h
	}
	return r.def
}

// Default returns the fallback handler.
func (r *Registry) Default() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Missing lists screens with no handler, in declaration order.
func (r *Registry) Missing() []Screen {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Screen
	for _, s := range allScreens {
		if h, ok := r.handlers[s]; !ok || h == nil {
			out = append(out, s)
		}
	}
	return out
}
