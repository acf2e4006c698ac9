package nav

import (
	"log/slog"
	"sync"
)

// State is the current screen and its payload. Payload may be nil.
type State struct {
	Screen  Screen
	Payload Payload
}

// Transition is passed to observers after every Goto.
type Transition struct {
	From State
	To   State
	// Requested is the screen the caller asked for; it differs from To.Screen
	// only when an unknown screen fell back to WELCOME.
	Requested Screen
}

// Navigator owns the single NavigationState of a companion session.
type Navigator struct {
	mu       sync.RWMutex
	state    State
	registry *Registry
	logger   *slog.Logger
	hooks    []func(Transition)
}

// New starts at WELCOME with no payload.
func New(registry *Registry, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{state: State{Screen: Welcome}, registry: registry, logger: logger}
}

// OnTransition registers an observer. Observers run synchronously after the
// state has changed, outside the navigator lock.
func (n *Navigator) OnTransition(fn func(Transition)) {
	n.mu.Lock()
	n.hooks = append(n.hooks, fn)
	n.mu.Unlock()
}

// Goto replaces screen and payload in one step. It never fails: an unknown
// screen lands on WELCOME and a payload addressed to another screen is dropped.
func (n *Navigator) Goto(screen Screen, payload Payload) {
	next := State{Screen: screen, Payload: payload}
	if !screen.Valid() {
		n.logger.Warn("unknown screen, falling back to welcome", "screen", string(screen))
		next = State{Screen: Welcome}
	} else if payload != nil && payload.Target() != screen {
		n.logger.Debug("dropping payload for other screen",
			"screen", string(screen), "payload_target", string(payload.Target()))
		next.Payload = nil
	}

	n.mu.Lock()
	prev := n.state
	n.state = next
	hooks := append([]func(Transition){}, n.hooks...)
	n.mu.Unlock()

	t := Transition{From: prev, To: next, Requested: screen}
	for _, fn := range hooks {
		fn(t)
	}
}

// State returns a copy of the current state.
func (n *Navigator) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Active resolves the handler for the current screen.
func (n *Navigator) Active() Handler {
	return n.registry.Resolve(n.State().Screen)
}
