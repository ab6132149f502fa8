package bibsync

import (
	"sync"

	"github.com/agentstation/bibsync/pkg/reconciler"
)

// OutcomeHook is called with the outcome of one entry.
type OutcomeHook func(outcome reconciler.Outcome)

// Hooks registers callbacks for sync outcomes.
type Hooks interface {
	// OnCreated registers a callback for created records
	OnCreated(OutcomeHook)

	// OnUpdated registers a callback for updated records
	OnUpdated(OutcomeHook)

	// OnFailed registers a callback for entries that failed
	OnFailed(OutcomeHook)
}

// hooks manages outcome callbacks
type hooks struct {
	mu        sync.RWMutex
	onCreated []OutcomeHook
	onUpdated []OutcomeHook
	onFailed  []OutcomeHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnCreated registers a callback for created records
func (h *hooks) OnCreated(fn OutcomeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCreated = append(h.onCreated, fn)
}

// OnUpdated registers a callback for updated records
func (h *hooks) OnUpdated(fn OutcomeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// OnFailed registers a callback for entries that failed
func (h *hooks) OnFailed(fn OutcomeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailed = append(h.onFailed, fn)
}

// trigger calls the hooks registered for the outcome's state. Dry run
// outcomes do not trigger hooks.
func (h *hooks) trigger(o reconciler.Outcome) {
	if o.DryRun {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	var fns []OutcomeHook
	switch o.State {
	case reconciler.StateCreated:
		fns = h.onCreated
	case reconciler.StateUpdated:
		fns = h.onUpdated
	case reconciler.StateFailed:
		fns = h.onFailed
	}
	for _, fn := range fns {
		fn(o)
	}
}
