package kolado

import (
	"context"
	"sync"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

// Hook function types for record outcomes
type (
	// SyncedHook is called when a record is applied, unchanged or planned
	SyncedHook func(outcome reconciler.Outcome)

	// SkippedHook is called when a record is rejected or has no target match
	SkippedHook func(outcome reconciler.Outcome)

	// FailedHook is called when a record's target call fails
	FailedHook func(outcome reconciler.Outcome)
)

// Hooks provides outcome callback registration. Callbacks may run
// concurrently when more than one worker is configured.
type Hooks interface {
	OnSynced(fn SyncedHook)
	OnSkipped(fn SkippedHook)
	OnFailed(fn FailedHook)
}

// hooks manages event callbacks for record outcomes
type hooks struct {
	mu        sync.RWMutex
	onSynced  []SyncedHook
	onSkipped []SkippedHook
	onFailed  []FailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnSynced registers a callback for synced records
func (h *hooks) OnSynced(fn SyncedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSynced = append(h.onSynced, fn)
}

// OnSkipped registers a callback for skipped records
func (h *hooks) OnSkipped(fn SkippedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSkipped = append(h.onSkipped, fn)
}

// OnFailed registers a callback for failed records
func (h *hooks) OnFailed(fn FailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailed = append(h.onFailed, fn)
}

// Observe dispatches an outcome to the callbacks of its category
func (h *hooks) Observe(_ context.Context, o reconciler.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch o.State.Category() {
	case reconciler.CategorySynced:
		for _, fn := range h.onSynced {
			fn(o)
		}
	case reconciler.CategorySkipped:
		for _, fn := range h.onSkipped {
			fn(o)
		}
	case reconciler.CategoryFailed:
		for _, fn := range h.onFailed {
			fn(o)
		}
	}
}

// OnSynced registers a callback on the client
func (c *client) OnSynced(fn SyncedHook) { c.hooks.OnSynced(fn) }

// OnSkipped registers a callback on the client
func (c *client) OnSkipped(fn SkippedHook) { c.hooks.OnSkipped(fn) }

// OnFailed registers a callback on the client
func (c *client) OnFailed(fn FailedHook) { c.hooks.OnFailed(fn) }
