package runtime

import (
	"log"
	"time"
)

// Unload releases the resident engine instance. It conflicts with an
// in-flight load and is a no-op when nothing is resident. The engine mutex
// is taken before the unloaded transition commits: a load accepted after the
// commit queues its engine call behind this release instead of racing it.
func (r *Runtime) Unload() (Snapshot, error) {
	r.mu.Lock()
	if r.status == StatusLoading {
		r.mu.Unlock()
		return r.Snapshot(), ErrConflict("model load in progress; unload rejected")
	}
	if r.status == StatusUnloaded {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, nil
	}
	r.mu.Unlock()

	r.engineMu.Lock()
	r.mu.Lock()
	// State may have moved while waiting for the engine mutex.
	if r.status == StatusLoading {
		r.mu.Unlock()
		r.engineMu.Unlock()
		return r.Snapshot(), ErrConflict("model load in progress; unload rejected")
	}
	if r.status == StatusUnloaded {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.engineMu.Unlock()
		return snap, nil
	}
	modelID := r.clearLoadedLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	err := r.adapter.Unload()
	r.engineMu.Unlock()
	if err != nil {
		log.Printf("runtime event=unload_error model=%q err=%v", modelID, err)
	}
	unloadsTotal.WithLabelValues("manual").Inc()
	log.Printf("runtime event=unload_done model=%q reason=manual", modelID)
	r.publisher.Publish(Event{Name: "unload_done", ModelID: modelID, Fields: map[string]any{"reason": "manual"}})
	return snap, nil
}

// clearLoadedLocked performs the loaded->unloaded bookkeeping: resolved
// fields, timestamps, fallback flags and the idle timer are all reset.
// Returns the model id that was resident for logging.
func (r *Runtime) clearLoadedLocked() string {
	modelID := r.resolvedModelID
	r.status = StatusUnloaded
	r.resolvedMode = ""
	r.resolvedModelID = ""
	r.instanceID = ""
	r.fallbackApplied = false
	r.cpuFallback = false
	r.lastErr = ""
	r.loadedAt = time.Time{}
	r.lastUsed = time.Time{}
	r.stopIdleTimerLocked()
	return modelID
}
