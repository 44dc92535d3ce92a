package runtime

import (
	"log"
	"time"
)

// armIdleTimerLocked schedules idle eviction at lastUsed + idleAfter.
// The watchdog is armed if and only if the engine is loaded and an idle
// duration is configured; any existing timer is superseded.
func (r *Runtime) armIdleTimerLocked() {
	if r.idleAfter <= 0 || r.status != StatusLoaded {
		return
	}
	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	r.timerGen++
	gen := r.timerGen
	r.idleTimer = time.AfterFunc(r.idleAfter, func() { r.idleFire(gen) })
}

// stopIdleTimerLocked disarms the watchdog and invalidates pending fires.
func (r *Runtime) stopIdleTimerLocked() {
	r.timerGen++
	if r.idleTimer != nil {
		r.idleTimer.Stop()
		r.idleTimer = nil
	}
}

// idleFire runs on the timer goroutine. The generation check discards fires
// that raced a reset or disarm; the idleness re-check under the lock covers
// a touch that slipped in between scheduling and firing. The eviction commit
// happens with the engine mutex held, so the release stays ordered ahead of
// any load accepted after the commit.
func (r *Runtime) idleFire(gen uint64) {
	r.mu.Lock()
	if gen != r.timerGen || r.status != StatusLoaded {
		r.mu.Unlock()
		return
	}
	if remaining := r.idleAfter - time.Since(r.lastUsed); remaining > 0 {
		r.idleTimer = time.AfterFunc(remaining, func() { r.idleFire(gen) })
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.engineMu.Lock()
	r.mu.Lock()
	// A touch or transition while waiting re-arms the timer and bumps the
	// generation, so a stale fire is discarded here.
	if gen != r.timerGen || r.status != StatusLoaded {
		r.mu.Unlock()
		r.engineMu.Unlock()
		return
	}
	modelID := r.clearLoadedLocked()
	r.mu.Unlock()

	err := r.adapter.Unload()
	r.engineMu.Unlock()
	if err != nil {
		log.Printf("runtime event=idle_unload_error model=%q err=%v", modelID, err)
	}
	unloadsTotal.WithLabelValues("idle").Inc()
	log.Printf("runtime event=unload_done model=%q reason=idle", modelID)
	r.publisher.Publish(Event{Name: "unload_done", ModelID: modelID, Fields: map[string]any{"reason": "idle"}})
}
