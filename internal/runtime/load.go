package runtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ttsd/pkg/types"
)

// Load resolves the request and, when work is needed, commits the loading
// transition and hands the engine call to a background goroutine. Callers
// never block on the engine: a load already in flight returns the loading
// snapshot untouched, and an identical resolution while loaded is a no-op.
func (r *Runtime) Load(req types.LoadRequest) (Snapshot, error) {
	res, err := r.resolve(req)
	if err != nil {
		return r.Snapshot(), err
	}
	if err := r.adapter.Preflight(); err != nil {
		return r.Snapshot(), err
	}

	r.mu.Lock()
	if r.status == StatusLoading {
		// Coalesce: the second caller observes the in-flight load.
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, nil
	}
	if r.status == StatusLoaded && r.resolvedMode == res.mode && r.resolvedModelID == res.modelID {
		// Idempotent: refresh request bookkeeping and usage only.
		r.requestedMode = req.Mode
		r.requestedModelID = req.ModelID
		r.strictLoad = req.StrictLoad
		r.fallbackApplied = res.fallbackApplied
		r.touchLocked()
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, nil
	}

	swap := r.status == StatusLoaded
	r.status = StatusLoading
	r.requestedMode = req.Mode
	r.requestedModelID = req.ModelID
	r.resolvedMode = res.mode
	r.resolvedModelID = res.modelID
	r.strictLoad = req.StrictLoad
	r.fallbackApplied = res.fallbackApplied
	r.instanceID = ""
	r.lastErr = ""
	r.cpuFallback = false
	r.stopIdleTimerLocked()
	device := r.device
	snap := r.snapshotLocked()
	r.mu.Unlock()

	log.Printf("runtime event=load_start model=%q mode=%s swap=%v", res.modelID, res.mode, swap)
	r.publisher.Publish(Event{Name: "load_start", ModelID: res.modelID, Fields: map[string]any{"mode": string(res.mode), "swap": swap}})

	go r.completeLoad(res.mode, res.modelID, device, swap)
	return snap, nil
}

// completeLoad runs the long engine call outside the state lock and commits
// the terminal transition. Only one completeLoad can be in flight because
// Load refuses to start a second one while status is loading. The engine
// mutex queues this call behind any release whose transition committed
// earlier, so a stalled unload can never fire into the fresh instance.
func (r *Runtime) completeLoad(mode types.Mode, modelID string, device DeviceConfig, swap bool) {
	start := time.Now()
	r.engineMu.Lock()
	if swap {
		if err := r.adapter.Unload(); err != nil {
			log.Printf("runtime event=swap_unload_error model=%q err=%v", modelID, err)
		}
	}
	err := r.adapter.Load(context.Background(), modelID, device)
	r.engineMu.Unlock()

	r.mu.Lock()
	if err != nil {
		r.status = StatusError
		r.lastErr = fmt.Sprintf("failed to load model %q: %v", modelID, err)
		r.mu.Unlock()
		loadFailuresTotal.Inc()
		log.Printf("runtime event=load_error model=%q err=%v", modelID, err)
		r.publisher.Publish(Event{Name: "load_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		return
	}
	now := time.Now()
	r.status = StatusLoaded
	r.instanceID = uuid.NewString()
	r.loadedAt = now
	r.lastUsed = now
	r.lastErr = ""
	r.armIdleTimerLocked()
	r.mu.Unlock()

	loadsTotal.Inc()
	log.Printf("runtime event=load_ready model=%q mode=%s dur_ms=%d", modelID, mode, time.Since(start)/time.Millisecond)
	r.publisher.Publish(Event{Name: "load_ready", ModelID: modelID, Fields: map[string]any{"mode": string(mode), "dur_ms": int(time.Since(start) / time.Millisecond)}})
}
