package runtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ttsd/internal/catalog"
	"ttsd/pkg/types"
)

// Synthesize is the gate in front of the engine. Calls are rejected while
// the engine is not loaded; a loaded engine serving a different mode or
// checkpoint than requested is a conflict, never an implicit reload. The
// adapter handle is borrowed inside the critical section that authorized it
// and used for at most one call (plus the one policy retry).
func (r *Runtime) Synthesize(ctx context.Context, req SynthesisRequest) (Audio, error) {
	r.mu.Lock()
	if r.status != StatusLoaded {
		st := r.status
		r.mu.Unlock()
		return Audio{}, ErrNotReady(st)
	}
	if req.Mode != "" && req.Mode != r.resolvedMode {
		mode := r.resolvedMode
		r.mu.Unlock()
		return Audio{}, ErrConflict(fmt.Sprintf("loaded model serves mode %q; load mode %q first", mode, req.Mode))
	}
	if req.ModelID != "" && req.ModelID != r.resolvedModelID {
		id := r.resolvedModelID
		r.mu.Unlock()
		return Audio{}, ErrConflict(fmt.Sprintf("loaded model is %q; load %q first", id, req.ModelID))
	}
	adapter := r.adapter
	device := r.device
	cpuFallback := r.cpuFallback
	r.mu.Unlock()

	start := time.Now()
	audio, err := adapter.Synthesize(ctx, req)
	if err == nil {
		r.touch()
		synthesisDuration.WithLabelValues(string(req.Mode), "ok").Observe(time.Since(start).Seconds())
		return audio, nil
	}

	// One-shot CPU-fallback retry, request-local: triggered only by the
	// placeholder-weights signature on an auto-placed load that has not
	// already fallen back.
	if r.transient(err) && device.AutoPlacement() && !cpuFallback {
		log.Printf("runtime event=cpu_fallback_retry err=%v", err)
		cpuFallbackRetriesTotal.Inc()
		if rerr := r.reloadWithCPUFallback(ctx); rerr != nil {
			synthesisDuration.WithLabelValues(string(req.Mode), "error").Observe(time.Since(start).Seconds())
			return Audio{}, ErrSynthesisFailed(fmt.Sprintf("synthesis failed after cpu fallback retry: %v", rerr))
		}
		audio, err = adapter.Synthesize(ctx, req)
		if err != nil {
			synthesisDuration.WithLabelValues(string(req.Mode), "error").Observe(time.Since(start).Seconds())
			return Audio{}, ErrSynthesisFailed(fmt.Sprintf("synthesis failed after cpu fallback retry: %v", err))
		}
		r.touch()
		synthesisDuration.WithLabelValues(string(req.Mode), "ok").Observe(time.Since(start).Seconds())
		return audio, nil
	}

	synthesisDuration.WithLabelValues(string(req.Mode), "error").Observe(time.Since(start).Seconds())
	return Audio{}, ErrSynthesisFailed(fmt.Sprintf("synthesis failed: %v", err))
}

// reloadWithCPUFallback reloads the resident checkpoint onto CPU with
// full-precision weights, synchronously. Unlike Load it blocks the caller:
// the retry policy needs the reload finished before it can re-attempt.
func (r *Runtime) reloadWithCPUFallback(ctx context.Context) error {
	r.mu.Lock()
	if r.status != StatusLoaded {
		st := r.status
		r.mu.Unlock()
		return ErrNotReady(st)
	}
	modelID := r.resolvedModelID
	r.status = StatusLoading
	r.instanceID = ""
	r.lastErr = ""
	r.cpuFallback = true
	r.stopIdleTimerLocked()
	r.mu.Unlock()

	log.Printf("runtime event=cpu_fallback_reload model=%q", modelID)
	r.publisher.Publish(Event{Name: "cpu_fallback_reload", ModelID: modelID, Fields: map[string]any{}})

	r.engineMu.Lock()
	if err := r.adapter.Unload(); err != nil {
		log.Printf("runtime event=cpu_fallback_unload_error model=%q err=%v", modelID, err)
	}
	err := r.adapter.Load(ctx, modelID, cpuFallbackDevice())
	r.engineMu.Unlock()

	r.mu.Lock()
	if err != nil {
		r.status = StatusError
		r.lastErr = fmt.Sprintf("failed to reload model %q with cpu fallback: %v", modelID, err)
		r.mu.Unlock()
		loadFailuresTotal.Inc()
		return ErrLoadFailed(fmt.Sprintf("failed to reload model %q with cpu fallback: %v", modelID, err))
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
	return nil
}

// Speakers lists the built-in voices of the resident custom_voice model.
// An optional explicit model id must be custom_voice-capable and match the
// resident checkpoint.
func (r *Runtime) Speakers(ctx context.Context, modelID string) (string, []string, error) {
	if modelID != "" {
		desc, ok := catalog.Lookup(modelID)
		if !ok {
			return "", nil, ErrInvalidRequest(fmt.Sprintf("unsupported model_id %q", modelID))
		}
		if desc.Mode != types.ModeCustomVoice {
			return "", nil, ErrInvalidRequest(fmt.Sprintf("model_id %q does not support custom_voice", modelID))
		}
	}

	r.mu.Lock()
	if r.status != StatusLoaded {
		st := r.status
		r.mu.Unlock()
		return "", nil, ErrNotReady(st)
	}
	if r.resolvedMode != types.ModeCustomVoice {
		mode := r.resolvedMode
		r.mu.Unlock()
		return "", nil, ErrConflict(fmt.Sprintf("loaded model serves mode %q; load mode %q first", mode, types.ModeCustomVoice))
	}
	if modelID != "" && modelID != r.resolvedModelID {
		id := r.resolvedModelID
		r.mu.Unlock()
		return "", nil, ErrConflict(fmt.Sprintf("loaded model is %q; load %q first", id, modelID))
	}
	id := r.resolvedModelID
	adapter := r.adapter
	r.mu.Unlock()

	speakers, err := adapter.Speakers(ctx)
	if err != nil {
		return "", nil, ErrSynthesisFailed(fmt.Sprintf("failed to fetch supported speakers: %v", err))
	}
	r.touch()
	return id, speakers, nil
}
