package runtime

import (
	"sync"
	"time"

	"ttsd/pkg/types"
)

// Config encapsulates all tunables for Runtime construction.
type Config struct {
	// IdleUnload evicts the engine after this much inactivity.
	// Zero or negative disables the idle watchdog.
	IdleUnload time.Duration
	// Device is the operator-configured placement applied to every load.
	Device DeviceConfig
	// TransientPredicate classifies adapter synthesis failures that warrant
	// the one-shot CPU-fallback retry. Nil selects the default signature.
	TransientPredicate func(error) bool
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
}

// Runtime is the single source of truth for engine lifecycle state. All
// fields below mu are guarded by it; long-running adapter calls happen
// outside the critical section once a transition has been committed.
type Runtime struct {
	adapter   EngineAdapter
	device    DeviceConfig
	idleAfter time.Duration
	transient func(error) bool
	publisher EventPublisher

	// engineMu serializes adapter.Load/adapter.Unload effects in the order
	// their state transitions were committed. Unload paths acquire it before
	// committing unloaded, so a load accepted while a release is in flight
	// cannot reach the engine first. Lock order: engineMu before mu; mu is
	// never held while acquiring engineMu.
	engineMu sync.Mutex

	mu               sync.Mutex
	status           Status
	requestedMode    types.Mode
	requestedModelID string
	resolvedMode     types.Mode
	resolvedModelID  string
	instanceID       string
	strictLoad       bool
	fallbackApplied  bool
	cpuFallback      bool
	lastErr          string
	loadedAt         time.Time
	lastUsed         time.Time

	idleTimer *time.Timer
	timerGen  uint64
}

// New constructs a Runtime in the unloaded state.
func New(adapter EngineAdapter, cfg Config) *Runtime {
	r := &Runtime{
		adapter:   adapter,
		device:    cfg.Device,
		idleAfter: cfg.IdleUnload,
		transient: cfg.TransientPredicate,
		publisher: cfg.Publisher,
		status:    StatusUnloaded,
	}
	if r.transient == nil {
		r.transient = defaultTransientPredicate
	}
	if r.publisher == nil {
		r.publisher = noopPublisher{}
	}
	return r
}

// Ready reports whether the engine is resident and able to synthesize.
func (r *Runtime) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == StatusLoaded
}

// Snapshot returns a read-only view of the runtime state.
func (r *Runtime) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Runtime) snapshotLocked() Snapshot {
	return Snapshot{
		Status:            r.status,
		RequestedMode:     r.requestedMode,
		RequestedModelID:  r.requestedModelID,
		ResolvedMode:      r.resolvedMode,
		ResolvedModelID:   r.resolvedModelID,
		InstanceID:        r.instanceID,
		StrictLoad:        r.strictLoad,
		FallbackApplied:   r.fallbackApplied,
		CPUFallbackActive: r.cpuFallback,
		LastError:         r.lastErr,
		LoadedAt:          r.loadedAt,
		LastUsedAt:        r.lastUsed,
	}
}

// touchLocked refreshes usage accounting and re-arms the idle watchdog.
func (r *Runtime) touchLocked() {
	r.lastUsed = time.Now()
	r.armIdleTimerLocked()
}

func (r *Runtime) touch() {
	r.mu.Lock()
	if r.status == StatusLoaded {
		r.touchLocked()
	}
	r.mu.Unlock()
}
