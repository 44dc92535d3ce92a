package runtime

import (
	"time"

	"ttsd/pkg/types"
)

// Status represents the lifecycle state of the engine.
type Status string

const (
	StatusUnloaded Status = "unloaded"
	StatusLoading  Status = "loading"
	StatusLoaded   Status = "loaded"
	StatusError    Status = "error"
)

// Snapshot is a read-only projection of the runtime state.
type Snapshot struct {
	Status            Status
	RequestedMode     types.Mode
	RequestedModelID  string
	ResolvedMode      types.Mode
	ResolvedModelID   string
	InstanceID        string
	StrictLoad        bool
	FallbackApplied   bool
	CPUFallbackActive bool
	LastError         string
	LoadedAt          time.Time
	LastUsedAt        time.Time
}
