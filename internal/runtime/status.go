package runtime

import (
	"fmt"

	"ttsd/pkg/types"
)

// Status builds the detailed status response for the HTTP layer.
func (r *Runtime) Status() types.StatusResponse {
	r.mu.Lock()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	return StatusFromSnapshot(snap)
}

// StatusFromSnapshot projects a Snapshot onto the wire format.
func StatusFromSnapshot(s Snapshot) types.StatusResponse {
	resp := types.StatusResponse{
		Status:            string(s.Status),
		Mode:              s.ResolvedMode,
		ModelID:           s.ResolvedModelID,
		RequestedMode:     s.RequestedMode,
		RequestedModelID:  s.RequestedModelID,
		InstanceID:        s.InstanceID,
		Loaded:            s.Status == StatusLoaded,
		Loading:           s.Status == StatusLoading,
		StrictLoad:        s.StrictLoad,
		FallbackApplied:   s.FallbackApplied,
		CPUFallbackActive: s.CPUFallbackActive,
		LastError:         s.LastError,
	}
	if !s.LoadedAt.IsZero() {
		resp.LoadedAt = s.LoadedAt.Unix()
	}
	if !s.LastUsedAt.IsZero() {
		resp.LastUsedAt = s.LastUsedAt.Unix()
	}
	resp.Detail = statusDetail(s)
	return resp
}

func statusDetail(s Snapshot) string {
	switch {
	case s.Status == StatusLoaded:
		return "Model is loaded and ready."
	case s.Status == StatusLoading:
		return "Model is currently loading. Please wait."
	case s.LastError != "":
		return fmt.Sprintf("Last model load failed: %s", s.LastError)
	default:
		return "Model is not loaded yet."
	}
}
