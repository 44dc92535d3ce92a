package runtime

import (
	"fmt"

	"ttsd/internal/catalog"
	"ttsd/pkg/types"
)

// resolution is the outcome of mapping a load request onto the catalog.
type resolution struct {
	mode            types.Mode
	modelID         string
	fallbackApplied bool
}

// resolve maps a requested mode and optional explicit model id to a concrete
// selection. An explicit id must exist in the catalog; an id that is
// mode-incompatible or unhealthy either fails (strict) or falls back to the
// mode default. No model id resolves straight to the default.
func (r *Runtime) resolve(req types.LoadRequest) (resolution, error) {
	if !req.Mode.Valid() {
		return resolution{}, ErrInvalidRequest(fmt.Sprintf("unsupported mode %q", req.Mode))
	}
	def, ok := catalog.DefaultFor(req.Mode)
	if !ok {
		return resolution{}, ErrInvalidRequest(fmt.Sprintf("unsupported mode %q", req.Mode))
	}
	if req.ModelID == "" {
		return resolution{mode: req.Mode, modelID: def}, nil
	}

	desc, ok := catalog.Lookup(req.ModelID)
	if !ok {
		return resolution{}, ErrInvalidRequest(fmt.Sprintf("unsupported model_id %q", req.ModelID))
	}
	// An unhealthy adapter is treated identically to a mode-incompatible id.
	if desc.Mode == req.Mode && r.adapter.Health(req.ModelID) {
		return resolution{mode: req.Mode, modelID: req.ModelID}, nil
	}
	if req.StrictLoad {
		return resolution{}, ErrInvalidRequest(fmt.Sprintf(
			"model %q is incompatible with mode %q when strict_load=true", req.ModelID, req.Mode))
	}
	return resolution{mode: req.Mode, modelID: def, fallbackApplied: true}, nil
}
