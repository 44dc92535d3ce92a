// Package engine provides the EngineAdapter implementations. The synthesis
// runtime itself never runs in this process: real engines are reached through
// the HTTP sidecar adapter (NewRemote), selected with --engine-url. This file
// is the in-process placeholder used when no sidecar is configured; it
// refuses to load rather than mock audio in production binaries.
package engine

import (
	"context"

	"ttsd/internal/catalog"
	"ttsd/internal/runtime"
)

type stubAdapter struct{}

// New returns the placeholder adapter used when no engine sidecar is
// configured.
func New() runtime.EngineAdapter { return &stubAdapter{} }

const stubMsg = "no speech engine configured; set --engine-url to a synthesis sidecar"

func (a *stubAdapter) Preflight() error {
	return runtime.ErrDependencyUnavailable(stubMsg)
}

func (a *stubAdapter) Load(ctx context.Context, modelID string, device runtime.DeviceConfig) error {
	return runtime.ErrDependencyUnavailable(stubMsg)
}

func (a *stubAdapter) Unload() error { return nil }

func (a *stubAdapter) Synthesize(ctx context.Context, req runtime.SynthesisRequest) (runtime.Audio, error) {
	select {
	case <-ctx.Done():
		return runtime.Audio{}, ctx.Err()
	default:
	}
	return runtime.Audio{}, runtime.ErrDependencyUnavailable(stubMsg)
}

func (a *stubAdapter) Speakers(ctx context.Context) ([]string, error) {
	return nil, runtime.ErrDependencyUnavailable(stubMsg)
}

// Health reflects local checkpoint availability so resolution behaves the
// same with or without the native runtime present.
func (a *stubAdapter) Health(modelID string) bool {
	return catalog.Available(modelID)
}
