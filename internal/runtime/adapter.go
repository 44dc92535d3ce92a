package runtime

import (
	"context"
	"strings"

	"ttsd/pkg/types"
)

// DeviceConfig controls where and how the engine places model weights.
type DeviceConfig struct {
	// DeviceMap selects accelerator placement. Empty or "auto" lets the
	// engine decide; "cpu" forces CPU execution.
	DeviceMap string
	// Dtype selects the numeric mode: float16, bfloat16 or float32.
	// Empty lets the engine decide.
	Dtype string
}

// AutoPlacement reports whether the engine chooses device placement itself.
// The CPU-fallback retry is only permitted for auto-placed loads.
func (d DeviceConfig) AutoPlacement() bool {
	return d.DeviceMap == "" || strings.EqualFold(d.DeviceMap, "auto")
}

// cpuFallbackDevice is the forced safe configuration used by the retry
// policy. Full precision is deliberate: half-precision weights are what
// trip meta-tensor materialization on CPU in the first place.
func cpuFallbackDevice() DeviceConfig {
	return DeviceConfig{DeviceMap: "cpu", Dtype: "float32"}
}

// SynthesisRequest carries one synthesis call through the gate.
type SynthesisRequest struct {
	Mode     types.Mode
	Text     string
	Language string
	// Instruct describes the desired voice (voice_design) or optional
	// delivery guidance (custom_voice).
	Instruct string
	// Speaker selects a built-in voice (custom_voice only).
	Speaker string
	// ReferenceAudio holds decoded reference audio bytes (voice_clone only).
	ReferenceAudio []byte
	// ModelID optionally pins the request to an explicit checkpoint.
	ModelID string
}

// Audio is the result of one synthesis call.
type Audio struct {
	// WAV holds the encoded audio bytes as produced by the engine.
	WAV []byte
	// SampleRate in Hz.
	SampleRate int
}

// EngineAdapter abstracts the speech-synthesis engine. Implementations own
// at most one resident model; Load replaces it, Unload releases it.
// Synthesize and Speakers must only be called between a successful Load and
// the next Unload.
type EngineAdapter interface {
	// Preflight verifies runtime dependencies without touching model state.
	// It returns a dependency-unavailable error when the engine cannot run.
	Preflight() error
	// Load makes modelID resident with the given device configuration.
	Load(ctx context.Context, modelID string, device DeviceConfig) error
	// Unload releases the resident model, if any.
	Unload() error
	// Synthesize produces audio with the resident model.
	Synthesize(ctx context.Context, req SynthesisRequest) (Audio, error)
	// Speakers lists built-in voices of the resident model.
	Speakers(ctx context.Context) ([]string, error)
	// Health reports whether modelID is usable by this adapter.
	Health(modelID string) bool
}
