package types

// LoadRequest asks the runtime to make a mode (and optionally a specific
// model) resident.
type LoadRequest struct {
	// Synthesis mode to load a model for.
	// example: voice_design
	Mode Mode `json:"mode" example:"voice_design"`
	// Optional explicit model identifier. If empty, the mode default is used.
	// example: Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign
	ModelID string `json:"model_id,omitempty" example:"Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign"`
	// When true, an invalid or unavailable model_id fails instead of falling
	// back to the mode default.
	// example: false
	StrictLoad bool `json:"strict_load,omitempty" example:"false"`
}

// StatusResponse is returned by GET /model/status and POST /model/load|unload.
type StatusResponse struct {
	// Lifecycle status: unloaded, loading, loaded or error.
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// Mode currently in effect (or last requested).
	// example: voice_design
	Mode Mode `json:"mode" example:"voice_design"`
	// Model identifier currently in effect (or last resolved).
	// example: Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign
	ModelID string `json:"model_id" example:"Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign"`
	// Mode from the most recent load request, if any.
	RequestedMode Mode `json:"requested_mode,omitempty"`
	// Model identifier from the most recent load request, if any.
	RequestedModelID string `json:"requested_model_id,omitempty"`
	// Unique id of the resident engine instance; empty unless loaded.
	InstanceID string `json:"instance_id,omitempty"`
	// True when a model is resident and ready to synthesize.
	// example: true
	Loaded bool `json:"loaded" example:"true"`
	// True while a load is in flight.
	// example: false
	Loading bool `json:"loading" example:"false"`
	// Strict policy from the most recent load request.
	StrictLoad bool `json:"strict_load"`
	// True when the resolver substituted the mode default for an
	// incompatible or unavailable requested model.
	FallbackApplied bool `json:"fallback_applied"`
	// True when the engine was reloaded onto CPU after a device-placement
	// failure.
	CPUFallbackActive bool `json:"cpu_fallback_active"`
	// Last fatal load error, cleared on successful load.
	LastError string `json:"last_error,omitempty"`
	// Unix seconds of the last successful load; 0 when not loaded.
	LoadedAt int64 `json:"loaded_at_unix,omitempty"`
	// Unix seconds of the last successful synthesis or load; 0 when unused.
	LastUsedAt int64 `json:"last_used_at_unix,omitempty"`
	// Human-readable summary of the current state.
	// example: Model is loaded and ready.
	Detail string `json:"detail"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"ttsd"`
}

// VersionResponse is returned by GET /version.
type VersionResponse struct {
	Service    string `json:"service" example:"ttsd"`
	APIVersion string `json:"api_version" example:"0.5.0"`
}

// InventoryEntry reports one catalog model and its local availability.
type InventoryEntry struct {
	Mode    Mode   `json:"mode" example:"voice_design"`
	ModelID string `json:"model_id" example:"Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign"`
	// True when a local snapshot of the checkpoint exists.
	Available bool `json:"available" example:"true"`
	// Local cache path probed for the checkpoint.
	LocalPath string `json:"local_path"`
}

// InventoryResponse wraps GET /model/inventory.
type InventoryResponse struct {
	Models []InventoryEntry `json:"models"`
}

// AdapterInfo identifies a synthesis adapter exposed by this service.
type AdapterInfo struct {
	ID         string `json:"id" example:"qwen3-tts"`
	Name       string `json:"name" example:"Qwen3 TTS VoiceDesign"`
	StatusPath string `json:"status_path" example:"/adapters/qwen3-tts/status"`
}

// AdaptersResponse wraps GET /adapters.
type AdaptersResponse struct {
	Adapters []AdapterInfo `json:"adapters"`
}

// AdapterStatusResponse is a StatusResponse scoped to one adapter id.
type AdapterStatusResponse struct {
	AdapterID string `json:"adapter_id" example:"qwen3-tts"`
	StatusResponse
}

// SpeakersResponse wraps GET /custom-voice/speakers.
type SpeakersResponse struct {
	ModelID  string   `json:"model_id" example:"Qwen/Qwen3-TTS-12Hz-1.7B-CustomVoice"`
	Speakers []string `json:"speakers"`
}

// VoiceDesignRequest is the payload for POST /synthesize/voice-design.
type VoiceDesignRequest struct {
	// Text to synthesize.
	// example: Hello there.
	Text string `json:"text" example:"Hello there."`
	// Natural-language description of the desired voice.
	Instruct string `json:"instruct,omitempty" example:"A warm and clear speaking voice with natural pacing."`
	// Spoken language.
	Language string `json:"language,omitempty" example:"English"`
	// Optional explicit model identifier.
	ModelID string `json:"model_id,omitempty"`
	// Output container; only "wav" is supported.
	Format string `json:"format,omitempty" example:"wav"`
}

// CustomVoiceRequest is the payload for POST /synthesize/custom-voice.
type CustomVoiceRequest struct {
	Text     string `json:"text" example:"Hello there."`
	Speaker  string `json:"speaker,omitempty" example:"ryan"`
	Instruct string `json:"instruct,omitempty"`
	Language string `json:"language,omitempty" example:"English"`
	ModelID  string `json:"model_id,omitempty"`
	Format   string `json:"format,omitempty" example:"wav"`
}

// VoiceCloneRequest is the payload for POST /synthesize/voice-clone.
type VoiceCloneRequest struct {
	Text string `json:"text" example:"Hello there."`
	// Base64-encoded reference audio used for cloning. A data: URI prefix
	// is tolerated and stripped.
	ReferenceAudioB64 string `json:"reference_audio_b64"`
	Language          string `json:"language,omitempty" example:"English"`
	ModelID           string `json:"model_id,omitempty"`
	Format            string `json:"format,omitempty" example:"wav"`
}
