package types

// Mode is a synthesis use-case category. It determines which models are
// eligible to serve a request.
type Mode string

const (
	ModeVoiceDesign Mode = "voice_design"
	ModeCustomVoice Mode = "custom_voice"
	ModeVoiceClone  Mode = "voice_clone"
)

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeVoiceDesign, ModeCustomVoice, ModeVoiceClone:
		return true
	}
	return false
}

// ModelDescriptor describes one supported model checkpoint.
type ModelDescriptor struct {
	// Stable identifier for the model.
	// example: Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign
	ID string `json:"model_id" example:"Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign"`
	// The single mode this checkpoint serves.
	// example: voice_design
	Mode Mode `json:"mode" example:"voice_design"`
}
