package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from strings like "10m" in
// yaml, json, toml and environment variables alike.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler; yaml.v3 does not consult
// TextUnmarshaler on its own.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default() in main.
type Config struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr" envconfig:"ADDR"`
	IdleUnload   Duration `json:"idle_unload" yaml:"idle_unload" toml:"idle_unload" envconfig:"IDLE_UNLOAD"`
	WarmLoad     bool     `json:"warm_load" yaml:"warm_load" toml:"warm_load" envconfig:"WARM_LOAD"`
	ModelID      string   `json:"model_id" yaml:"model_id" toml:"model_id" envconfig:"MODEL_ID"`
	DeviceMap    string   `json:"device_map" yaml:"device_map" toml:"device_map" envconfig:"DEVICE_MAP"`
	Dtype        string   `json:"dtype" yaml:"dtype" toml:"dtype" envconfig:"DTYPE"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`

	// EngineURL selects the HTTP engine sidecar; empty leaves the
	// placeholder adapter that refuses to load.
	EngineURL     string   `json:"engine_url" yaml:"engine_url" toml:"engine_url" envconfig:"ENGINE_URL"`
	EngineAPIKey  string   `json:"engine_api_key" yaml:"engine_api_key" toml:"engine_api_key" envconfig:"ENGINE_API_KEY"`
	EngineTimeout Duration `json:"engine_timeout" yaml:"engine_timeout" toml:"engine_timeout" envconfig:"ENGINE_TIMEOUT"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" envconfig:"CORS_ENABLED"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" envconfig:"CORS_ORIGINS"`
	CORSMethods []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods" envconfig:"CORS_METHODS"`
	CORSHeaders []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers" envconfig:"CORS_HEADERS"`
}

// Default returns the baseline configuration applied before file, env and
// flag layers.
func Default() Config {
	return Config{
		Addr:         ":8000",
		IdleUnload:   0,
		LogLevel:     "info",
		MaxBodyBytes: 1 << 20,
	}
}
