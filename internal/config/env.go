package config

import (
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces all environment variables, e.g. TTSD_ADDR.
const envPrefix = "ttsd"

// FromEnv overlays TTSD_* environment variables onto cfg. Variables that
// are not set leave the existing values untouched, so this composes with a
// previously loaded config file.
func FromEnv(cfg *Config) error {
	return envconfig.Process(envPrefix, cfg)
}
