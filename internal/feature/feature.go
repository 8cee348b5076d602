package feature

import "os"

// Feature is a behaviour toggled at runtime through an environment variable
type Feature struct {
	EnvVariable    string
	defaultEnabled bool
}

// EnforceIPRateLimits drops requests over the source IP limit. Disabling it
// with FF_ENFORCE_IP_RATE_LIMITS=false only logs offending clients, which is
// how new limits are tried out against production traffic.
var EnforceIPRateLimits = Feature{
	EnvVariable:    "FF_ENFORCE_IP_RATE_LIMITS",
	defaultEnabled: true,
}

// Enabled reads the environment variable responsible for the feature flag
// if FF is disabled by default, the environment variable needs to be "true" to explicitly enable it
// if FF is enabled by default, variable needs to be "false" to explicitly disable it
func (f Feature) Enabled() bool {
	env := os.Getenv(f.EnvVariable)

	if f.defaultEnabled {
		return env != "false"
	}

	return env == "true"
}
