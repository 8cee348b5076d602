package config

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNoListener             = errors.New("no listener defined, please specify at least one --listen-* flag")
	ErrUnknownEnvironment     = errors.New("environment must be one of 'development', 'test' or 'production'")
	ErrInvalidDocsPath        = errors.New("docs-path must start with / and must not be /")
	ErrInvalidStatusPath      = errors.New("status-path must start with /")
	ErrInvalidMaxBodySize     = errors.New("max-body-size must be greater than 0")
	ErrInvalidMaxURILength    = errors.New("max-uri-length must not be negative")
	ErrInvalidRateLimit       = errors.New("rate-limit-source-ip must not be negative")
	ErrInvalidRateLimitBurst  = errors.New("rate-limit-source-ip-burst must be greater than 0 when rate limiting is enabled")
	ErrInvalidShutdownTimeout = errors.New("server-shutdown-timeout must be greater than 0")
	ErrInvalidUpstreamTimeout = errors.New("upstream-timeout must not be negative")
	ErrUnsupportedLogFormat   = errors.New("log-format must be either 'text' or 'json'")
	ErrPublicDirNotConfigured = errors.New("public-dir must be defined")
	ErrMetricsAddressInUse    = errors.New("metrics-address must not be one of the listen addresses")
)

var environments = []string{"development", "test", ProductionEnvironment}

func validateConfig(config *Config) error {
	var result *multierror.Error

	for _, err := range []error{
		validateListeners(config),
		validateGeneral(config),
		validateDocs(config),
		validateRateLimit(config),
		validateServer(config),
		validateLog(config),
	} {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if len(config.Listeners.HTTP) == 0 && len(config.Listeners.Proxyv2) == 0 {
		return ErrNoListener
	}

	if config.General.MetricsAddress == "" {
		return nil
	}

	for _, addrs := range [][]string{config.Listeners.HTTP, config.Listeners.Proxyv2} {
		for _, addr := range addrs {
			if addr == config.General.MetricsAddress {
				return ErrMetricsAddressInUse
			}
		}
	}

	return nil
}

func validateGeneral(config *Config) error {
	var result *multierror.Error

	known := false
	for _, env := range environments {
		known = known || config.General.Environment == env
	}
	if !known {
		result = multierror.Append(result, ErrUnknownEnvironment)
	}

	if config.General.PublicDir == "" {
		result = multierror.Append(result, ErrPublicDirNotConfigured)
	}

	if config.General.StatusPath != "" && !strings.HasPrefix(config.General.StatusPath, "/") {
		result = multierror.Append(result, ErrInvalidStatusPath)
	}

	if config.General.MaxBodySize <= 0 {
		result = multierror.Append(result, ErrInvalidMaxBodySize)
	}

	if config.General.MaxURILength < 0 {
		result = multierror.Append(result, ErrInvalidMaxURILength)
	}

	return result.ErrorOrNil()
}

func validateDocs(config *Config) error {
	path := strings.TrimSuffix(config.Docs.Path, "/")
	if !strings.HasPrefix(path, "/") {
		return ErrInvalidDocsPath
	}

	return nil
}

func validateRateLimit(config *Config) error {
	if config.RateLimit.SourceIPLimitPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	if config.RateLimit.SourceIPLimitPerSecond > 0 && config.RateLimit.SourceIPBurst < 1 {
		return ErrInvalidRateLimitBurst
	}

	return nil
}

func validateServer(config *Config) error {
	var result *multierror.Error

	if config.Server.ShutdownTimeout <= 0 {
		result = multierror.Append(result, ErrInvalidShutdownTimeout)
	}

	if config.Upstreams.TTFBTimeout < 0 {
		result = multierror.Append(result, ErrInvalidUpstreamTimeout)
	}

	return result.ErrorOrNil()
}

func validateLog(config *Config) error {
	switch config.Log.Format {
	case "text", "json":
		return nil
	}

	return ErrUnsupportedLogFormat
}
