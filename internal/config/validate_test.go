package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		General: General{
			PublicDir:   "public",
			Environment: "development",
			MaxBodySize: 100 * 1024,
		},
		Listeners: Listeners{
			HTTP: []string{"127.0.0.1:3000"},
		},
		Server: Server{
			ShutdownTimeout: 30 * time.Second,
		},
		Docs: Docs{
			Path: "/api-docs",
		},
		Upstreams: Upstreams{
			TTFBTimeout: 15 * time.Second,
		},
		Log: Log{
			Format: "json",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         func(*Config)
		expectedErr error
	}{
		{
			name: "valid",
			cfg:  func(*Config) {},
		},
		{
			name: "proxyv2_listener_only",
			cfg: func(cfg *Config) {
				cfg.Listeners.HTTP = nil
				cfg.Listeners.Proxyv2 = []string{"127.0.0.1:3001"}
			},
		},
		{
			name: "no_listeners",
			cfg: func(cfg *Config) {
				cfg.Listeners.HTTP = nil
			},
			expectedErr: ErrNoListener,
		},
		{
			name: "metrics_on_listen_address",
			cfg: func(cfg *Config) {
				cfg.General.MetricsAddress = "127.0.0.1:3000"
			},
			expectedErr: ErrMetricsAddressInUse,
		},
		{
			name: "unknown_environment",
			cfg: func(cfg *Config) {
				cfg.General.Environment = "staging"
			},
			expectedErr: ErrUnknownEnvironment,
		},
		{
			name: "no_public_dir",
			cfg: func(cfg *Config) {
				cfg.General.PublicDir = ""
			},
			expectedErr: ErrPublicDirNotConfigured,
		},
		{
			name: "relative_status_path",
			cfg: func(cfg *Config) {
				cfg.General.StatusPath = "healthz"
			},
			expectedErr: ErrInvalidStatusPath,
		},
		{
			name: "zero_body_size",
			cfg: func(cfg *Config) {
				cfg.General.MaxBodySize = 0
			},
			expectedErr: ErrInvalidMaxBodySize,
		},
		{
			name: "negative_uri_length",
			cfg: func(cfg *Config) {
				cfg.General.MaxURILength = -1
			},
			expectedErr: ErrInvalidMaxURILength,
		},
		{
			name: "docs_on_root",
			cfg: func(cfg *Config) {
				cfg.Docs.Path = "/"
			},
			expectedErr: ErrInvalidDocsPath,
		},
		{
			name: "relative_docs_path",
			cfg: func(cfg *Config) {
				cfg.Docs.Path = "api-docs"
			},
			expectedErr: ErrInvalidDocsPath,
		},
		{
			name: "negative_rate_limit",
			cfg: func(cfg *Config) {
				cfg.RateLimit.SourceIPLimitPerSecond = -1
			},
			expectedErr: ErrInvalidRateLimit,
		},
		{
			name: "rate_limit_without_burst",
			cfg: func(cfg *Config) {
				cfg.RateLimit.SourceIPLimitPerSecond = 10
				cfg.RateLimit.SourceIPBurst = 0
			},
			expectedErr: ErrInvalidRateLimitBurst,
		},
		{
			name: "no_shutdown_timeout",
			cfg: func(cfg *Config) {
				cfg.Server.ShutdownTimeout = 0
			},
			expectedErr: ErrInvalidShutdownTimeout,
		},
		{
			name: "negative_upstream_timeout",
			cfg: func(cfg *Config) {
				cfg.Upstreams.TTFBTimeout = -time.Second
			},
			expectedErr: ErrInvalidUpstreamTimeout,
		},
		{
			name: "unsupported_log_format",
			cfg: func(cfg *Config) {
				cfg.Log.Format = "xml"
			},
			expectedErr: ErrUnsupportedLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.cfg(cfg)

			err := validateConfig(cfg)
			if tt.expectedErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.expectedErr), err.Error())
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConfigValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Listeners.HTTP = nil
	cfg.General.Environment = "staging"
	cfg.Log.Format = "xml"

	err := validateConfig(cfg)
	require.Error(t, err)

	for _, expected := range []error{ErrNoListener, ErrUnknownEnvironment, ErrUnsupportedLogFormat} {
		require.True(t, errors.Is(err, expected), expected.Error())
	}
}

func TestProduction(t *testing.T) {
	cfg := validConfig()
	require.False(t, cfg.Production())

	cfg.General.Environment = ProductionEnvironment
	require.True(t, cfg.Production())
}
