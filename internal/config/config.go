package config

import (
	"net/url"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/servicemarket/marketplace-api/internal/logging"
)

// ProductionEnvironment hides diagnostic detail from error responses
const ProductionEnvironment = "production"

// Config stores all the config options of the API server
type Config struct {
	General   General
	Listeners Listeners
	Server    Server
	Docs      Docs
	Upstreams Upstreams
	RateLimit RateLimit
	Log       Log
	Sentry    Sentry
}

// General groups settings that are general to the API server and can not
// be categorized under other head.
type General struct {
	PublicDir         string
	Environment       string
	StatusPath        string
	MetricsAddress    string
	TrustProxyHeaders bool
	HTTP2             bool
	MaxConns          int
	MaxURILength      int
	MaxBodySize       int64
	StrictJSON        bool

	DisableCrossOriginRequests bool
	PropagateCorrelationID     bool

	ShowVersion bool

	CustomHeaders []string
}

// Listeners groups the addresses to accept requests on
type Listeners struct {
	HTTP    []string
	Proxyv2 []string
}

// Server groups the HTTP server timeouts
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ListenKeepAlive   time.Duration
	ShutdownTimeout   time.Duration
}

// Docs groups settings of the API documentation endpoint
type Docs struct {
	Path string
	File string
}

// Upstreams binds collection names to the services that implement them
type Upstreams struct {
	Targets     map[string]*url.URL
	TTFBTimeout time.Duration
}

// RateLimit config struct
type RateLimit struct {
	SourceIPLimitPerSecond float64
	SourceIPBurst          int
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// Production reports whether error responses must omit diagnostic detail
func (c *Config) Production() bool {
	return c.General.Environment == ProductionEnvironment
}

func loadConfig() (*Config, error) {
	config := &Config{
		General: General{
			PublicDir:                  *publicDir,
			Environment:                *environment,
			StatusPath:                 *statusPath,
			MetricsAddress:             *metricsAddress,
			TrustProxyHeaders:          *trustProxyHeaders,
			HTTP2:                      *useHTTP2,
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			MaxBodySize:                *maxBodySize,
			StrictJSON:                 *strictJSON,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			PropagateCorrelationID:     *propagateCorrelationID,
			CustomHeaders:              header.Values(),
			ShowVersion:                *showVersion,
		},
		Listeners: Listeners{
			HTTP:    listenHTTP.Values(),
			Proxyv2: listenProxyv2.Values(),
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ListenKeepAlive:   *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		Docs: Docs{
			Path: *docsPath,
			File: *docsFile,
		},
		Upstreams: Upstreams{
			TTFBTimeout: *upstreamTimeout,
		},
		RateLimit: RateLimit{
			SourceIPLimitPerSecond: *rateLimitSourceIP,
			SourceIPBurst:          *rateLimitSourceIPBurst,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
	}

	if config.Sentry.Environment == "" {
		config.Sentry.Environment = config.General.Environment
	}

	var err error
	if config.Upstreams.Targets, err = parseUpstreams(upstreams.Values()); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LogConfig logs the effective configuration at debug level
func LogConfig(config *Config) {
	targets := make(map[string]string, len(config.Upstreams.Targets))
	for name, u := range config.Upstreams.Targets {
		targets[name] = logging.CleanURL(u.String())
	}

	log.WithFields(log.Fields{
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-cross-origin-requests": config.General.DisableCrossOriginRequests,
		"docs-file":                     config.Docs.File,
		"docs-path":                     config.Docs.Path,
		"environment":                   config.General.Environment,
		"listen-http":                   config.Listeners.HTTP,
		"listen-proxyv2":                config.Listeners.Proxyv2,
		"log-format":                    config.Log.Format,
		"max-body-size":                 config.General.MaxBodySize,
		"max-conns":                     config.General.MaxConns,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               config.General.MetricsAddress,
		"propagate-correlation-id":      config.General.PropagateCorrelationID,
		"public-dir":                    config.General.PublicDir,
		"rate-limit-source-ip":          config.RateLimit.SourceIPLimitPerSecond,
		"rate-limit-source-ip-burst":    config.RateLimit.SourceIPBurst,
		"status-path":                   config.General.StatusPath,
		"strict-json":                   config.General.StrictJSON,
		"trust-proxy-headers":           config.General.TrustProxyHeaders,
		"upstream":                      targets,
		"upstream-timeout":              config.Upstreams.TTFBTimeout,
		"use-http2":                     config.General.HTTP2,
	}).Debug("Start API server with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments,
// environment variables or via config file, and populates a Config object
// with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
