package config

import (
	"time"

	"github.com/namsral/flag"

	"gitlab.com/servicemarket/marketplace-api/internal/docs"
	"gitlab.com/servicemarket/marketplace-api/internal/httptransport"
	"gitlab.com/servicemarket/marketplace-api/internal/jsonbody"
)

var (
	publicDir         = flag.String("public-dir", "public", "The directory static assets are served from")
	environment       = flag.String("environment", "development", "The operating environment: 'development', 'test' or 'production'. Error responses only carry stack traces outside production")
	statusPath        = flag.String("status-path", "", "The url path for a status page, e.g., /-/healthcheck")
	metricsAddress    = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	trustProxyHeaders = flag.Bool("trust-proxy-headers", false, "Take the client address and scheme from X-Forwarded-For and X-Forwarded-Proto")
	useHTTP2          = flag.Bool("use-http2", false, "Accept cleartext HTTP/2 (h2c) on the HTTP listeners")

	propagateCorrelationID = flag.Bool("propagate-correlation-id", true, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")

	maxConns     = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP or proxy listeners, 0 for no limit")
	maxURILength = flag.Int("max-uri-length", 2048, "Limit the length of URI, 0 for unlimited.")
	maxBodySize  = flag.Int64("max-body-size", jsonbody.DefaultLimit, "Limit the size of JSON request bodies, in bytes")
	strictJSON   = flag.Bool("strict-json", true, "Only accept objects and arrays as JSON request bodies")

	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")

	docsPath = flag.String("docs-path", docs.DefaultPath, "The url path the API documentation is served on")
	docsFile = flag.String("docs-file", "", "OpenAPI document (YAML or JSON) to serve, generated from the route table when empty")

	upstreamTimeout = flag.Duration("upstream-timeout", httptransport.DefaultTTFBTimeout, "Maximum time to wait for the first byte of an upstream response, 0 for no limit")

	// HTTP rate limits
	rateLimitSourceIP      = flag.Float64("rate-limit-source-ip", 0.0, "Rate limit HTTP requests per second from a single IP, 0 means is disabled")
	rateLimitSourceIPBurst = flag.Int("rate-limit-source-ip-burst", 100, "Rate limit HTTP requests from a single IP, maximum burst allowed per second")

	sentryDSN         = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	logFormat         = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose        = flag.Bool("log-verbose", false, "Verbose logging")

	// HTTP server timeouts
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverKeepAlive         = flag.Duration("server-keep-alive", 15*time.Second, "KeepAlive specifies the keep-alive period for network connections accepted by this listener. If zero, keep-alives are enabled if supported by the protocol and operating system. If negative, keep-alives are disabled.")
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout (default: 30s)")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP    = newListFlag(",")
	listenProxyv2 = newListFlag(",")
	upstreams     = newListFlag(",")

	// header values may contain commas
	header = newListFlag(";;")
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(listenHTTP, "listen-http", "The address(es) to listen on for HTTP requests")
	flag.Var(listenProxyv2, "listen-proxyv2", "The address(es) to listen on for HTTP requests wrapped in PROXYv2 (https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt)")
	flag.Var(upstreams, "upstream", "The service behind a collection, as name=url, e.g. bookings=http://bookings.internal:8080")
	flag.Var(header, "header", "The additional http header(s) that should be send to the client")

	// read from -config=/path/to/marketplace-api-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
