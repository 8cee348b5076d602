package upstream

import (
	"context"
	"errors"
	stdlog "log"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"

	"gitlab.com/servicemarket/marketplace-api/internal/dispatch"
	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
	"gitlab.com/servicemarket/marketplace-api/internal/httptransport"
	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

type ctxKey struct{}

// Collection forwards every request beneath its prefix to an upstream service
type Collection struct {
	name   string
	target *url.URL
	proxy  *httputil.ReverseProxy
}

// NewTransport returns the metered round tripper used to reach the named
// upstream. Correlation IDs are propagated to the upstream.
func NewTransport(name string, ttfbTimeout time.Duration) http.RoundTripper {
	return correlation.NewInstrumentedRoundTripper(
		httptransport.NewMeteredRoundTripper(
			httptransport.DefaultTransport,
			name,
			metrics.UpstreamTraceDuration,
			metrics.UpstreamDuration,
			metrics.UpstreamRequests,
			ttfbTimeout,
		),
	)
}

// New returns a collection proxying to target through transport. The request
// path and query are preserved and appended to the target path.
func New(name string, target *url.URL, transport http.RoundTripper) *Collection {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director

	proxy.Director = func(r *http.Request) {
		originalHost := r.Host

		director(r)

		r.Host = target.Host
		if originalHost != "" {
			r.Header.Set("X-Forwarded-Host", originalHost)
		}
	}
	proxy.Transport = transport
	proxy.ErrorHandler = errorHandler(name)
	proxy.ErrorLog = stdlog.New(logrus.StandardLogger().WriterLevel(logrus.WarnLevel), "", 0)

	return &Collection{name: name, target: target, proxy: proxy}
}

// Name of the collection
func (c *Collection) Name() string {
	return c.name
}

// Target is the base URL of the upstream service
func (c *Collection) Target() *url.URL {
	return c.target
}

// Mount routes every request reaching the collection to the upstream
func (c *Collection) Mount(r *dispatch.Router) {
	r.HandlePrefix("", c.serve)
}

func (c *Collection) serve(w http.ResponseWriter, r *http.Request) error {
	var proxyErr error

	c.proxy.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, &proxyErr)))

	return proxyErr
}

// errorHandler hands transport failures back to serve so they are normalized
// like any other endpoint error
func errorHandler(name string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logging.LogRequest(r).WithError(err).WithField("collection", name).Warn("upstream request failed")

		slot, ok := r.Context().Value(ctxKey{}).(*error)
		if !ok {
			return
		}

		if isTimeout(err) {
			*slot = httperrors.Errorf(http.StatusGatewayTimeout, "Gateway Timeout - %s", name)
			return
		}

		*slot = httperrors.Errorf(http.StatusBadGateway, "Bad Gateway - %s", name)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, httptransport.ErrTTFBTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// Unconfigured returns a collection answering every request with 503
func Unconfigured(name string) dispatch.Collection {
	return dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.HandlePrefix("", func(w http.ResponseWriter, r *http.Request) error {
			return httperrors.Errorf(http.StatusServiceUnavailable, "%s service is not configured", name)
		})
	})
}
