package main

import (
	"fmt"
	"net/http"

	ghandlers "github.com/gorilla/handlers"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"

	"gitlab.com/servicemarket/marketplace-api/internal/config"
	"gitlab.com/servicemarket/marketplace-api/internal/customheaders"
	"gitlab.com/servicemarket/marketplace-api/internal/dispatch"
	"gitlab.com/servicemarket/marketplace-api/internal/docs"
	"gitlab.com/servicemarket/marketplace-api/internal/healthcheck"
	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
	"gitlab.com/servicemarket/marketplace-api/internal/jsonbody"
	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/internal/ratelimiter"
	"gitlab.com/servicemarket/marketplace-api/internal/rejectmethods"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
	"gitlab.com/servicemarket/marketplace-api/internal/static"
	"gitlab.com/servicemarket/marketplace-api/internal/upstream"
	"gitlab.com/servicemarket/marketplace-api/internal/urilimiter"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

const apiTitle = "Marketplace API"

var corsMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

type theApp struct {
	config        *config.Config
	normalizer    *httperrors.Normalizer
	customHeaders http.Header
	// collections overrides the upstream collection bound to a name
	collections map[string]dispatch.Collection
}

func newApp(cfg *config.Config) (*theApp, error) {
	headers, err := customheaders.ParseHeaderString(cfg.General.CustomHeaders)
	if err != nil {
		return nil, fmt.Errorf("parsing custom headers: %w", err)
	}

	return &theApp{
		config:        cfg,
		normalizer:    httperrors.NewNormalizer(cfg.Production()),
		customHeaders: headers,
		collections:   make(map[string]dispatch.Collection),
	}, nil
}

// collection returns what serves /api/<name>: an in-process collection if one
// was installed, the configured upstream, or a collection answering 503
func (a *theApp) collection(name string) dispatch.Collection {
	if c, ok := a.collections[name]; ok {
		return c
	}

	target, ok := a.config.Upstreams.Targets[name]
	if !ok {
		log.WithField("collection", name).Warn("no upstream configured, requests will be answered with 503")
		return upstream.Unconfigured(name)
	}

	transport := upstream.NewTransport(name, a.config.Upstreams.TTFBTimeout)
	c := upstream.New(name, target, transport)

	log.WithFields(log.Fields{
		"collection": name,
		"target":     logging.CleanURL(c.Target().String()),
	}).Info("proxying collection to upstream")

	return c
}

func (a *theApp) buildShell() (*dispatch.Shell, error) {
	b := dispatch.NewBuilder(a.normalizer)

	if err := b.HandleExact("/", healthcheck.Handler(), http.MethodGet, http.MethodHead); err != nil {
		return nil, err
	}

	for _, name := range config.CollectionNames {
		if err := b.Register(name, "/api/"+name, a.collection(name)); err != nil {
			return nil, fmt.Errorf("registering %s: %w", name, err)
		}
	}

	doc, err := a.document(b.Entries())
	if err != nil {
		return nil, err
	}

	apiDocs, err := docs.New(a.config.Docs.Path, doc)
	if err != nil {
		return nil, err
	}

	if err := b.ServeDocumentation(a.config.Docs.Path, apiDocs); err != nil {
		return nil, fmt.Errorf("registering documentation: %w", err)
	}

	publicDir, err := static.New(a.config.General.PublicDir, metrics.StaticFileSize)
	if err != nil {
		return nil, err
	}

	log.WithField("public_dir", publicDir.Root()).Debug("serving static files")
	b.ServeStatic(publicDir)

	return b.Build(), nil
}

func (a *theApp) document(entries []dispatch.Entry) (docs.Document, error) {
	if a.config.Docs.File == "" {
		return docs.Generate(apiTitle, VERSION, entries), nil
	}

	return docs.Load(a.config.Docs.File)
}

func (a *theApp) rateLimiter(handler http.Handler) http.Handler {
	if a.config.RateLimit.SourceIPLimitPerSecond <= 0 {
		return handler
	}

	rl := ratelimiter.New(
		ratelimiter.WithSourceIPLimitPerSecond(a.config.RateLimit.SourceIPLimitPerSecond),
		ratelimiter.WithSourceIPBurstSize(a.config.RateLimit.SourceIPBurst),
	)

	return rl.SourceIPLimiter(handler, a.normalizer)
}

func (a *theApp) corsHandler(handler http.Handler) http.Handler {
	if a.config.General.DisableCrossOriginRequests {
		return handler
	}

	return cors.New(cors.Options{
		AllowedMethods: corsMethods,
		AllowedHeaders: []string{"*"},
	}).Handler(handler)
}

func (a *theApp) correlationHandler(handler http.Handler) http.Handler {
	opts := []correlation.InboundHandlerOption{correlation.WithSetResponseHeader()}
	if a.config.General.PropagateCorrelationID {
		opts = append(opts, correlation.WithPropagation())
	}

	return correlation.InjectCorrelationID(handler, opts...)
}

// buildHandler assembles the middleware chain around the dispatch shell,
// innermost first
func (a *theApp) buildHandler(shell http.Handler) (http.Handler, error) {
	handler := jsonbody.NewMiddleware(shell, jsonbody.Config{
		Limit:  a.config.General.MaxBodySize,
		Strict: a.config.General.StrictJSON,
	}, a.normalizer)

	handler = a.rateLimiter(handler)
	if a.config.General.TrustProxyHeaders {
		handler = ghandlers.ProxyHeaders(handler)
	}

	handler = a.corsHandler(handler)
	handler = customheaders.NewMiddleware(handler, a.customHeaders)
	handler = rejectmethods.NewMiddleware(handler, a.normalizer)
	handler = urilimiter.NewMiddleware(handler, a.config.General.MaxURILength, a.normalizer)
	handler = metrics.NewHTTPMiddleware(handler)

	handler, err := logging.BasicAccessLogger(handler, a.config.Log.Format)
	if err != nil {
		return nil, err
	}

	handler = a.correlationHandler(handler)
	handler = healthcheck.NewMiddleware(handler, a.config.General.StatusPath)
	handler = dispatch.NewRecoverMiddleware(handler, a.normalizer)

	return request.NewMiddleware(handler), nil
}

// Handler returns the complete HTTP handler of the API
func (a *theApp) Handler() (http.Handler, error) {
	shell, err := a.buildShell()
	if err != nil {
		return nil, err
	}

	return a.buildHandler(shell)
}
