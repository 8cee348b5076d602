package metrics

import (
	"net/http"
	"sync"

	labmetrics "gitlab.com/gitlab-org/labkit/metrics"
)

var (
	handlerFactoryOnce sync.Once
	handlerFactory     labmetrics.HandlerFactory
)

// NewHTTPMiddleware instruments handler with the process wide HTTP request
// metrics. The underlying collectors are registered on first use.
func NewHTTPMiddleware(handler http.Handler) http.Handler {
	handlerFactoryOnce.Do(func() {
		handlerFactory = labmetrics.NewHandlerFactory(labmetrics.WithNamespace("marketplace_api"))
	})

	return handlerFactory(handler)
}
