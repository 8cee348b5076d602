package customheaders

import (
	"net/http"
)

// NewMiddleware sets headers on every response before handler writes it.
// Handlers may still override them. Without headers, handler is returned as is.
func NewMiddleware(handler http.Handler, headers http.Header) http.Handler {
	if len(headers) == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddCustomHeaders(w, headers)

		handler.ServeHTTP(w, r)
	})
}
