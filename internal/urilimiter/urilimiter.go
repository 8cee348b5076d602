package urilimiter

import (
	"net/http"

	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
)

// NewMiddleware rejects requests whose URI is longer than limit. A limit of 0
// disables the check.
func NewMiddleware(handler http.Handler, limit int, normalizer *httperrors.Normalizer) http.Handler {
	if limit == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.RequestURI) > limit {
			normalizer.ServeError(w, r, httperrors.New(http.StatusRequestURITooLong, "URI Too Long"))

			return
		}

		handler.ServeHTTP(w, r)
	})
}
