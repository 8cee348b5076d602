package rejectmethods

import (
	"net/http"

	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
)

var acceptedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// NewMiddleware returns middleware which rejects all unknown http methods
func NewMiddleware(handler http.Handler, normalizer *httperrors.Normalizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptedMethods[r.Method] {
			normalizer.ServeError(w, r, httperrors.New(http.StatusMethodNotAllowed, "Method Not Allowed"))
			return
		}

		handler.ServeHTTP(w, r)
	})
}
