package healthcheck

import (
	"io"
	"net/http"
)

// LivenessMessage is the body served on the API root
const LivenessMessage = "API is running..."

// Handler answers the API root so clients and load balancers can tell the
// process is up
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			io.WriteString(w, LivenessMessage)
		}
	})
}
