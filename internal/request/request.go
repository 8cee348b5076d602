package request

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
)

type ctxKey string

const (
	ctxStateKey ctxKey = "state"
)

// State is the per-request context of the dispatch shell. It is created when
// the request arrives and dropped once the handler chain returns.
type State struct {
	// Route is the name of the route that accepted the request
	Route string
	// Body holds the parsed JSON request body, if any
	Body json.RawMessage

	status    int
	written   int64
	committed bool
}

// Committed reports whether response headers were already sent
func (s *State) Committed() bool {
	return s.committed
}

// Status returns the status code sent to the client, 0 if nothing was sent yet
func (s *State) Status() int {
	return s.status
}

// BytesWritten returns the number of body bytes sent to the client
func (s *State) BytesWritten() int64 {
	return s.written
}

// WithState saves the state in the request's context
func WithState(r *http.Request, state *State) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxStateKey, state))
}

// GetState extracts the state from the request's context, nil when the request
// did not pass through NewMiddleware
func GetState(r *http.Request) *State {
	state, _ := r.Context().Value(ctxStateKey).(*State)
	return state
}

// IsCommitted reports whether a response was already started for r
func IsCommitted(r *http.Request) bool {
	state := GetState(r)

	return state != nil && state.committed
}

// NewMiddleware attaches a fresh State to every request and keeps its response
// fields up to date
func NewMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &State{}

		handler.ServeHTTP(&stateResponseWriter{ResponseWriter: w, state: state}, WithState(r, state))
	})
}

// GetRemoteAddrWithoutPort strips the port from the r.RemoteAddr if present
func GetRemoteAddrWithoutPort(r *http.Request) string {
	remoteAddr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return remoteAddr
}

// OriginalURL returns the request target as sent by the client
func OriginalURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}

	return r.URL.RequestURI()
}

type stateResponseWriter struct {
	http.ResponseWriter
	state *State
}

func (w *stateResponseWriter) WriteHeader(status int) {
	if !w.state.committed {
		w.state.committed = true
		w.state.status = status
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *stateResponseWriter) Write(b []byte) (int, error) {
	if !w.state.committed {
		w.state.committed = true
		w.state.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.state.written += int64(n)

	return n, err
}

func (w *stateResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.state.committed {
			w.state.committed = true
			w.state.status = http.StatusOK
		}

		f.Flush()
	}
}

// Unwrap is used by http.ResponseController
func (w *stateResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
