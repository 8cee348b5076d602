package dispatch

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

// Shell routes requests to the mounted collections. It is immutable and safe
// for concurrent use.
type Shell struct {
	router     *mux.Router
	entries    []Entry
	static     FileServer
	normalizer ErrorNormalizer
}

func newShell(normalizer ErrorNormalizer, entries []Entry, exact []exactRoute, static FileServer) *Shell {
	s := &Shell{
		router:     mux.NewRouter(),
		entries:    entries,
		static:     static,
		normalizer: normalizer,
	}

	for _, e := range exact {
		route := s.router.Path(e.path)
		if len(e.methods) > 0 {
			route = route.Methods(e.methods...)
		}

		route.Handler(e.handler)
	}

	for _, e := range entries {
		sub := s.router.PathPrefix(e.Prefix).MatcherFunc(segmentBoundary(e.Prefix)).Subrouter()

		e.Collection.Mount(&Router{
			name:     e.Name,
			prefix:   e.Prefix,
			sub:      sub,
			endpoint: s.endpoint,
		})
	}

	fallback := http.HandlerFunc(s.serveFallback)
	s.router.NotFoundHandler = fallback
	s.router.MethodNotAllowedHandler = fallback

	return s
}

// Entries returns the route table in evaluation order
func (s *Shell) Entries() []Entry {
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)

	return entries
}

func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Shell) serveFallback(w http.ResponseWriter, r *http.Request) {
	if s.static != nil {
		served, err := s.static.ServeFileHTTP(w, r)
		if err != nil {
			s.normalizer.ServeError(w, r, err)
			return
		}

		if served {
			return
		}
	}

	s.normalizer.ServeNotFound(w, r)
}

func (s *Shell) endpoint(name string, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if state := request.GetState(r); state != nil {
			state.Route = name
		}
		metrics.RoutedRequests.WithLabelValues(name).Inc()

		defer s.recoverPanic(w, r)

		if err := h(w, r); err != nil {
			s.normalizer.ServeError(w, r, err)
		}
	})
}

func (s *Shell) recoverPanic(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}

	// net/http relies on this panic to abort the response
	if rec == http.ErrAbortHandler {
		panic(rec)
	}

	metrics.RecoveredPanics.Inc()
	logging.LogRequest(r).WithField("panic", rec).Error("recovered from panic")

	s.normalizer.ServeError(w, r, panicError(rec))
}

// NewRecoverMiddleware normalizes panics raised anywhere in handler
func NewRecoverMiddleware(handler http.Handler, normalizer ErrorNormalizer) http.Handler {
	s := &Shell{normalizer: normalizer}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer s.recoverPanic(w, r)

		handler.ServeHTTP(w, r)
	})
}

func panicError(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return errors.WithStack(err)
	}

	return errors.Errorf("%v", rec)
}

func segmentBoundary(prefix string) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		path := r.URL.Path

		return strings.HasPrefix(path, prefix) && (len(path) == len(prefix) || path[len(prefix)] == '/')
	}
}
