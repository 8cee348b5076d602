package dispatch

//go:generate mockgen -destination mock/mock_dispatch.go -package mock gitlab.com/servicemarket/marketplace-api/internal/dispatch Collection,FileServer

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandlerFunc is an endpoint of a handler collection. A returned error is
// normalized by the shell unless the endpoint already started a response.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Collection is a group of endpoints mounted under a single path prefix
type Collection interface {
	// Mount registers the collection endpoints. Paths passed to the router are
	// relative to the prefix the collection is registered under.
	Mount(r *Router)
}

// CollectionFunc adapts a function to the Collection interface
type CollectionFunc func(r *Router)

// Mount calls f(r)
func (f CollectionFunc) Mount(r *Router) {
	f(r)
}

// Router registers the endpoints of one collection
type Router struct {
	name     string
	prefix   string
	sub      *mux.Router
	endpoint func(name string, h HandlerFunc) http.Handler
}

// Name of the collection being mounted
func (r *Router) Name() string {
	return r.name
}

// Prefix the collection is mounted under
func (r *Router) Prefix() string {
	return r.prefix
}

// Handle registers h for the exact path relative to the collection prefix.
// An empty path is the prefix itself. With no methods every method matches.
func (r *Router) Handle(path string, h HandlerFunc, methods ...string) {
	route := r.sub.Path(path)
	if len(methods) > 0 {
		route = route.Methods(methods...)
	}

	route.Handler(r.endpoint(r.name, h))
}

// HandlePrefix registers h for path and everything beneath it. An empty path
// catches every request reaching the collection.
func (r *Router) HandlePrefix(path string, h HandlerFunc, methods ...string) {
	route := r.sub.NewRoute()
	if path != "" {
		route = route.PathPrefix(path)
	}
	if len(methods) > 0 {
		route = route.Methods(methods...)
	}

	route.Handler(r.endpoint(r.name, h))
}

// Vars returns the path variables matched for r, if any
func Vars(r *http.Request) map[string]string {
	return mux.Vars(r)
}
