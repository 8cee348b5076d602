package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrBuilt is returned when routes are registered after Build
	ErrBuilt = errors.New("route table is already built")
	// ErrInvalidPrefix is returned for prefixes that cannot be mounted
	ErrInvalidPrefix = errors.New("invalid route prefix")
	// ErrDuplicatePrefix is returned when a prefix is registered twice
	ErrDuplicatePrefix = errors.New("duplicate route prefix")
)

// Entry is a single row of the route table
type Entry struct {
	Name       string
	Prefix     string
	Collection Collection
}

type exactRoute struct {
	path    string
	handler http.Handler
	methods []string
}

// FileServer serves files for requests no collection handled. It reports
// whether the request was served.
type FileServer interface {
	ServeFileHTTP(w http.ResponseWriter, r *http.Request) (bool, error)
}

// ErrorNormalizer turns failures and unmatched requests into client responses
type ErrorNormalizer interface {
	ServeError(w http.ResponseWriter, r *http.Request, err error)
	ServeNotFound(w http.ResponseWriter, r *http.Request)
}

// Builder collects routes at startup. Build freezes them into a Shell.
type Builder struct {
	normalizer ErrorNormalizer
	entries    []Entry
	exact      []exactRoute
	static     FileServer
	built      bool
}

// NewBuilder returns an empty Builder whose shell reports failures through normalizer
func NewBuilder(normalizer ErrorNormalizer) *Builder {
	return &Builder{normalizer: normalizer}
}

// Register mounts c under prefix. The prefix must start with a slash, must not
// be the root and must not repeat an earlier registration.
func (b *Builder) Register(name, prefix string, c Collection) error {
	if b.built {
		return ErrBuilt
	}

	if c == nil {
		return fmt.Errorf("collection %q: nil collection", name)
	}

	normalized, err := normalizePrefix(prefix)
	if err != nil {
		return fmt.Errorf("collection %q: %w", name, err)
	}

	for _, e := range b.entries {
		if e.Prefix == normalized {
			return fmt.Errorf("collection %q: %w %q already used by %q", name, ErrDuplicatePrefix, normalized, e.Name)
		}
	}

	if name == "" {
		name = normalized
	}

	b.entries = append(b.entries, Entry{Name: name, Prefix: normalized, Collection: c})

	return nil
}

// HandleExact serves handler for requests whose path equals path. Exact routes
// are evaluated before any prefix.
func (b *Builder) HandleExact(path string, handler http.Handler, methods ...string) error {
	if b.built {
		return ErrBuilt
	}

	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w %q: must start with a slash", ErrInvalidPrefix, path)
	}

	b.exact = append(b.exact, exactRoute{path: path, handler: handler, methods: methods})

	return nil
}

// ServeStatic sets the file server used for requests no route handled
func (b *Builder) ServeStatic(fs FileServer) {
	b.static = fs
}

// ServeDocumentation mounts the documentation collection under path
func (b *Builder) ServeDocumentation(path string, c Collection) error {
	return b.Register("docs", path, c)
}

// Entries returns the registered routes in evaluation order
func (b *Builder) Entries() []Entry {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)

	sortEntries(entries)

	return entries
}

// Build freezes the route table. The Builder cannot be used afterwards.
func (b *Builder) Build() *Shell {
	b.built = true

	return newShell(b.normalizer, b.Entries(), b.exact, b.static)
}

func normalizePrefix(prefix string) (string, error) {
	if prefix == "" || prefix[0] != '/' {
		return "", fmt.Errorf("%w %q: must start with a slash", ErrInvalidPrefix, prefix)
	}

	if strings.ContainsAny(prefix, "{}") {
		return "", fmt.Errorf("%w %q: must not contain variables", ErrInvalidPrefix, prefix)
	}

	normalized := strings.TrimRight(prefix, "/")
	if normalized == "" {
		return "", fmt.Errorf("%w %q: the root is reserved", ErrInvalidPrefix, prefix)
	}

	return normalized, nil
}

// sortEntries orders entries longest prefix first, keeping registration order
// between prefixes of equal length
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Prefix) > len(entries[j].Prefix)
	})
}
