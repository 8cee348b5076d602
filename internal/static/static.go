package static

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"
)

const indexFile = "index.html"

var (
	errOutsideRoot    = errors.New("file found outside of public directory")
	errNotRegularFile = errors.New("not a regular file")
)

// Server serves the public directory for requests no collection handled
type Server struct {
	root           string
	fileSizeMetric prometheus.Observer
}

// New returns a Server for the directory root. The directory does not need to
// exist yet, every request is simply not served until it does.
func New(root string, fileSizeMetric prometheus.Observer) (*Server, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("public directory %q: %w", root, err)
	}

	// On some systems the public directory is reached through a symlink
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return &Server{root: abs, fileSizeMetric: fileSizeMetric}, nil
}

// Root returns the absolute path of the served directory
func (s *Server) Root() string {
	return s.root
}

// ServeFileHTTP serves the file addressed by the request path. It returns
// false when there is nothing to serve, leaving the response untouched.
func (s *Server) ServeFileHTTP(w http.ResponseWriter, r *http.Request) (bool, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false, nil
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}

	cleanPath := path.Clean(urlPath)
	if hasDotSegment(cleanPath) {
		return false, nil
	}

	fullPath, fi, err := s.resolve(cleanPath)
	if err != nil {
		return notServable(err)
	}

	if fi.IsDir() {
		indexPath := path.Join(cleanPath, indexFile)

		if !endsWithSlash(urlPath) {
			if _, _, err := s.resolve(indexPath); err != nil {
				return notServable(err)
			}

			redirectToDirectory(w, r, cleanPath)
			return true, nil
		}

		fullPath, _, err = s.resolve(indexPath)
		if err != nil {
			return notServable(err)
		}
	}

	if err := s.serveFile(w, r, fullPath); err != nil {
		return false, err
	}

	return true, nil
}

// resolve maps the cleaned URL path to a file beneath the root. Symlinks are
// followed only while they stay inside the root.
func (s *Server) resolve(cleanPath string) (string, os.FileInfo, error) {
	testPath := filepath.Join(s.root, filepath.FromSlash(cleanPath))

	fullPath, err := filepath.EvalSymlinks(testPath)
	if err != nil {
		return "", nil, err
	}

	if fullPath != s.root && !strings.HasPrefix(fullPath, s.root+string(filepath.Separator)) {
		return "", nil, errOutsideRoot
	}

	fi, err := os.Lstat(fullPath)
	if err != nil {
		return "", nil, err
	}

	if !fi.IsDir() && !fi.Mode().IsRegular() {
		return "", nil, errNotRegularFile
	}

	return fullPath, fi, nil
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, fullPath string) error {
	file, err := openNoFollow(fullPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(fullPath), err)
	}

	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return err
	}

	// the file may have been swapped between resolving and opening it
	if !fi.Mode().IsRegular() {
		return errNotRegularFile
	}

	contentType, err := detectContentType(file, fullPath)
	if err != nil {
		return err
	}

	if s.fileSizeMetric != nil {
		s.fileSizeMetric.Observe(float64(fi.Size()))
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=0")
	http.ServeContent(w, r, fullPath, fi.ModTime(), file)

	return nil
}

func notServable(err error) (bool, error) {
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, unix.ENOTDIR),
		errors.Is(err, unix.ELOOP),
		errors.Is(err, unix.ENAMETOOLONG),
		errors.Is(err, errOutsideRoot),
		errors.Is(err, errNotRegularFile):
		return false, nil
	}

	return false, err
}

func redirectToDirectory(w http.ResponseWriter, r *http.Request, cleanPath string) {
	target := cleanPath + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
