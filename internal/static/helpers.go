package static

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

func endsWithSlash(path string) bool {
	return strings.HasSuffix(path, "/")
}

// hasDotSegment reports whether any segment of the cleaned path is a dotfile
func hasDotSegment(cleanPath string) bool {
	for _, segment := range strings.Split(cleanPath, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}

	return false
}

func openNoFollow(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|unix.O_NOFOLLOW, 0)
}

// Detect file's content-type either by extension or mime-sniffing.
// Implementation is adapted from Golang's `http.serveContent()`
func detectContentType(file io.ReadSeeker, path string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType != "" {
		return contentType, nil
	}

	var buf [512]byte

	// Using `io.ReadFull()` because `file.Read()` may be chunked.
	// Ignoring errors because we don't care if the 512 bytes cannot be read.
	n, _ := io.ReadFull(file, buf[:])
	contentType = http.DetectContentType(buf[:n])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return contentType, nil
}
