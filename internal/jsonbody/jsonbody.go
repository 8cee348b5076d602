package jsonbody

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

// DefaultLimit is the largest body accepted when no limit is configured
const DefaultLimit = 100 * 1024

// jsonWhitespace is the only whitespace allowed around a JSON value
const jsonWhitespace = " \t\r\n"

const (
	reasonTooLarge  = "too_large"
	reasonMalformed = "malformed"
	reasonStrict    = "strict"
)

// Config controls which bodies the parser accepts
type Config struct {
	// Limit is the maximum body size in bytes
	Limit int64
	// Strict only accepts objects and arrays at the top level
	Strict bool
}

// NewMiddleware parses JSON request bodies before handler runs. Rejected
// bodies are answered by normalizer and never reach handler.
func NewMiddleware(handler http.Handler, cfg Config, normalizer *httperrors.Normalizer) http.Handler {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) || !IsJSON(r.Header.Get("Content-Type")) {
			handler.ServeHTTP(w, r)
			return
		}

		body, err := read(w, r, cfg)
		if err != nil {
			normalizer.ServeError(w, r, err)
			return
		}

		if len(body) > 0 {
			if state := request.GetState(r); state != nil {
				state.Body = body
			}
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		handler.ServeHTTP(w, r)
	})
}

// IsJSON reports whether contentType is application/json or an
// application/*+json media type
func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	if mediaType == "application/json" {
		return true
	}

	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func read(w http.ResponseWriter, r *http.Request, cfg Config) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.Limit))
	if err != nil {
		if isTooLarge(err) {
			metrics.RejectedBodies.WithLabelValues(reasonTooLarge).Inc()
			return nil, httperrors.New(http.StatusRequestEntityTooLarge, "request entity too large")
		}

		return nil, httperrors.Wrap(fmt.Errorf("reading request body: %w", err), http.StatusBadRequest)
	}

	trimmed := bytes.Trim(body, jsonWhitespace)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if cfg.Strict && trimmed[0] != '{' && trimmed[0] != '[' {
		metrics.RejectedBodies.WithLabelValues(reasonStrict).Inc()
		return nil, httperrors.Errorf(http.StatusBadRequest, "Unexpected token %q in JSON at position %d", trimmed[0], bytes.IndexByte(body, trimmed[0]))
	}

	if err := validate(trimmed); err != nil {
		metrics.RejectedBodies.WithLabelValues(reasonMalformed).Inc()
		return nil, err
	}

	return json.RawMessage(trimmed), nil
}

func validate(body []byte) error {
	if json.Valid(body) {
		return nil
	}

	// Valid does not report where parsing stopped, Unmarshal does
	var v interface{}
	err := json.Unmarshal(body, &v)

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return httperrors.Errorf(http.StatusBadRequest, "%s in JSON at position %d", syntaxErr.Error(), syntaxErr.Offset)
	}

	return httperrors.New(http.StatusBadRequest, "invalid JSON")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError

	return errors.As(err, &maxErr)
}
