package httperrors

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"gitlab.com/servicemarket/marketplace-api/internal/errortracking"
	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

const (
	kindError    = "error"
	kindNotFound = "not_found"
)

// errorBody is the only error shape clients ever receive
type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Normalizer turns failures and unmatched requests into JSON error responses.
// In production mode stack traces are never sent to clients.
type Normalizer struct {
	production bool
}

// NewNormalizer returns a Normalizer for the given operating mode
func NewNormalizer(production bool) *Normalizer {
	return &Normalizer{production: production}
}

// Production reports whether the normalizer omits diagnostic details
func (n *Normalizer) Production() bool {
	return n.production
}

// ServeError writes the normalized response for err. When the response was
// already started for r the failure is only logged and reported.
func (n *Normalizer) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	route := routeOf(r)

	l := logging.LogRequest(r).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		l.Error("request failed")
		errortracking.CaptureRequestFailure(err, r, status, route)
	} else {
		l.Debug("request rejected")
	}

	if request.IsCommitted(r) {
		logging.LogRequest(r).WithError(err).Warn("response already committed, dropping error response")
		metrics.CommittedFailures.Inc()
		return
	}

	body := errorBody{Message: err.Error()}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	if !n.production {
		body.Stack = Stack(err)
	}

	metrics.ErrorResponses.WithLabelValues(strconv.Itoa(status), kindError).Inc()
	serveJSON(w, status, body)
}

// ServeNotFound writes the fixed not-found response for r
func (n *Normalizer) ServeNotFound(w http.ResponseWriter, r *http.Request) {
	if request.IsCommitted(r) {
		return
	}

	metrics.ErrorResponses.WithLabelValues(strconv.Itoa(http.StatusNotFound), kindNotFound).Inc()
	serveJSON(w, http.StatusNotFound, errorBody{Message: "Not Found - " + request.OriginalURL(r)})
}

func serveJSON(w http.ResponseWriter, status int, body errorBody) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	// URLs in messages keep their & < > characters
	enc.SetEscapeHTML(false)
	// the encoding of two plain strings cannot fail
	_ = enc.Encode(body)

	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	header := w.Header()
	header.Del("Content-Length")
	header.Del("Content-Encoding")
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(data)
}

func routeOf(r *http.Request) string {
	if state := request.GetState(r); state != nil {
		return state.Route
	}

	return ""
}
