package testhelpers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// AssertHTTP404 asserts handler returns the normalized 404 body for url
func AssertHTTP404(t *testing.T, handler http.Handler, method, url string) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, nil)
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code, "HTTP status")
	AssertErrorBody(t, w, "Not Found - "+url)
}

// AssertErrorBody asserts the recorded response is a JSON error with message
func AssertErrorBody(t *testing.T, w *httptest.ResponseRecorder, message string) map[string]string {
	t.Helper()

	contentType, _, _ := mime.ParseMediaType(w.Header().Get("Content-Type"))
	require.Equal(t, "application/json", contentType, "Content-Type")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, message, body["message"])

	return body
}

// AssertRedirectTo asserts that handler redirects to particular URL
func AssertRedirectTo(t *testing.T, handler http.HandlerFunc, method string,
	url string, values url.Values, expectedURL string) {
	t.Helper()

	require.HTTPRedirect(t, handler, method, url, values)

	recorder := httptest.NewRecorder()

	req := httptest.NewRequest(method, url, nil)
	req.URL.RawQuery = values.Encode()

	handler(recorder, req)

	require.Equal(t, expectedURL, recorder.Header().Get("Location"))
}

// AssertLogContains checks that wantLogEntry is contained in at least one of the log entries
func AssertLogContains(t *testing.T, wantLogEntry string, entries []*logrus.Entry) {
	t.Helper()

	if wantLogEntry != "" {
		messages := make([]string, len(entries))
		for k, entry := range entries {
			messages[k] = entry.Message
		}

		require.Contains(t, messages, wantLogEntry)
	}
}

// Close closes c and fails the test on error
func Close(t *testing.T, c io.Closer) {
	t.Helper()

	require.NoError(t, c.Close())
}
