package healthcheck_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/servicemarket/marketplace-api/internal/healthcheck"
)

func TestHandler(t *testing.T) {
	w := httptest.NewRecorder()
	healthcheck.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "API is running...", w.Body.String())
}

func TestHandlerHead(t *testing.T) {
	w := httptest.NewRecorder()
	healthcheck.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
}
