package request

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetStateWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	require.Nil(t, GetState(r))
	require.False(t, IsCommitted(r))
}

func TestMiddlewareTracksResponseState(t *testing.T) {
	tests := map[string]struct {
		handler         http.HandlerFunc
		expectedStatus  int
		expectedWritten int64
		committed       bool
	}{
		"nothing_written": {
			handler:   func(w http.ResponseWriter, r *http.Request) {},
			committed: false,
		},
		"explicit_status": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, "created")
			},
			expectedStatus:  http.StatusCreated,
			expectedWritten: 7,
			committed:       true,
		},
		"implicit_status": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "ok")
			},
			expectedStatus:  http.StatusOK,
			expectedWritten: 2,
			committed:       true,
		},
		"second_write_header_is_ignored": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: http.StatusConflict,
			committed:      true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var state *State

			handler := NewMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				state = GetState(r)
				require.NotNil(t, state)
				require.False(t, IsCommitted(r))

				tt.handler(w, r)

				require.Equal(t, tt.committed, IsCommitted(r))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tt.committed, state.Committed())
			require.Equal(t, tt.expectedStatus, state.Status())
			require.Equal(t, tt.expectedWritten, state.BytesWritten())
		})
	}
}

func TestGetRemoteAddrWithoutPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.RemoteAddr = "192.168.1.1:4000"
	require.Equal(t, "192.168.1.1", GetRemoteAddrWithoutPort(r))

	r.RemoteAddr = "192.168.1.1"
	require.Equal(t, "192.168.1.1", GetRemoteAddrWithoutPort(r))

	r.RemoteAddr = "[::1]:4000"
	require.Equal(t, "::1", GetRemoteAddrWithoutPort(r))
}

func TestOriginalURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/nonexistent?page=2", nil)
	require.Equal(t, "/api/nonexistent?page=2", OriginalURL(r))

	r, err := http.NewRequest(http.MethodGet, "http://localhost/api/users?x=1", nil)
	require.NoError(t, err)
	require.Equal(t, "/api/users?x=1", OriginalURL(r))
}
