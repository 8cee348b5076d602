package dispatch_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"gitlab.com/servicemarket/marketplace-api/internal/dispatch"
	"gitlab.com/servicemarket/marketplace-api/internal/dispatch/mock"
	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
)

func serve(t *testing.T, handler http.Handler, method, url string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	request.NewMiddleware(handler).ServeHTTP(w, httptest.NewRequest(method, url, nil))

	return w
}

// echo is a collection answering every request with its own name
func echo(name string) dispatch.Collection {
	return dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.HandlePrefix("", func(w http.ResponseWriter, r *http.Request) error {
			_, err := io.WriteString(w, name)
			return err
		})
	})
}

func newBuilder() *dispatch.Builder {
	return dispatch.NewBuilder(httperrors.NewNormalizer(true))
}

func TestRegisterValidation(t *testing.T) {
	tests := map[string]struct {
		prefix      string
		collection  dispatch.Collection
		expectedErr error
	}{
		"valid":              {prefix: "/api/users", collection: echo("users")},
		"trailing_slash":     {prefix: "/api/users/", collection: echo("users"), expectedErr: dispatch.ErrDuplicatePrefix},
		"empty":              {prefix: "", collection: echo("users"), expectedErr: dispatch.ErrInvalidPrefix},
		"no_leading_slash":   {prefix: "api/users", collection: echo("users"), expectedErr: dispatch.ErrInvalidPrefix},
		"root":               {prefix: "/", collection: echo("users"), expectedErr: dispatch.ErrInvalidPrefix},
		"variables":          {prefix: "/api/{name}", collection: echo("users"), expectedErr: dispatch.ErrInvalidPrefix},
		"duplicate":          {prefix: "/api/vendors", collection: echo("vendors"), expectedErr: dispatch.ErrDuplicatePrefix},
		"nil_collection":     {prefix: "/api/reviews"},
		"distinct_by_suffix": {prefix: "/api/vendorsx", collection: echo("vendorsx")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := newBuilder()
			require.NoError(t, b.Register("vendors", "/api/vendors", echo("vendors")))

			if tt.prefix == "/api/users/" {
				require.NoError(t, b.Register("users", "/api/users", echo("users")))
			}

			err := b.Register(name, tt.prefix, tt.collection)

			switch {
			case tt.expectedErr != nil:
				require.ErrorIs(t, err, tt.expectedErr)
			case tt.collection == nil:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestRegisterAfterBuild(t *testing.T) {
	b := newBuilder()
	b.Build()

	require.ErrorIs(t, b.Register("users", "/api/users", echo("users")), dispatch.ErrBuilt)
	require.ErrorIs(t, b.HandleExact("/", http.NotFoundHandler()), dispatch.ErrBuilt)
}

func TestEntriesOrder(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.Register("b", "/api/b", echo("b")))
	require.NoError(t, b.Register("api", "/api", echo("api")))
	require.NoError(t, b.Register("a", "/api/a", echo("a")))
	require.NoError(t, b.Register("long", "/api/long", echo("long")))

	var names []string
	for _, e := range b.Build().Entries() {
		names = append(names, e.Name)
	}

	require.Equal(t, []string{"long", "b", "a", "api"}, names)
}

func TestPrefixMatching(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.Register("api", "/api", echo("api")))
	require.NoError(t, b.Register("users", "/api/users", echo("users")))
	require.NoError(t, b.Register("admin", "/api/admin", dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.Handle("/stats", func(w http.ResponseWriter, r *http.Request) error {
			_, err := io.WriteString(w, "admin")
			return err
		}, http.MethodGet)
	})))
	shell := b.Build()

	tests := map[string]struct {
		url          string
		expectedBody string
	}{
		"exact_prefix":            {url: "/api/users", expectedBody: "users"},
		"prefix_with_slash":       {url: "/api/users/", expectedBody: "users"},
		"nested_path":             {url: "/api/users/42/bookings", expectedBody: "users"},
		"query_string":            {url: "/api/users?page=2", expectedBody: "users"},
		"not_a_segment_boundary":  {url: "/api/usersx", expectedBody: "api"},
		"longest_prefix_wins":     {url: "/api/admin/stats", expectedBody: "admin"},
		"falls_through_to_parent": {url: "/api/admin/unknown", expectedBody: "api"},
		"shorter_prefix":          {url: "/api/other", expectedBody: "api"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := serve(t, shell, http.MethodGet, tt.url)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestUnmatchedRequests(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.Register("users", "/api/users", echo("users")))
	require.NoError(t, b.Register("reviews", "/api/reviews", dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.Handle("", func(w http.ResponseWriter, r *http.Request) error {
			return nil
		}, http.MethodGet)
	})))
	require.NoError(t, b.HandleExact("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "API is running...")
	}), http.MethodGet))
	shell := b.Build()

	tests := map[string]struct {
		method string
		url    string
	}{
		"unknown_path":         {method: http.MethodGet, url: "/api/nonexistent"},
		"segment_boundary":     {method: http.MethodGet, url: "/api/usersx"},
		"wrong_method":         {method: http.MethodDelete, url: "/api/reviews"},
		"wrong_method_on_root": {method: http.MethodPost, url: "/"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := serve(t, shell, tt.method, tt.url)

			require.Equal(t, http.StatusNotFound, w.Code)
			require.JSONEq(t, `{"message":"Not Found - `+tt.url+`"}`, w.Body.String())
		})
	}
}

func TestExactRoute(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.HandleExact("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "API is running...")
	}), http.MethodGet))

	w := serve(t, b.Build(), http.MethodGet, "/")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "API is running...", w.Body.String())
}

func TestMountIsCalledOnce(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	collection := mock.NewMockCollection(mockCtrl)
	collection.EXPECT().
		Mount(gomock.Any()).
		Do(func(r *dispatch.Router) {
			require.Equal(t, "bookings", r.Name())
			require.Equal(t, "/api/bookings", r.Prefix())

			r.Handle("/{id}", func(w http.ResponseWriter, r *http.Request) error {
				_, err := io.WriteString(w, dispatch.Vars(r)["id"])
				return err
			}, http.MethodGet)
		}).
		Times(1)

	b := newBuilder()
	require.NoError(t, b.Register("bookings", "/api/bookings/", collection))
	shell := b.Build()

	for i := 0; i < 3; i++ {
		w := serve(t, shell, http.MethodGet, "/api/bookings/b-17")
		require.Equal(t, "b-17", w.Body.String())
	}
}

func TestRouteIsRecorded(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.Register("payments", "/api/payments", dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.HandlePrefix("", func(w http.ResponseWriter, r *http.Request) error {
			_, err := io.WriteString(w, request.GetState(r).Route)
			return err
		})
	})))

	w := serve(t, b.Build(), http.MethodPost, "/api/payments/checkout")

	require.Equal(t, "payments", w.Body.String())
}

func TestEndpointFailures(t *testing.T) {
	tests := map[string]struct {
		endpoint       dispatch.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		"error_with_status": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				return httperrors.New(http.StatusConflict, "slot already booked")
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"message":"slot already booked"}`,
		},
		"plain_error": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				return errors.New("database unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"database unavailable"}`,
		},
		"panic": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				panic("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"boom"}`,
		},
		"panic_with_error": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				panic(httperrors.New(http.StatusBadRequest, "invalid rating"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"invalid rating"}`,
		},
		"committed_then_error": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, `{"id":1}`)

				return errors.New("audit log failed")
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":1}`,
		},
		"committed_then_panic": {
			endpoint: func(w http.ResponseWriter, r *http.Request) error {
				io.WriteString(w, `{"id":1}`)

				panic("after write")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":1}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := newBuilder()
			require.NoError(t, b.Register("bookings", "/api/bookings", dispatch.CollectionFunc(func(r *dispatch.Router) {
				r.HandlePrefix("", tt.endpoint)
			})))

			w := serve(t, b.Build(), http.MethodPost, "/api/bookings")

			require.Equal(t, tt.expectedStatus, w.Code)
			require.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAbortHandlerPanicIsPropagated(t *testing.T) {
	b := newBuilder()
	require.NoError(t, b.Register("uploads", "/api/uploads", dispatch.CollectionFunc(func(r *dispatch.Router) {
		r.HandlePrefix("", func(w http.ResponseWriter, r *http.Request) error {
			panic(http.ErrAbortHandler)
		})
	})))
	shell := b.Build()

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(t, shell, http.MethodPut, "/api/uploads/avatar.png")
	})
}

func TestStaticFallback(t *testing.T) {
	tests := map[string]struct {
		served         bool
		err            error
		expectedStatus int
		expectedBody   string
	}{
		"served": {
			served:         true,
			expectedStatus: http.StatusOK,
			expectedBody:   "static",
		},
		"not_found": {
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"Not Found - /logo.png"}`,
		},
		"failure": {
			err:            errors.New("disk failure"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"disk failure"}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)

			fs := mock.NewMockFileServer(mockCtrl)
			fs.EXPECT().
				ServeFileHTTP(gomock.Any(), gomock.Any()).
				DoAndReturn(func(w http.ResponseWriter, r *http.Request) (bool, error) {
					if tt.served {
						io.WriteString(w, "static")
					}

					return tt.served, tt.err
				}).
				Times(1)

			b := newBuilder()
			require.NoError(t, b.Register("users", "/api/users", echo("users")))
			b.ServeStatic(fs)

			w := serve(t, b.Build(), http.MethodGet, "/logo.png")

			require.Equal(t, tt.expectedStatus, w.Code)
			require.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := dispatch.NewRecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("middleware failure"))
	}), httperrors.NewNormalizer(true))

	w := serve(t, handler, http.MethodGet, "/")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, `{"message":"middleware failure"}`, w.Body.String())
}
