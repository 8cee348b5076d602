package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUpstreams(t *testing.T) {
	tests := []struct {
		name            string
		values          []string
		expectedTargets map[string]string
		expectedErr     error
	}{
		{
			name:            "none",
			values:          nil,
			expectedTargets: map[string]string{},
		},
		{
			name:   "several",
			values: []string{"users=http://users:8080", " bookings = https://bookings.internal/v1 "},
			expectedTargets: map[string]string{
				"users":    "http://users:8080",
				"bookings": "https://bookings.internal/v1",
			},
		},
		{
			name:            "empty_values_are_skipped",
			values:          []string{"", "admin=http://admin:9000"},
			expectedTargets: map[string]string{"admin": "http://admin:9000"},
		},
		{
			name:        "missing_equals",
			values:      []string{"http://users:8080"},
			expectedErr: ErrUpstreamSyntax,
		},
		{
			name:        "missing_name",
			values:      []string{"=http://users:8080"},
			expectedErr: ErrUpstreamSyntax,
		},
		{
			name:        "unknown_collection",
			values:      []string{"carts=http://carts:8080"},
			expectedErr: ErrUpstreamUnknownCollection,
		},
		{
			name:        "duplicate",
			values:      []string{"reviews=http://a:1", "reviews=http://b:2"},
			expectedErr: ErrUpstreamDuplicate,
		},
		{
			name:        "unsupported_scheme",
			values:      []string{"uploads=ftp://files:21"},
			expectedErr: ErrUpstreamUnsupportedScheme,
		},
		{
			name:        "missing_host",
			values:      []string{"payments=http://"},
			expectedErr: ErrUpstreamInvalidURL,
		},
		{
			name:        "unparsable",
			values:      []string{"vendors=http://vendors:port"},
			expectedErr: ErrUpstreamInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := parseUpstreams(tt.values)
			if tt.expectedErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.expectedErr), err.Error())
				return
			}

			require.NoError(t, err)

			got := make(map[string]string, len(targets))
			for name, u := range targets {
				got[name] = u.String()
			}
			require.Equal(t, tt.expectedTargets, got)
		})
	}
}

func TestParseUpstreamsReportsEveryProblem(t *testing.T) {
	_, err := parseUpstreams([]string{"carts=http://carts", "uploads=ftp://files"})
	require.Error(t, err)

	require.True(t, errors.Is(err, ErrUpstreamUnknownCollection))
	require.True(t, errors.Is(err, ErrUpstreamUnsupportedScheme))
}

func TestCollectionNames(t *testing.T) {
	require.Equal(t, []string{"users", "vendors", "services", "bookings", "reviews", "admin", "payments", "uploads"}, CollectionNames)
}
