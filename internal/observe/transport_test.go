package observe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trdlnk/fulfillmentlocation/internal/config"
)

func TestRouteTemplate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "list endpoint",
			path:     "/v1/fulfillmentlocations",
			expected: "/v1/fulfillmentlocations",
		},
		{
			name:     "list endpoint with trailing slash",
			path:     "/v1/fulfillmentlocations/",
			expected: "/v1/fulfillmentlocations/",
		},
		{
			name:     "alphanumeric id",
			path:     "/v1/fulfillmentlocations/bqcjg7qbvep",
			expected: "/v1/fulfillmentlocations/{id}",
		},
		{
			name:     "internal id",
			path:     "/v1/fulfillmentlocations/189",
			expected: "/v1/fulfillmentlocations/{id}",
		},
		{
			name:     "nested resource",
			path:     "/v1/fulfillmentlocations/189/calendars",
			expected: "/v1/fulfillmentlocations/{id}/calendars",
		},
		{
			name:     "unrelated path",
			path:     "/healthcheck",
			expected: "/healthcheck",
		},
		{
			name:     "similar prefix",
			path:     "/v1/fulfillmentlocationsx/189",
			expected: "/v1/fulfillmentlocationsx/189",
		},
		{
			name:     "empty string",
			path:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RouteTemplate(tt.path))
		})
	}
}

func TestHTTPTransport(t *testing.T) {
	base := http.DefaultTransport

	t.Run("unwrapped when telemetry disabled", func(t *testing.T) {
		rt := HTTPTransport(base, config.ObserveConfig{Enabled: false, HTTPTransportEnabled: true})
		assert.Same(t, base, rt)
	})

	t.Run("unwrapped when transport instrumentation disabled", func(t *testing.T) {
		rt := HTTPTransport(base, config.ObserveConfig{Enabled: true, HTTPTransportEnabled: false})
		assert.Same(t, base, rt)
	})

	t.Run("wrapped transport still delivers requests", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(server.Close)

		rt := HTTPTransport(base, config.ObserveConfig{
			Enabled:                    true,
			HTTPTransportEnabled:       true,
			HTTPConnectionTraceEnabled: true,
		})
		assert.NotSame(t, base, rt)

		client := &http.Client{Transport: rt}
		resp, err := client.Get(server.URL + "/v1/fulfillmentlocations/189")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
