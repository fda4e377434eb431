package fulfillmentlocation_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trdlnk/fulfillmentlocation"
	"github.com/trdlnk/fulfillmentlocation/internal/testhelpers"
)

func TestNew_Defaults(t *testing.T) {
	client := newClient(t)

	assert.False(t, client.CachingEnabled())
	assert.NoError(t, client.Close())
}

func TestNew_InvalidURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{name: "relative", url: "/v1"},
		{name: "host only", url: "fulfillmentlocation.example"},
		{name: "unparseable", url: "http://[::1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fulfillmentlocation.New(fulfillmentlocation.WithURL(tc.url))
			assert.Error(t, err)
		})
	}
}

func TestNew_CacheSelection(t *testing.T) {
	t.Run("zero cache config leaves caching disabled", func(t *testing.T) {
		client := newClient(t, fulfillmentlocation.WithCache(fulfillmentlocation.CacheConfig{}))
		assert.False(t, client.CachingEnabled())
	})

	t.Run("partial cache config enables caching", func(t *testing.T) {
		client := newClient(t, fulfillmentlocation.WithCache(fulfillmentlocation.CacheConfig{TTL: time.Minute}))
		assert.True(t, client.CachingEnabled())
	})

	t.Run("injected store enables caching", func(t *testing.T) {
		client := newClient(t, fulfillmentlocation.WithStore(newMapStore()))
		assert.True(t, client.CachingEnabled())
	})

	t.Run("injected store takes precedence", func(t *testing.T) {
		mock := testhelpers.SetupMockLocationServer(t)
		store := newMapStore()
		client := newClient(t,
			fulfillmentlocation.WithURL(mock.URL()),
			fulfillmentlocation.WithCache(defaultCache),
			fulfillmentlocation.WithStore(store),
		)

		_, err := client.GetLocations(context.Background(), fulfillmentlocation.ListOptions{Authorization: "Bearer X"})
		require.NoError(t, err)

		assert.Equal(t, 1, store.Len())
	})
}

func TestClose(t *testing.T) {
	t.Run("owned cache closes repeatedly", func(t *testing.T) {
		client, err := fulfillmentlocation.New(fulfillmentlocation.WithCache(defaultCache))
		require.NoError(t, err)

		assert.NoError(t, client.Close())
		assert.NoError(t, client.Close())
	})

	t.Run("injected store is left to its owner", func(t *testing.T) {
		mock := testhelpers.SetupMockLocationServer(t)
		store := newMapStore()

		first, err := fulfillmentlocation.New(fulfillmentlocation.WithURL(mock.URL()), fulfillmentlocation.WithStore(store))
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second := newClient(t, fulfillmentlocation.WithURL(mock.URL()), fulfillmentlocation.WithStore(store))
		_, err = second.GetLocations(context.Background(), fulfillmentlocation.ListOptions{Authorization: "Bearer X"})
		require.NoError(t, err)
		assert.Equal(t, 1, store.getCalls)
	})
}

func TestWithHTTPClient(t *testing.T) {
	mock := testhelpers.SetupMockLocationServer(t)

	var used bool
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true
		return http.DefaultTransport.RoundTrip(r)
	})}

	client := newClient(t, fulfillmentlocation.WithURL(mock.URL()), fulfillmentlocation.WithHTTPClient(hc))

	_, err := client.GetLocations(context.Background(), fulfillmentlocation.ListOptions{Authorization: "Bearer X"})
	require.NoError(t, err)

	assert.True(t, used)
	assert.Zero(t, hc.Timeout, "caller's client is not modified")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
