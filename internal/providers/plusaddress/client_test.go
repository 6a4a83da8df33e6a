package plusaddress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/resilience"
)

func newServer(t *testing.T, handler func(w http.ResponseWriter, origin string)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != suggestPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req suggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(w, req.Origin)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeAlias(w http.ResponseWriter, alias string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(suggestResponse{PlusAddress: alias})
}

func newTestClient(url string) *Client {
	return NewClient(config.PlusAddressConfig{URL: url, Timeout: 2 * time.Second}, nil)
}

func TestSuggestPlusAddress(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, origin string) {
		if origin == "https://shop.example" {
			writeAlias(w, "elvis+shop@example.com")
			return
		}
		writeAlias(w, "elvis+other@example.com")
	})
	c := newTestClient(srv.URL)
	ctx := context.Background()

	alias, err := c.SuggestPlusAddress(ctx, "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "elvis+shop@example.com", alias)

	alias, err = c.SuggestPlusAddress(ctx, "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "elvis+shop@example.com", alias)
	assert.Equal(t, int32(1), hits.Load(), "second lookup is served from cache")

	alias, err = c.SuggestPlusAddress(ctx, "https://news.example")
	require.NoError(t, err)
	assert.Equal(t, "elvis+other@example.com", alias)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSuggestPlusAddressFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, origin string)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ string) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "empty alias",
			handler: func(w http.ResponseWriter, _ string) {
				writeAlias(w, "")
			},
		},
		{
			name: "malformed alias",
			handler: func(w http.ResponseWriter, _ string) {
				writeAlias(w, "not-an-email")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.handler)
			c := newTestClient(srv.URL)

			alias, err := c.SuggestPlusAddress(context.Background(), "https://shop.example")
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Empty(t, alias)
		})
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv, _ := newServer(t, func(w http.ResponseWriter, _ string) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeAlias(w, "elvis+shop@example.com")
	})
	c := newTestClient(srv.URL)

	_, err := c.SuggestPlusAddress(context.Background(), "https://shop.example")
	require.ErrorIs(t, err, ErrUnavailable)

	fail.Store(false)
	alias, err := c.SuggestPlusAddress(context.Background(), "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "elvis+shop@example.com", alias)
}

func TestBreakerStopsCallingDeadService(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, _ string) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(srv.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.SuggestPlusAddress(ctx, "https://shop.example")
		require.ErrorIs(t, err, ErrUnavailable)
	}
	require.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.SuggestPlusAddress(ctx, "https://shop.example")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), hits.Load(), "open breaker fails fast")
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	_, err := c.SuggestPlusAddress(context.Background(), "https://shop.example")
	assert.ErrorIs(t, err, ErrUnavailable)
}
