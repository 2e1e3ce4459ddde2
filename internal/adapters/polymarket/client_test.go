package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/polylab/internal/adapters/polymarket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NegativeRetries(t *testing.T) {
	_, err := polymarket.NewClient("", "", -1)
	assert.Error(t, err)
}

func TestClient_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history": [{"t": 1700000000, "p": 0.5}]}`))
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 1)
	require.NoError(t, err)

	series, err := client.FetchPriceHistory(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.Len(t, series, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history": []}`))
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 1)
	require.NoError(t, err)

	_, err = client.FetchPriceHistory(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RetriesMalformedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"history": [truncated`))
			return
		}
		w.Write([]byte(`{"history": []}`))
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 1)
	require.NoError(t, err)

	_, err = client.FetchPriceHistory(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ExhaustedRetriesIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 1)
	require.NoError(t, err)

	_, err = client.FetchPriceHistory(context.Background(), "tok", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	// retries=1 → 2 intentos en total.
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorIsFatalWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "unknown token"}`))
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 3)
	require.NoError(t, err)

	_, err = client.FetchPriceHistory(context.Background(), "tok", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "unknown token")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := polymarket.NewClient(srv.URL, "", 3)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.FetchPriceHistory(ctx, "tok", 1)
	assert.Error(t, err)
}
