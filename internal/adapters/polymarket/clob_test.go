package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/polylab/internal/adapters/polymarket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, clobSrv, gammaSrv *httptest.Server) *polymarket.Client {
	t.Helper()
	clobURL := ""
	gammaURL := ""
	if clobSrv != nil {
		clobURL = clobSrv.URL
	}
	if gammaSrv != nil {
		gammaURL = gammaSrv.URL
	}
	client, err := polymarket.NewClient(clobURL, gammaURL, polymarket.DefaultRetries)
	require.NoError(t, err)
	return client
}

func TestFetchPriceHistory_Success(t *testing.T) {
	fixture := `{
		"history": [
			{"t": 1700000300, "p": 0.52},
			{"t": 1700000000, "p": 0.50},
			{"t": 1700000600, "p": 0.55}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices-history", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "tok_abc", q.Get("market"))
		assert.Equal(t, "max", q.Get("interval"))
		assert.Equal(t, "1", q.Get("fidelity"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	series, err := client.FetchPriceHistory(context.Background(), "tok_abc", 1)

	require.NoError(t, err)
	require.Len(t, series, 3)
	// Ordenada ascendente aunque la API venga desordenada.
	assert.Equal(t, int64(1700000000), series[0].TS)
	assert.Equal(t, int64(1700000300), series[1].TS)
	assert.Equal(t, int64(1700000600), series[2].TS)
	assert.Equal(t, 0.50, series[0].Price)
}

func TestFetchPriceHistory_MalformedRowsSkipped(t *testing.T) {
	fixture := `{
		"history": [
			{"t": 1700000000, "p": 0.50},
			{"t": "oops", "p": 0.99},
			{"t": 1700000600}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	series, err := client.FetchPriceHistory(context.Background(), "tok_abc", 1)

	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 0.50, series[0].Price)
}

func TestFetchPriceHistory_EmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history": []}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	series, err := client.FetchPriceHistory(context.Background(), "tok_abc", 1)

	require.NoError(t, err)
	assert.True(t, series.Empty())
}
