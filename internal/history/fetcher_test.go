package history_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/alejandrodnm/polylab/internal/history"
)

// --- mocks ---

type mockMarketProvider struct {
	samples []domain.MarketSample
	err     error

	maxMarkets int
	pageSize   int
}

func (m *mockMarketProvider) FetchClosedMarkets(_ context.Context, maxMarkets, pageSize int) ([]domain.MarketSample, error) {
	m.maxMarkets = maxMarkets
	m.pageSize = pageSize
	return m.samples, m.err
}

type mockHistoryProvider struct {
	mu       sync.Mutex
	series   map[string]domain.PriceSeries
	errs     map[string]error
	calls    map[string]int
	fidelity int
}

func (m *mockHistoryProvider) FetchPriceHistory(_ context.Context, tokenID string, fidelity int) (domain.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[tokenID]++
	m.fidelity = fidelity
	if err := m.errs[tokenID]; err != nil {
		return nil, err
	}
	return m.series[tokenID], nil
}

func (m *mockHistoryProvider) callCount(tokenID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[tokenID]
}

// passthroughCache registra los tokens pedidos y delega en fetch.
type passthroughCache struct {
	mu     sync.Mutex
	tokens []string
}

func (c *passthroughCache) GetOrFetch(ctx context.Context, token string, fetch func(context.Context) (domain.PriceSeries, error)) (domain.PriceSeries, error) {
	c.mu.Lock()
	c.tokens = append(c.tokens, token)
	c.mu.Unlock()
	return fetch(ctx)
}

// --- helpers ---

func makeSample(id, yesToken string) domain.MarketSample {
	return domain.MarketSample{
		MarketID: id,
		Question: "Will X happen?",
		CloseTS:  1709294400,
		YesToken: yesToken,
		YesWon:   true,
	}
}

func series(points ...float64) domain.PriceSeries {
	out := make(domain.PriceSeries, len(points))
	for i, p := range points {
		out[i] = domain.PricePoint{TS: int64(100 + i*60), Price: p}
	}
	return out
}

// --- tests ---

func TestFetcher_Markets_PassesBounds(t *testing.T) {
	mp := &mockMarketProvider{samples: []domain.MarketSample{makeSample("1", "tok-a")}}
	f := history.New(history.DefaultConfig(), mp, &mockHistoryProvider{}, nil)

	samples, err := f.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 1200, mp.maxMarkets)
	assert.Equal(t, 500, mp.pageSize)
}

func TestFetcher_Markets_WrapsError(t *testing.T) {
	mp := &mockMarketProvider{err: errors.New("gamma down")}
	f := history.New(history.DefaultConfig(), mp, &mockHistoryProvider{}, nil)

	_, err := f.Markets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gamma down")
}

func TestFetcher_History_GoesThroughCache(t *testing.T) {
	hp := &mockHistoryProvider{series: map[string]domain.PriceSeries{"tok-a": series(0.4, 0.5)}}
	cache := &passthroughCache{}
	f := history.New(history.DefaultConfig(), &mockMarketProvider{}, hp, cache)

	got, err := f.History(context.Background(), "tok-a")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"tok-a"}, cache.tokens)
	assert.Equal(t, 1, hp.fidelity)
}

func TestFetcher_History_NilCacheFetchesDirect(t *testing.T) {
	hp := &mockHistoryProvider{series: map[string]domain.PriceSeries{"tok-a": series(0.4)}}
	f := history.New(history.DefaultConfig(), &mockMarketProvider{}, hp, nil)

	got, err := f.History(context.Background(), "tok-a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, hp.callCount("tok-a"))
}

func TestFetcher_Histories_SkipsFailuresAndEmpties(t *testing.T) {
	hp := &mockHistoryProvider{
		series: map[string]domain.PriceSeries{
			"tok-a": series(0.4, 0.5),
			"tok-c": {}, // histórico vacío
		},
		errs: map[string]error{"tok-b": errors.New("timeout")},
	}
	f := history.New(history.DefaultConfig(), &mockMarketProvider{}, hp, nil)

	samples := []domain.MarketSample{
		makeSample("1", "tok-a"),
		makeSample("2", "tok-b"),
		makeSample("3", "tok-c"),
	}

	histories, err := f.Histories(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Len(t, histories["tok-a"], 2)
}

func TestFetcher_Histories_DedupesTokens(t *testing.T) {
	hp := &mockHistoryProvider{series: map[string]domain.PriceSeries{"tok-a": series(0.4)}}
	f := history.New(history.DefaultConfig(), &mockMarketProvider{}, hp, nil)

	samples := []domain.MarketSample{
		makeSample("1", "tok-a"),
		makeSample("2", "tok-a"),
		makeSample("3", ""), // sin token
	}

	histories, err := f.Histories(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, 1, hp.callCount("tok-a"))
}

func TestFetcher_Histories_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hp := &mockHistoryProvider{series: map[string]domain.PriceSeries{"tok-a": series(0.4)}}
	f := history.New(history.DefaultConfig(), &mockMarketProvider{}, hp, nil)

	histories, err := f.Histories(ctx, []domain.MarketSample{makeSample("1", "tok-a")})
	require.Error(t, err)
	assert.Empty(t, histories)
	assert.Equal(t, 0, hp.callCount("tok-a"))
}
