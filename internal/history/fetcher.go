package history

// fetcher.go - ingestion service for resolved-market price histories.
// Pulls the closed-market catalog from Gamma, then hydrates one price
// series per yes-token through the on-disk cache. Token failures are
// logged and skipped: one dead market must not sink a 1000-market pull.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/alejandrodnm/polylab/internal/ports"
)

// Config bounds a fetch run.
type Config struct {
	// MaxMarkets caps the catalog pull. Gamma lists tens of thousands of
	// closed markets; the replay only needs the most recent slice.
	MaxMarkets int
	PageSize   int
	// Fidelity is the CLOB sampling interval in minutes.
	Fidelity int
	Workers  int
}

// DefaultConfig returns the bounds used by the fetch command.
func DefaultConfig() Config {
	return Config{
		MaxMarkets: 1200,
		PageSize:   500,
		Fidelity:   1,
		Workers:    4,
	}
}

// Fetcher orchestrates catalog and price-history ingestion.
type Fetcher struct {
	cfg     Config
	markets ports.MarketProvider
	prices  ports.HistoryProvider
	cache   ports.SeriesCache
}

// New creates a Fetcher. cache may be nil, in which case every History
// call goes straight to the provider.
func New(cfg Config, markets ports.MarketProvider, prices ports.HistoryProvider, cache ports.SeriesCache) *Fetcher {
	return &Fetcher{cfg: cfg, markets: markets, prices: prices, cache: cache}
}

// Markets returns resolved binary markets, oldest close first.
func (f *Fetcher) Markets(ctx context.Context) ([]domain.MarketSample, error) {
	samples, err := f.markets.FetchClosedMarkets(ctx, f.cfg.MaxMarkets, f.cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("history.Markets: fetch closed markets: %w", err)
	}
	return samples, nil
}

// History returns the price series for one token, cache first.
func (f *Fetcher) History(ctx context.Context, tokenID string) (domain.PriceSeries, error) {
	fetch := func(ctx context.Context) (domain.PriceSeries, error) {
		return f.prices.FetchPriceHistory(ctx, tokenID, f.cfg.Fidelity)
	}
	if f.cache == nil {
		return fetch(ctx)
	}
	return f.cache.GetOrFetch(ctx, tokenID, fetch)
}

// Histories hydrates the yes-token series for every sample using a worker
// pool. Tokens that fail or come back empty are skipped with a log; the
// returned map only holds non-empty series. The error is non-nil only
// when the context is cancelled.
func (f *Fetcher) Histories(ctx context.Context, samples []domain.MarketSample) (map[string]domain.PriceSeries, error) {
	tokens := dedupeTokens(samples)
	if len(tokens) == 0 {
		return map[string]domain.PriceSeries{}, nil
	}

	workers := f.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tokens) {
		workers = len(tokens)
	}

	type tokenSeries struct {
		token  string
		series domain.PriceSeries
	}

	workCh := make(chan string, len(tokens))
	resultCh := make(chan tokenSeries, len(tokens))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for token := range workCh {
				if ctx.Err() != nil {
					continue // drain without fetching
				}
				series, err := f.History(ctx, token)
				if err != nil {
					slog.Warn("price history fetch failed", "token", shortID(token), "err", err)
					continue
				}
				if series.Empty() {
					slog.Debug("empty price history", "token", shortID(token))
					continue
				}
				resultCh <- tokenSeries{token: token, series: series}
			}
		}()
	}

	for _, token := range tokens {
		workCh <- token
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	histories := make(map[string]domain.PriceSeries, len(tokens))
	done := 0
	for rs := range resultCh {
		histories[rs.token] = rs.series
		done++
		if done%100 == 0 {
			slog.Info("history fetch progress", "hydrated", done, "tokens", len(tokens))
		}
	}

	if err := ctx.Err(); err != nil {
		return histories, fmt.Errorf("history.Histories: %w", err)
	}

	slog.Info("history fetch complete", "hydrated", len(histories), "tokens", len(tokens))
	return histories, nil
}

// dedupeTokens keeps the first occurrence of each yes-token, in sample order.
func dedupeTokens(samples []domain.MarketSample) []string {
	seen := make(map[string]struct{}, len(samples))
	tokens := make([]string, 0, len(samples))
	for _, s := range samples {
		if s.YesToken == "" {
			continue
		}
		if _, ok := seen[s.YesToken]; ok {
			continue
		}
		seen[s.YesToken] = struct{}{}
		tokens = append(tokens, s.YesToken)
	}
	return tokens
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}
