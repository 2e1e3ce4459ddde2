package histcache

// store.go - two-tier price series cache: an in-memory TTL tier in front
// of one JSON file per token under <dir>/histories/<token>.json, encoded
// as [[ts, price], ...].
//
// The contract is get-or-fetch: a known non-empty series is served from
// cache, anything else runs fetch. Empty fetch results are still written
// to disk (they record the upstream answer) but are never treated as
// final: the next call fetches again. Corrupt or unreadable files count
// as misses.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alejandrodnm/polylab/internal/domain"
)

const historiesDir = "histories"

type memEntry struct {
	series   domain.PriceSeries
	storedAt time.Time
}

// Store implements ports.SeriesCache.
type Store struct {
	dir string
	ttl time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
}

// New creates a Store rooted at dir. ttl bounds the memory tier only;
// the disk tier never expires. ttl <= 0 disables memory expiry.
func New(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl, mem: make(map[string]memEntry)}
}

// GetOrFetch returns the series for token, consulting memory, then disk,
// then fetch. Fetch errors propagate unchanged; a failed disk write after
// a successful fetch is an error too, the cache directory is part of the
// ingestion contract.
func (s *Store) GetOrFetch(ctx context.Context, token string, fetch func(context.Context) (domain.PriceSeries, error)) (domain.PriceSeries, error) {
	if series, ok := s.fromMemory(token); ok {
		return series, nil
	}
	if series, ok := s.fromDisk(token); ok {
		s.memoize(token, series)
		return series, nil
	}

	series, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.writeDisk(token, series); err != nil {
		return nil, fmt.Errorf("histcache.GetOrFetch: persist %s: %w", token, err)
	}
	if !series.Empty() {
		s.memoize(token, series)
	}
	return series, nil
}

func (s *Store) fromMemory(token string) (domain.PriceSeries, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.mem[token]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(e.storedAt) > s.ttl {
		delete(s.mem, token)
		return nil, false
	}
	return e.series, true
}

func (s *Store) fromDisk(token string) (domain.PriceSeries, bool) {
	raw, err := os.ReadFile(s.path(token))
	if err != nil {
		return nil, false
	}
	series := decodeSeries(raw)
	if series.Empty() {
		// An empty cached series is not final: refetch.
		return nil, false
	}
	return series, true
}

func (s *Store) memoize(token string, series domain.PriceSeries) {
	s.mu.Lock()
	s.mem[token] = memEntry{series: series, storedAt: time.Now()}
	s.mu.Unlock()
}

func (s *Store) writeDisk(token string, series domain.PriceSeries) error {
	pairs := make([][2]float64, len(series))
	for i, p := range series {
		pairs[i] = [2]float64{float64(p.TS), p.Price}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.dir, historiesDir), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(token), data, 0o644)
}

func (s *Store) path(token string) string {
	return filepath.Join(s.dir, historiesDir, token+".json")
}

// decodeSeries parses [[ts, price], ...]. Items that do not fit the pair
// shape are dropped one by one; anything worse makes the whole file a miss.
func decodeSeries(raw []byte) domain.PriceSeries {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Debug("histcache: unreadable cache file", "err", err)
		return nil
	}
	series := make(domain.PriceSeries, 0, len(items))
	for _, item := range items {
		var pair [2]json.Number
		if err := json.Unmarshal(item, &pair); err != nil {
			continue
		}
		ts, err := pair[0].Int64()
		if err != nil {
			f, ferr := pair[0].Float64()
			if ferr != nil {
				continue
			}
			ts = int64(f)
		}
		price, err := pair[1].Float64()
		if err != nil {
			continue
		}
		series = append(series, domain.PricePoint{TS: ts, Price: price})
	}
	return series
}
