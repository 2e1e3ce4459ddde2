package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/polylab/internal/domain"
)

const gammaMarketsPath = "/markets"

// FetchClosedMarkets pagina GET /markets de Gamma y devuelve hasta
// maxMarkets mercados binarios resueltos, del más viejo al más nuevo.
//
// Gamma lista por id descendente (los más nuevos primero); avanzamos por
// offset hasta juntar el cupo o hasta que una página venga corta o vacía.
// El sort final por close_ts deja el resultado listo para el split
// cronológico aguas abajo.
func (c *Client) FetchClosedMarkets(ctx context.Context, maxMarkets, pageSize int) ([]domain.MarketSample, error) {
	var samples []domain.MarketSample
	offset := 0

	for len(samples) < maxMarkets {
		url := fmt.Sprintf("%s%s?closed=true&limit=%d&offset=%d&order=id&ascending=false",
			c.gammaBase, gammaMarketsPath, pageSize, offset)

		// Cada registro se decodifica por separado: uno malformado se
		// salta sin abortar la página.
		var batch []json.RawMessage
		if err := c.get(ctx, c.gammaLimiter, url, &batch); err != nil {
			return nil, fmt.Errorf("gamma.FetchClosedMarkets: page offset=%d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		kept := 0
		for _, raw := range batch {
			var gm gammaMarket
			if err := json.Unmarshal(raw, &gm); err != nil {
				continue
			}
			sample, ok := mapClosedMarket(gm)
			if !ok {
				continue
			}
			samples = append(samples, sample)
			kept++
			if len(samples) >= maxMarkets {
				break
			}
		}

		slog.Debug("closed markets page",
			"offset", offset,
			"received", len(batch),
			"kept", kept,
			"total", len(samples),
		)

		if len(batch) < pageSize {
			break
		}
		offset += len(batch)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].CloseTS < samples[j].CloseTS
	})

	slog.Info("closed markets fetched", "total", len(samples))
	return samples, nil
}
