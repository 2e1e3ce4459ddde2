package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polylab/internal/domain"
)

const pricesHistoryPath = "/prices-history"

// FetchPriceHistory obtiene la serie completa de precios de un token del
// CLOB a la fidelity dada (minutos por muestra), ordenada por timestamp
// ascendente. Las filas malformadas se descartan una a una; una serie
// vacía no es un error.
func (c *Client) FetchPriceHistory(ctx context.Context, tokenID string, fidelity int) (domain.PriceSeries, error) {
	u := fmt.Sprintf("%s%s?market=%s&interval=max&fidelity=%d",
		c.clobBase, pricesHistoryPath, url.QueryEscape(tokenID), fidelity)

	var resp priceHistoryResponse
	if err := c.get(ctx, c.clobLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("clob.FetchPriceHistory: token %s: %w", shortToken(tokenID), err)
	}

	series := make(domain.PriceSeries, 0, len(resp.History))
	for _, row := range resp.History {
		t, okT := parseFloat(row.T)
		p, okP := parseFloat(row.P)
		if !okT || !okP {
			continue
		}
		series = append(series, domain.PricePoint{TS: int64(t), Price: p})
	}
	series.Sort()

	slog.Debug("price history fetched",
		"token", shortToken(tokenID),
		"samples", len(series),
	)
	return series, nil
}

// shortToken recorta un token id largo para logs y mensajes de error.
func shortToken(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}
