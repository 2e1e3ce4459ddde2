package ports

import (
	"context"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// HistoryProvider obtiene la serie histórica de precios de un token
// desde el CLOB.
type HistoryProvider interface {
	// FetchPriceHistory devuelve la serie completa del token a la
	// fidelity dada (minutos por muestra), ordenada por timestamp
	// ascendente. Una serie vacía no es un error: el token puede no
	// tener historia.
	FetchPriceHistory(ctx context.Context, tokenID string, fidelity int) (domain.PriceSeries, error)
}
