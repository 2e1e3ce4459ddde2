package ports

import (
	"context"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// MarketProvider obtiene mercados binarios ya resueltos desde Gamma.
type MarketProvider interface {
	// FetchClosedMarkets devuelve hasta maxMarkets mercados cerrados y
	// resueltos sin ambigüedad, ordenados por cierre ascendente.
	// Pagina automáticamente de pageSize en pageSize; los registros
	// malformados se descartan sin abortar la página.
	FetchClosedMarkets(ctx context.Context, maxMarkets, pageSize int) ([]domain.MarketSample, error)
}
