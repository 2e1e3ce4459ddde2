package ports

import (
	"context"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// SeriesCache sirve series de precios con política get-or-compute: si el
// token ya tiene una serie no vacía cacheada la devuelve, si no ejecuta
// fetch y persiste el resultado.
type SeriesCache interface {
	// GetOrFetch devuelve la serie del token. Un resultado vacío se
	// persiste igualmente pero no se considera definitivo: la próxima
	// llamada vuelve a hacer fetch. Los errores de fetch se propagan.
	GetOrFetch(ctx context.Context, token string, fetch func(context.Context) (domain.PriceSeries, error)) (domain.PriceSeries, error)
}
