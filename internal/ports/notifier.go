package ports

import (
	"context"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// Notifier presenta resultados de backtest al usuario. La implementación
// de consola alterna entre tablas formateadas y líneas compactas.
type Notifier interface {
	// Notify muestra un report por estrategia.
	Notify(ctx context.Context, reports []domain.Report) error

	// PrintTrades muestra el detalle de fills de un resultado.
	PrintTrades(result domain.BacktestResult)

	// PrintRuns muestra los runs persistidos, el más reciente primero.
	PrintRuns(runs []domain.BacktestRun)

	// PrintStrategies lista las estrategias registradas.
	PrintStrategies(names []string)
}
