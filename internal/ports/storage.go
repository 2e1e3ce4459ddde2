package ports

import (
	"context"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// Storage persiste los runs de backtest y sus fills simulados.
type Storage interface {
	// SaveRun persiste un run con todos sus trades en una transacción.
	SaveRun(ctx context.Context, run domain.BacktestRun) error

	// GetRuns devuelve los últimos runs registrados, el más reciente
	// primero. No carga los trades de cada run.
	GetRuns(ctx context.Context, limit int) ([]domain.BacktestRun, error)

	// GetTrades devuelve los fills de un run concreto en orden temporal.
	GetTrades(ctx context.Context, runID string) ([]domain.SimulatedTrade, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
