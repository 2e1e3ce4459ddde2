package storage

// sqlite.go — persistencia de runs de backtest.
//
// Estrategia:
//   - `backtest_runs`: UNA fila por run con las métricas ya derivadas
//     (return, win rate, drawdown, sharpe). Es lo que consume el listado.
//   - `simulated_trades`: una fila por fill, colgando de su run. Solo se
//     leen bajo demanda; el listado no los hidrata.
//   - Append-only: los runs son históricos, no se actualizan ni se podan.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/polylab/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen por run, con métricas precalculadas
CREATE TABLE IF NOT EXISTS backtest_runs (
    id              TEXT PRIMARY KEY,
    strategy        TEXT     NOT NULL,
    dataset         TEXT     NOT NULL DEFAULT '',
    started_at      DATETIME NOT NULL,
    initial_balance REAL     NOT NULL DEFAULT 0,
    final_balance   REAL     NOT NULL DEFAULT 0,
    total_return    REAL     NOT NULL DEFAULT 0,
    win_rate        REAL     NOT NULL DEFAULT 0,
    max_drawdown    REAL     NOT NULL DEFAULT 0,
    sharpe          REAL     NOT NULL DEFAULT 0,
    total_trades    INTEGER  NOT NULL DEFAULT 0
);

-- Un fill simulado por fila, asociado a su run
CREATE TABLE IF NOT EXISTS simulated_trades (
    id         TEXT PRIMARY KEY,
    run_id     TEXT     NOT NULL REFERENCES backtest_runs(id),
    ts         DATETIME NOT NULL,
    market_id  TEXT     NOT NULL,
    side       TEXT     NOT NULL,
    token      TEXT,
    price      REAL     NOT NULL DEFAULT 0,
    size       REAL     NOT NULL DEFAULT 0,
    slippage   REAL     NOT NULL DEFAULT 0,
    fee        REAL     NOT NULL DEFAULT 0,
    total_cost REAL     NOT NULL DEFAULT 0,
    strategy   TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON backtest_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON simulated_trades(run_id);
`

// defaultRunLimit acota el listado cuando el caller no pide un límite.
const defaultRunLimit = 20

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y
// aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveRun persiste el run y todos sus trades en una sola transacción:
// o queda todo, o no queda nada.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.BacktestRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
			(id, strategy, dataset, started_at, initial_balance, final_balance,
			 total_return, win_rate, max_drawdown, sharpe, total_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Strategy,
		run.Dataset,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.InitialBalance,
		run.FinalBalance,
		run.TotalReturn,
		run.WinRate,
		run.MaxDrawdown,
		run.Sharpe,
		len(run.Trades),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	if len(run.Trades) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO simulated_trades
				(id, run_id, ts, market_id, side, token,
				 price, size, slippage, fee, total_cost, strategy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: prepare trades: %w", err)
		}
		defer stmt.Close()

		for _, tr := range run.Trades {
			if _, err := stmt.ExecContext(ctx,
				tr.ID,
				run.ID,
				tr.Timestamp.UTC().Format(time.RFC3339),
				tr.MarketID,
				tr.Side,
				tr.Token,
				tr.Price,
				tr.Size,
				tr.Slippage,
				tr.Fee,
				tr.TotalCost,
				tr.Strategy,
			); err != nil {
				return fmt.Errorf("storage.SaveRun: insert trade %s: %w", tr.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns devuelve los últimos runs, el más reciente primero. Los trades
// no se hidratan: para el listado basta con total_trades.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]domain.BacktestRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, dataset, started_at, initial_balance, final_balance,
		       total_return, win_rate, max_drawdown, sharpe, total_trades
		FROM backtest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.BacktestRun
	for rows.Next() {
		var run domain.BacktestRun
		var startedAt string

		if err := rows.Scan(
			&run.ID,
			&run.Strategy,
			&run.Dataset,
			&startedAt,
			&run.InitialBalance,
			&run.FinalBalance,
			&run.TotalReturn,
			&run.WinRate,
			&run.MaxDrawdown,
			&run.Sharpe,
			&run.TotalTrades,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}

		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetTrades devuelve los fills de un run concreto en orden temporal.
func (s *SQLiteStorage) GetTrades(ctx context.Context, runID string) ([]domain.SimulatedTrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, market_id, side, token,
		       price, size, slippage, fee, total_cost, strategy
		FROM simulated_trades
		WHERE run_id = ?
		ORDER BY ts ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.SimulatedTrade
	for rows.Next() {
		var tr domain.SimulatedTrade
		var ts string

		if err := rows.Scan(
			&tr.ID,
			&ts,
			&tr.MarketID,
			&tr.Side,
			&tr.Token,
			&tr.Price,
			&tr.Size,
			&tr.Slippage,
			&tr.Fee,
			&tr.TotalCost,
			&tr.Strategy,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}

		tr.Timestamp, _ = time.Parse(time.RFC3339, ts)
		trades = append(trades, tr)
	}

	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
