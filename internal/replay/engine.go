package replay

// engine.go — replay cronológico de snapshots contra una estrategia.
//
// Una variable de balance, una curva de equity sembrada con el balance
// inicial y un punto por snapshot procesado. El engine no arrastra
// posiciones entre snapshots: cada señal es un trade independiente de una
// sola pierna. Las métricas del report asumen exactamente este modelo.

import (
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/alejandrodnm/polylab/internal/strategy"
)

// RiskGate admite o rechaza una señal antes de simular el fill. En replay
// puro no hay posiciones abiertas: el engine pasa siempre una lista vacía.
type RiskGate interface {
	CanTrade(sig domain.Signal, bankroll float64, open []domain.Position) bool
}

// Engine reproduce una secuencia de snapshots contra una estrategia.
type Engine struct {
	strat     strategy.Strategy
	risk      RiskGate
	simulator *Simulator
	initial   float64
}

// NewEngine crea un engine con todas las dependencias inyectadas. risk
// puede ser nil para un replay sin gates de admisión.
func NewEngine(strat strategy.Strategy, risk RiskGate, sim *Simulator, initialBalance float64) *Engine {
	return &Engine{strat: strat, risk: risk, simulator: sim, initial: initialBalance}
}

// Run recorre los snapshots en orden cronológico: scan → analyze → gate
// de riesgo → sizing → fill simulado. El orden de proceso lo fija el sort
// por timestamp y nunca se altera.
func (e *Engine) Run(snaps []domain.Snapshot) domain.BacktestResult {
	ordered := make([]domain.Snapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	result := domain.BacktestResult{
		Strategy:       e.strat.Name(),
		InitialBalance: e.initial,
		EquityCurve:    []domain.EquityPoint{{Step: 0, Balance: e.initial}},
	}

	balance := e.initial
	start := time.Now()

	for i, snap := range ordered {
		for _, opp := range e.strat.Scan([]domain.Market{snap.Market}) {
			sig, ok := e.strat.Analyze(opp)
			if !ok {
				continue
			}
			if e.risk != nil && !e.risk.CanTrade(sig, balance, nil) {
				continue
			}
			size := e.strat.SizePosition(sig, balance)
			if size <= 0 {
				continue
			}

			trade := e.simulator.SimulateFill(
				sig.MarketID, sig.Side, sig.TokenID,
				sig.MarketPrice, size,
				e.strat.Name(), snap.Timestamp,
			)
			balance -= trade.TotalCost
			result.Trades = append(result.Trades, trade)
		}
		result.EquityCurve = append(result.EquityCurve, domain.EquityPoint{Step: i + 1, Balance: balance})
	}

	result.FinalBalance = balance

	slog.Info("replay complete",
		"strategy", e.strat.Name(),
		"snapshots", len(ordered),
		"trades", len(result.Trades),
		"final_balance", result.FinalBalance,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result
}
