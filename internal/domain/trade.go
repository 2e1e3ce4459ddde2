package domain

import "time"

// SimulatedTrade es un fill simulado con slippage y fee ya aplicados.
type SimulatedTrade struct {
	ID        string
	Timestamp time.Time
	MarketID  string
	Side      string // "buy" | "sell"
	Token     string
	// Price es el precio realizado, slippage incluido.
	Price     float64
	Size      float64
	Slippage  float64
	Fee       float64
	TotalCost float64
	Strategy  string
}

// EquityPoint es un punto de la curva de equity. Step crece de forma
// monotónica con cada snapshot procesado; Balance no tiene por qué.
type EquityPoint struct {
	Step    int
	Balance float64
}

// BacktestResult es el estado final de reproducir un dataset contra una
// estrategia: balance, curva de equity y log de fills.
type BacktestResult struct {
	Strategy       string
	InitialBalance float64
	FinalBalance   float64
	EquityCurve    []EquityPoint
	Trades         []SimulatedTrade
}

// BacktestRun es el resumen persistible de un replay terminado, con las
// métricas ya derivadas.
type BacktestRun struct {
	ID             string
	Strategy       string
	Dataset        string
	StartedAt      time.Time
	InitialBalance float64
	FinalBalance   float64
	TotalReturn    float64
	WinRate        float64
	MaxDrawdown    float64
	Sharpe         float64
	// TotalTrades se persiste aparte: los listados no hidratan Trades.
	TotalTrades int
	Trades      []SimulatedTrade
}

// resolutionBuyFee es el fee nominal aplicado al P&L de resolución.
const resolutionBuyFee = 0.01

// OutcomeProfit calcula el resultado de comprar un lado ("YES" | "NO") al
// precio YES dado y mantener hasta resolución: devuelve si la posición
// ganó y su P&L por unidad (payout 1.00 al ganador, 0 al perdedor).
func OutcomeProfit(side string, pYes float64, yesWon bool) (bool, float64) {
	var cost float64
	var won bool
	if side == "YES" {
		cost = pYes * (1 + resolutionBuyFee)
		won = yesWon
	} else {
		cost = (1 - pYes) * (1 + resolutionBuyFee)
		won = !yesWon
	}
	payout := 0.0
	if won {
		payout = 1.0
	}
	return won, payout - cost
}
