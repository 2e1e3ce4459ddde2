package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// annualization anualiza el Sharpe sobre retornos por paso. 252 sesiones.
const annualization = 252

// Report deriva las métricas agregadas de un BacktestResult. No muta el
// resultado: cada métrica se calcula sobre la curva y el log de trades.
type Report struct {
	Result BacktestResult
}

// NewReport envuelve un resultado de replay.
func NewReport(result BacktestResult) Report {
	return Report{Result: result}
}

// TotalReturn es el retorno relativo del run. 0 si el balance inicial es 0.
func (r Report) TotalReturn() float64 {
	if r.Result.InitialBalance == 0 {
		return 0
	}
	return (r.Result.FinalBalance - r.Result.InitialBalance) / r.Result.InitialBalance
}

// TotalTrades es el número de fills simulados.
func (r Report) TotalTrades() int {
	return len(r.Result.Trades)
}

// WinRate es la fracción de fills con precio realizado < 0.50. Es un
// proxy de entrada barata, no un P&L por trade: el replay no cierra
// posiciones, así que no hay resultado real por fill.
func (r Report) WinRate() float64 {
	if len(r.Result.Trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range r.Result.Trades {
		if t.Price < 0.50 {
			wins++
		}
	}
	return float64(wins) / float64(len(r.Result.Trades))
}

// MaxDrawdown es la caída máxima de la curva de equity relativa al pico
// corriente. 0 con curva vacía o monótona creciente.
func (r Report) MaxDrawdown() float64 {
	curve := r.Result.EquityCurve
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Balance
	maxDD := 0.0
	for _, pt := range curve {
		if pt.Balance > peak {
			peak = pt.Balance
		}
		if peak > 0 {
			if dd := (peak - pt.Balance) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// SharpeRatio es el Sharpe anualizado (√252) de los retornos por paso de
// la curva. Pasos con balance previo <= 0 no generan retorno. Con menos
// de 2 retornos, o con desviación 0, devuelve 0.
func (r Report) SharpeRatio() float64 {
	curve := r.Result.EquityCurve
	if len(curve) < 2 {
		return 0
	}

	var returns []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Balance
		if prev > 0 {
			returns = append(returns, (curve[i].Balance-prev)/prev)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		variance += (ret - mean) * (ret - mean)
	}
	variance /= float64(len(returns) - 1)
	if variance <= 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(annualization)
}

// Summary devuelve las métricas formateadas, listas para presentar.
func (r Report) Summary() map[string]string {
	return map[string]string{
		"strategy":        r.Result.Strategy,
		"initial_balance": fmt.Sprintf("%.2f", r.Result.InitialBalance),
		"final_balance":   fmt.Sprintf("%.2f", r.Result.FinalBalance),
		"total_return":    fmt.Sprintf("%.2f%%", r.TotalReturn()*100),
		"total_trades":    strconv.Itoa(r.TotalTrades()),
		"win_rate":        fmt.Sprintf("%.2f%%", r.WinRate()*100),
		"max_drawdown":    fmt.Sprintf("%.2f%%", r.MaxDrawdown()*100),
		"sharpe_ratio":    fmt.Sprintf("%.2f", r.SharpeRatio()),
	}
}

// Text devuelve el report como bloque legible de líneas clave: valor,
// siempre en el mismo orden.
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString("=== Backtest Report ===\n")
	fmt.Fprintf(&b, "Strategy:        %s\n", r.Result.Strategy)
	fmt.Fprintf(&b, "Initial balance: $%.2f\n", r.Result.InitialBalance)
	fmt.Fprintf(&b, "Final balance:   $%.2f\n", r.Result.FinalBalance)
	fmt.Fprintf(&b, "Total return:    %.2f%%\n", r.TotalReturn()*100)
	fmt.Fprintf(&b, "Total trades:    %d\n", r.TotalTrades())
	fmt.Fprintf(&b, "Win rate:        %.2f%%\n", r.WinRate()*100)
	fmt.Fprintf(&b, "Max drawdown:    %.2f%%\n", r.MaxDrawdown()*100)
	fmt.Fprintf(&b, "Sharpe ratio:    %.2f\n", r.SharpeRatio())
	return b.String()
}
