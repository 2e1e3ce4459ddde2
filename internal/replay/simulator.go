package replay

import (
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// Simulator aplica el modelo escalar de slippage y fee a órdenes
// hipotéticas y acumula el log de fills. Los porcentajes se toman tal
// cual; los defaults de producción viven en config.
type Simulator struct {
	slippagePct float64
	feePct      float64
	trades      []domain.SimulatedTrade
}

// NewSimulator crea un simulador con los porcentajes dados.
func NewSimulator(slippagePct, feePct float64) *Simulator {
	return &Simulator{slippagePct: slippagePct, feePct: feePct}
}

// SimulateFill aplica slippage y fee a una orden y registra el fill.
// side "buy" encarece el precio realizado, cualquier otro lo abarata.
// El fill lleva un id propio para poder persistirlo.
func (s *Simulator) SimulateFill(marketID, side, token string, price, size float64, strategyName string, ts time.Time) domain.SimulatedTrade {
	slippage := price * s.slippagePct
	fee := price * size * s.feePct

	fill := price - slippage
	if side == "buy" {
		fill = price + slippage
	}

	trade := domain.SimulatedTrade{
		ID:        uuid.New().String(),
		Timestamp: ts,
		MarketID:  marketID,
		Side:      side,
		Token:     token,
		Price:     fill,
		Size:      size,
		Slippage:  slippage,
		Fee:       fee,
		TotalCost: fill*size + fee,
		Strategy:  strategyName,
	}
	s.trades = append(s.trades, trade)
	return trade
}

// Trades devuelve el log de fills acumulado.
func (s *Simulator) Trades() []domain.SimulatedTrade {
	return s.trades
}
