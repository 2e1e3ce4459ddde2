package domain

// Opportunity es un mercado candidato detectado por el scan de una
// estrategia, antes del análisis fino.
type Opportunity struct {
	MarketID string
	Question string
	Category string
	// MarketPrice es el precio YES observado en el snapshot.
	MarketPrice float64
	// Market conserva la vista completa para que Analyze resuelva tokens.
	Market Market
}

// Signal es la intención de trade emitida por una estrategia.
type Signal struct {
	MarketID      string
	TokenID       string
	Side          string // "buy" | "sell"
	EstimatedProb float64
	MarketPrice   float64
	Confidence    float64
	StrategyName  string
}

// Edge es la ventaja estimada de la señal sobre el precio de mercado.
func (s Signal) Edge() float64 {
	return s.EstimatedProb - s.MarketPrice
}

// Position es una posición abierta. El replay no arrastra posiciones
// entre snapshots; el tipo existe para el contrato de riesgo.
type Position struct {
	MarketID   string
	TokenID    string
	Side       string
	EntryPrice float64
	Size       float64
}
