package risk

import "github.com/alejandrodnm/polylab/internal/domain"

// Config acota la exposición por señal y por día.
type Config struct {
	// MaxPositionPct es la fracción máxima del bankroll por posición.
	MaxPositionPct float64
	// MaxDailyLossPct corta el trading cuando la pérdida acumulada del
	// día alcanza esta fracción del bankroll.
	MaxDailyLossPct  float64
	MaxOpenPositions int
	// MinEdge es la ventaja mínima (prob estimada - precio) para operar.
	MinEdge float64
}

// DefaultConfig devuelve los límites de producción.
func DefaultConfig() Config {
	return Config{
		MaxPositionPct:   0.10,
		MaxDailyLossPct:  0.05,
		MaxOpenPositions: 20,
		MinEdge:          0.05,
	}
}

// Manager aplica los gates de admisión antes de cada fill. El estado de
// pérdidas es por instancia: dos replays nunca lo comparten.
type Manager struct {
	cfg       Config
	dailyLoss float64
}

// New crea un Manager con la configuración dada.
func New(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// CanTrade aplica los cuatro gates en orden: edge mínimo, cupo de
// posiciones abiertas, pérdida diaria y mercado duplicado.
func (m *Manager) CanTrade(sig domain.Signal, bankroll float64, open []domain.Position) bool {
	if sig.Edge() < m.cfg.MinEdge {
		return false
	}
	if len(open) >= m.cfg.MaxOpenPositions {
		return false
	}
	if m.dailyLoss >= bankroll*m.cfg.MaxDailyLossPct {
		return false
	}
	for _, p := range open {
		if p.MarketID == sig.MarketID {
			return false
		}
	}
	return true
}

// MaxPositionSize devuelve el tamaño máximo en unidades al precio dado.
func (m *Manager) MaxPositionSize(bankroll, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return bankroll * m.cfg.MaxPositionPct / price
}

// RecordLoss acumula una pérdida realizada del día.
func (m *Manager) RecordLoss(amount float64) {
	m.dailyLoss += amount
}

// ResetDaily reinicia el acumulador de pérdidas.
func (m *Manager) ResetDaily() {
	m.dailyLoss = 0
}
