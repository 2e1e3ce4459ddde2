package strategy

import "github.com/alejandrodnm/polylab/internal/domain"

const highProbName = "high_prob_harvesting"

// Umbrales: escanear YES por encima de 0.93, comprar solo dentro de
// [0.95, 0.99]. A 1.00 no queda beneficio.
const (
	highProbScanMin    = 0.93
	highProbBuyMin     = 0.95
	highProbBuyMax     = 0.99
	highProbEstProb    = 0.99
	highProbConfidence = 0.90
)

// HighProbHarvesting compra contratos casi seguros y los aguanta hasta la
// liquidación a 1.00. El retorno por trade es pequeño pero la tasa de
// acierto histórica es muy alta.
type HighProbHarvesting struct {
	kelly domain.Kelly
}

// NewHighProbHarvesting crea la estrategia con el sizing Kelly dado.
func NewHighProbHarvesting(k domain.Kelly) *HighProbHarvesting {
	return &HighProbHarvesting{kelly: k}
}

// Name implementa Strategy.
func (s *HighProbHarvesting) Name() string {
	return highProbName
}

// Scan implementa Strategy. Busca mercados con YES por encima del umbral.
func (s *HighProbHarvesting) Scan(markets []domain.Market) []domain.Opportunity {
	var opps []domain.Opportunity
	for _, m := range markets {
		yes := m.YesToken().Price
		if yes > highProbScanMin {
			opps = append(opps, domain.Opportunity{
				MarketID:    m.ID,
				Question:    m.Question,
				Category:    m.Category,
				MarketPrice: yes,
				Market:      m,
			})
		}
	}
	return opps
}

// Analyze implementa Strategy. Compra YES si el precio cae en el rango.
func (s *HighProbHarvesting) Analyze(opp domain.Opportunity) (domain.Signal, bool) {
	yes := opp.MarketPrice
	if yes < highProbBuyMin || yes > highProbBuyMax {
		return domain.Signal{}, false
	}

	token := opp.Market.YesToken().TokenID
	if token == "" {
		return domain.Signal{}, false
	}

	return domain.Signal{
		MarketID:      opp.MarketID,
		TokenID:       token,
		Side:          "buy",
		EstimatedProb: highProbEstProb,
		MarketPrice:   yes,
		Confidence:    highProbConfidence,
		StrategyName:  highProbName,
	}, true
}

// SizePosition implementa Strategy.
func (s *HighProbHarvesting) SizePosition(sig domain.Signal, bankroll float64) float64 {
	return s.kelly.BetAmount(bankroll, sig.EstimatedProb, sig.MarketPrice)
}
