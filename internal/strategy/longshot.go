package strategy

import "github.com/alejandrodnm/polylab/internal/domain"

const longshotName = "longshot_fade"

// Los apostantes sobrepagan sistemáticamente los resultados improbables.
// La estrategia vende ese sesgo comprando el lado NO cuando YES cotiza en
// territorio longshot.
const (
	longshotYesMin     = 0.05
	longshotYesMax     = 0.15
	longshotNoBuyMin   = 0.85
	longshotNoBuyMax   = 0.95
	longshotEstNoProb  = 0.93 // base rate histórica: los longshots casi nunca entran
	longshotConfidence = 0.65
)

// LongshotFade compra NO en mercados donde YES cotiza entre 0.05 y 0.15.
type LongshotFade struct {
	kelly domain.Kelly
}

// NewLongshotFade crea la estrategia con el sizing Kelly dado.
func NewLongshotFade(k domain.Kelly) *LongshotFade {
	return &LongshotFade{kelly: k}
}

// Name implementa Strategy.
func (s *LongshotFade) Name() string {
	return longshotName
}

// Scan implementa Strategy. Busca YES en territorio longshot.
func (s *LongshotFade) Scan(markets []domain.Market) []domain.Opportunity {
	var opps []domain.Opportunity
	for _, m := range markets {
		yes := m.YesToken().Price
		if yes >= longshotYesMin && yes <= longshotYesMax {
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

// Analyze implementa Strategy. Compra NO dentro del rango si el edge
// sobre la base rate es positivo.
func (s *LongshotFade) Analyze(opp domain.Opportunity) (domain.Signal, bool) {
	no := 1 - opp.MarketPrice
	if no < longshotNoBuyMin || no > longshotNoBuyMax {
		return domain.Signal{}, false
	}
	if longshotEstNoProb-no <= 0 {
		return domain.Signal{}, false
	}

	token := opp.Market.NoToken().TokenID
	if token == "" {
		return domain.Signal{}, false
	}

	return domain.Signal{
		MarketID:      opp.MarketID,
		TokenID:       token,
		Side:          "buy",
		EstimatedProb: longshotEstNoProb,
		MarketPrice:   no,
		Confidence:    longshotConfidence,
		StrategyName:  longshotName,
	}, true
}

// SizePosition implementa Strategy.
func (s *LongshotFade) SizePosition(sig domain.Signal, bankroll float64) float64 {
	return s.kelly.BetAmount(bankroll, sig.EstimatedProb, sig.MarketPrice)
}
