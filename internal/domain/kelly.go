package domain

// Kelly implementa el criterio de Kelly fraccionado con cap absoluto.
// Para un mercado binario que paga 1.00, la fracción completa sobre un
// precio c y probabilidad estimada p es (p - c) / (1 - c).
type Kelly struct {
	// Fraction escala la fracción completa (1.0 = Kelly puro).
	Fraction float64
	// MaxFraction acota la fracción final del bankroll por apuesta.
	MaxFraction float64
}

// NewKelly crea un sizer de Kelly. Valores no positivos caen a los
// defaults conservadores (0.25, 0.06).
func NewKelly(fraction, maxFraction float64) Kelly {
	if fraction <= 0 {
		fraction = 0.25
	}
	if maxFraction <= 0 {
		maxFraction = 0.06
	}
	return Kelly{Fraction: fraction, MaxFraction: maxFraction}
}

// Full devuelve la fracción de Kelly completa. 0 si no hay edge (p <= price).
func (k Kelly) Full(p, price float64) float64 {
	if p <= price || price >= 1 {
		return 0
	}
	f := (p - price) / (1 - price)
	if f < 0 {
		return 0
	}
	return f
}

// Optimal devuelve la fracción escalada por Fraction y acotada por
// MaxFraction.
func (k Kelly) Optimal(p, price float64) float64 {
	f := k.Full(p, price) * k.Fraction
	if f > k.MaxFraction {
		return k.MaxFraction
	}
	return f
}

// BetAmount devuelve el importe a apostar para un bankroll dado.
func (k Kelly) BetAmount(bankroll, p, price float64) float64 {
	return bankroll * k.Optimal(p, price)
}
