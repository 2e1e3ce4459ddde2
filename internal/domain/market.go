package domain

import "time"

// MarketSample es un mercado binario resuelto tal como queda tras validar
// la respuesta de Gamma: identificado, fechado y con ganador conocido.
type MarketSample struct {
	MarketID string
	Question string
	Category string
	// CloseTS es el cierre en epoch seconds UTC.
	CloseTS int64
	// YesToken es el token id del outcome ancla (YES, o el outcome 0 si
	// los labels no se reconocen).
	YesToken string
	// YesWon indica si el outcome ancla terminó por encima del contrario.
	YesWon bool
	Volume float64
}

// CloseTime devuelve el cierre como time.Time UTC.
func (m MarketSample) CloseTime() time.Time {
	return time.Unix(m.CloseTS, 0).UTC()
}

// Token es uno de los dos lados de un mercado binario (YES/NO).
type Token struct {
	TokenID string
	Outcome string // "Yes" | "No"
	Price   float64
}

// Market es la vista puntual de un mercado binario durante el replay:
// dos tokens complementarios y el volumen observado.
type Market struct {
	ID       string
	Question string
	Category string
	Volume   float64
	Tokens   [2]Token
}

// YesToken devuelve el token YES del mercado.
func (m Market) YesToken() Token {
	for _, t := range m.Tokens {
		if t.Outcome == "Yes" {
			return t
		}
	}
	return m.Tokens[0]
}

// NoToken devuelve el token NO del mercado.
func (m Market) NoToken() Token {
	for _, t := range m.Tokens {
		if t.Outcome == "No" {
			return t
		}
	}
	return m.Tokens[1]
}

// Snapshot es la observación de un mercado en un instante del replay.
// El motor consume los snapshots en orden cronológico estricto.
type Snapshot struct {
	Timestamp time.Time
	Market    Market
	YesPrice  float64
	NoPrice   float64
	Volume    float64
}
