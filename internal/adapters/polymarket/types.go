package polymarket

import "encoding/json"

// DTOs raw de las APIs de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaMarket es un mercado cerrado de GET /markets de Gamma.
// Gamma devuelve algunos campos numéricos como strings JSON (json.Number)
// y codifica los arrays de outcomes/tokens/precios unas veces como arrays
// nativos y otras como strings JSON; json.RawMessage acepta ambos.
type gammaMarket struct {
	ID            json.Number     `json:"id"`
	Question      string          `json:"question"`
	Category      string          `json:"category"`
	Outcomes      json.RawMessage `json:"outcomes"`
	ClobTokenIDs  json.RawMessage `json:"clobTokenIds"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	ClosedTime    string          `json:"closedTime"`
	EndDate       string          `json:"endDate"`
	EndDateISO    string          `json:"endDateIso"`
	Volume        json.Number     `json:"volume"`
	Closed        bool            `json:"closed"`
}

// --- CLOB API ---

// priceHistoryResponse es la respuesta de GET /prices-history.
type priceHistoryResponse struct {
	History []pricePointRaw `json:"history"`
}

// pricePointRaw es una muestra {t, p} raw de la serie de un token.
// Los campos van como any: una fila malformada se descarta sola, sin
// tumbar el decode de la respuesta entera.
type pricePointRaw struct {
	T any `json:"t"`
	P any `json:"p"`
}
