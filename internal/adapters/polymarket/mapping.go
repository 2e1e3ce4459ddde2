package polymarket

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// resolvedThreshold marca un mercado como resuelto sin ambigüedad: algún
// outcome debe cerrar por encima de este precio.
const resolvedThreshold = 0.9

// mapClosedMarket valida un gammaMarket cerrado y lo convierte a
// domain.MarketSample. Devuelve false si el mercado no es estrictamente
// binario, no está claramente resuelto o le falta algún campo obligatorio.
// Un registro descartado nunca aborta la página: se salta en silencio.
func mapClosedMarket(gm gammaMarket) (domain.MarketSample, bool) {
	outcomes := jsonArray(gm.Outcomes)
	tokenIDs := jsonArray(gm.ClobTokenIDs)
	prices := jsonArray(gm.OutcomePrices)
	if len(outcomes) != 2 || len(tokenIDs) != 2 || len(prices) != 2 {
		return domain.MarketSample{}, false
	}

	// Ancla al outcome YES si el label se reconoce; si no, al outcome 0.
	idx := normalizeOutcomes(outcomes)
	anchor, ok := idx["yes"]
	if !ok {
		anchor = 0
	}
	other := 1 - anchor

	anchorFinal, okA := parseFloat(prices[anchor])
	otherFinal, okO := parseFloat(prices[other])
	if !okA || !okO {
		return domain.MarketSample{}, false
	}
	if math.Max(anchorFinal, otherFinal) < resolvedThreshold {
		return domain.MarketSample{}, false
	}

	token := strings.TrimSpace(stringify(tokenIDs[anchor]))
	if token == "" {
		return domain.MarketSample{}, false
	}

	// closedTime es el campo fiable; endDate y endDateIso son fallbacks.
	closeTS, ok := parseCloseTS(gm.ClosedTime)
	if !ok {
		if closeTS, ok = parseCloseTS(gm.EndDate); !ok {
			if closeTS, ok = parseCloseTS(gm.EndDateISO); !ok {
				return domain.MarketSample{}, false
			}
		}
	}

	marketID := strings.TrimSpace(gm.ID.String())
	if marketID == "" {
		return domain.MarketSample{}, false
	}

	category := gm.Category
	if category == "" {
		category = "unknown"
	}

	volume, _ := gm.Volume.Float64()

	return domain.MarketSample{
		MarketID: marketID,
		Question: gm.Question,
		Category: category,
		CloseTS:  closeTS,
		YesToken: token,
		YesWon:   anchorFinal > otherFinal,
		Volume:   volume,
	}, true
}

// normalizeOutcomes mapea los labels de outcome a su índice posicional.
// Reconoce las variantes comunes de YES/NO: yes/y/true/1 y no/n/false/0.
func normalizeOutcomes(outcomes []any) map[string]int {
	norm := make(map[string]int, 2)
	for i, raw := range outcomes {
		switch canonicalLabel(raw) {
		case "yes", "y", "true", "1":
			norm["yes"] = i
		case "no", "n", "false", "0":
			norm["no"] = i
		}
	}
	return norm
}

// canonicalLabel normaliza un label: minúsculas, sin espacios y solo
// caracteres alfanuméricos ("YES ", "Yes.", "yes" → "yes").
func canonicalLabel(raw any) string {
	s := strings.ToLower(strings.TrimSpace(stringify(raw)))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// jsonArray decodifica un array que Gamma manda unas veces nativo
// (["Yes","No"]) y otras como string JSON ("[\"Yes\", \"No\"]").
func jsonArray(raw json.RawMessage) []any {
	if len(raw) == 0 {
		return nil
	}
	var direct []any
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		var arr []any
		if err := json.Unmarshal([]byte(encoded), &arr); err == nil {
			return arr
		}
	}
	return nil
}

// parseFloat convierte un valor JSON arbitrario a float64 finito.
func parseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringify convierte un valor JSON arbitrario a string.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return ""
	}
}

// closeTimeLayouts cubre los formatos que Gamma usa según el campo:
// closedTime viene como "2024-03-01 12:00:00+00", endDate como ISO con Z
// y endDateIso a veces como fecha pelada.
var closeTimeLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05Z0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseCloseTS parsea un timestamp de cierre a epoch seconds UTC.
func parseCloseTS(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range closeTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Unix(), true
		}
	}
	// Último intento: offset "+00" pelado en formato con T.
	if strings.HasSuffix(s, "+00") {
		if t, err := time.Parse(time.RFC3339, s+":00"); err == nil {
			return t.UTC().Unix(), true
		}
	}
	return 0, false
}
