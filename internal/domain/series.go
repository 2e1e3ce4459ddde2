package domain

import "sort"

// PricePoint es una muestra (timestamp, precio) de la serie de un token.
// El timestamp va en epoch seconds UTC.
type PricePoint struct {
	TS    int64
	Price float64
}

// PriceSeries es la serie histórica de precios de un token, ordenada por
// timestamp ascendente. Las operaciones de lookup asumen ese orden.
type PriceSeries []PricePoint

// AtOrBefore devuelve por bisección el precio vigente en el instante t:
// la muestra más reciente con timestamp <= t. Devuelve false si la serie
// está vacía o t es anterior a la primera muestra; si t es posterior a la
// última, devuelve la última. Nunca devuelve una muestra futura a t.
func (s PriceSeries) AtOrBefore(t int64) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	if t < s[0].TS {
		return 0, false
	}
	if t >= s[len(s)-1].TS {
		return s[len(s)-1].Price, true
	}

	lo, hi := 0, len(s)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case s[mid].TS == t:
			return s[mid].Price, true
		case s[mid].TS < t:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	if hi < 0 {
		return 0, false
	}
	return s[hi].Price, true
}

// Window devuelve los precios del intervalo cerrado [start, end], en el
// orden de la serie. Escaneo lineal con corte temprano: la serie está
// ordenada, así que al pasar end no queda nada que mirar.
func (s PriceSeries) Window(start, end int64) []float64 {
	var out []float64
	for _, p := range s {
		if p.TS < start {
			continue
		}
		if p.TS > end {
			break
		}
		out = append(out, p.Price)
	}
	return out
}

// Sort ordena la serie por timestamp ascendente. Orden estable: muestras
// con el mismo timestamp conservan su orden de llegada.
func (s PriceSeries) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].TS < s[j].TS })
}

// Empty indica si la serie no tiene muestras.
func (s PriceSeries) Empty() bool { return len(s) == 0 }
