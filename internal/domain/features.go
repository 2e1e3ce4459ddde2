package domain

import "math"

// Horizons son los lookbacks fijos, en minutos antes del cierre, a los
// que se evalúan feature rows y snapshots de replay.
var Horizons = []int{5, 15, 30, 60, 120}

// FeatureRow es una observación derivada de la serie de un mercado
// resuelto, evaluada a un horizonte fijo antes del cierre. Todo lookup
// usa AtOrBefore: ninguna feature ve datos posteriores a su instante.
type FeatureRow struct {
	MarketID string
	CloseTS  int64
	HorizonM int
	Category string

	// P es el precio YES en el instante de entrada; PMinus* son los
	// precios rezagados 5/15/60 minutos respecto a ese instante.
	P         float64
	PMinus5m  float64
	PMinus15m float64
	PMinus60m float64

	Mom5    float64
	Mom15   float64
	Mom60   float64
	Range60 float64
	Std60   float64
	DistMid float64

	YesWon bool
}

// BuildFeatureRows calcula una FeatureRow por cada horizonte con datos
// suficientes. Un horizonte se salta en silencio si falta algún lookup,
// algún precio cae fuera de [0, 1] o la ventana de 60 minutos trae menos
// de 4 muestras.
func BuildFeatureRows(sample MarketSample, series PriceSeries) []FeatureRow {
	var rows []FeatureRow
	for _, m := range Horizons {
		entryTS := sample.CloseTS - int64(m)*60

		p, okP := series.AtOrBefore(entryTS)
		p5, ok5 := series.AtOrBefore(entryTS - 5*60)
		p15, ok15 := series.AtOrBefore(entryTS - 15*60)
		p60, ok60 := series.AtOrBefore(entryTS - 60*60)
		if !okP || !ok5 || !ok15 || !ok60 {
			continue
		}
		if !inUnit(p) || !inUnit(p5) || !inUnit(p15) || !inUnit(p60) {
			continue
		}

		win := series.Window(entryTS-60*60, entryTS)
		if len(win) < 4 {
			continue
		}

		rows = append(rows, FeatureRow{
			MarketID:  sample.MarketID,
			CloseTS:   sample.CloseTS,
			HorizonM:  m,
			Category:  sample.Category,
			P:         p,
			PMinus5m:  p5,
			PMinus15m: p15,
			PMinus60m: p60,
			Mom5:      p - p5,
			Mom15:     p - p15,
			Mom60:     p - p60,
			Range60:   spread(win),
			Std60:     pstdev(win),
			DistMid:   math.Abs(p - 0.5),
			YesWon:    sample.YesWon,
		})
	}
	return rows
}

// LiveFeatures es la misma métrica que FeatureRow pero evaluada sobre un
// "ahora" en vivo, sin label de resolución.
type LiveFeatures struct {
	P       float64
	Mom5    float64
	Mom15   float64
	Mom60   float64
	Range60 float64
	Std60   float64
	DistMid float64
}

// ComputeLiveFeatures evalúa las features en nowTS. Devuelve false si
// falta cualquier pieza: mejor ninguna señal que una señal a medias.
func ComputeLiveFeatures(series PriceSeries, nowTS int64) (LiveFeatures, bool) {
	p, ok := series.AtOrBefore(nowTS)
	if !ok {
		return LiveFeatures{}, false
	}
	mom5, ok5 := Momentum(series, nowTS, 5)
	mom15, ok15 := Momentum(series, nowTS, 15)
	mom60, ok60 := Momentum(series, nowTS, 60)
	if !ok5 || !ok15 || !ok60 {
		return LiveFeatures{}, false
	}
	std, okStd := Volatility(series, nowTS, 60)
	if !okStd {
		return LiveFeatures{}, false
	}
	win := series.Window(nowTS-60*60, nowTS)
	if len(win) < 4 {
		return LiveFeatures{}, false
	}
	return LiveFeatures{
		P:       p,
		Mom5:    mom5,
		Mom15:   mom15,
		Mom60:   mom60,
		Range60: spread(win),
		Std60:   std,
		DistMid: math.Abs(p - 0.5),
	}, true
}

// Momentum devuelve el cambio de precio sobre los últimos lookbackMin
// minutos: precio(now) - precio(now - lookback).
func Momentum(series PriceSeries, nowTS int64, lookbackMin int) (float64, bool) {
	now, okNow := series.AtOrBefore(nowTS)
	then, okThen := series.AtOrBefore(nowTS - int64(lookbackMin)*60)
	if !okNow || !okThen {
		return 0, false
	}
	return now - then, true
}

// Volatility devuelve la desviación estándar poblacional de los precios
// de la ventana [now-window, now]. Necesita al menos 2 muestras.
func Volatility(series PriceSeries, nowTS int64, windowMin int) (float64, bool) {
	win := series.Window(nowTS-int64(windowMin)*60, nowTS)
	if len(win) < 2 {
		return 0, false
	}
	return pstdev(win), true
}

func inUnit(p float64) bool { return p >= 0 && p <= 1 }

// spread devuelve max - min de la ventana.
func spread(win []float64) float64 {
	if len(win) == 0 {
		return 0
	}
	lo, hi := win[0], win[0]
	for _, v := range win[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// pstdev es la desviación estándar poblacional (divisor n).
func pstdev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(vals))
	return math.Sqrt(variance)
}
