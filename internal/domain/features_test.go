package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// denseSeries genera una serie con una muestra por minuto durante las
// `minutes` previas al cierre, precio constante.
func denseSeries(closeTS int64, minutes int, price float64) PriceSeries {
	var s PriceSeries
	for i := minutes; i >= 0; i-- {
		s = append(s, PricePoint{TS: closeTS - int64(i)*60, Price: price})
	}
	return s
}

// --- BuildFeatureRows ---

func TestBuildFeatureRows_AllHorizons(t *testing.T) {
	closeTS := int64(1_700_000_000)
	sample := MarketSample{MarketID: "m1", Category: "sports", CloseTS: closeTS, YesWon: true}
	// 200 minutos de datos: el horizonte 120 necesita lookups hasta
	// close - 120m - 60m = close - 180m.
	series := denseSeries(closeTS, 200, 0.80)

	rows := BuildFeatureRows(sample, series)
	require.Len(t, rows, len(Horizons))

	for i, row := range rows {
		assert.Equal(t, Horizons[i], row.HorizonM)
		assert.Equal(t, "m1", row.MarketID)
		assert.Equal(t, 0.80, row.P)
		assert.Equal(t, 0.0, row.Mom5)
		assert.Equal(t, 0.0, row.Range60)
		assert.Equal(t, 0.0, row.Std60)
		assert.InDelta(t, 0.30, row.DistMid, 1e-9)
		assert.True(t, row.YesWon)
	}
}

func TestBuildFeatureRows_ShortSeriesSkipsDeepHorizons(t *testing.T) {
	closeTS := int64(1_700_000_000)
	sample := MarketSample{MarketID: "m1", CloseTS: closeTS}
	// Solo 70 minutos de datos: el lookup a -60m del horizonte h exige
	// muestras en close-(h+60)m, así que solo entra el horizonte 5.
	series := denseSeries(closeTS, 70, 0.5)

	rows := BuildFeatureRows(sample, series)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].HorizonM)
}

func TestBuildFeatureRows_PriceOutOfRangeSkipped(t *testing.T) {
	closeTS := int64(1_700_000_000)
	sample := MarketSample{MarketID: "m1", CloseTS: closeTS}
	series := denseSeries(closeTS, 200, 1.50) // precio fuera de [0,1]

	assert.Empty(t, BuildFeatureRows(sample, series))
}

func TestBuildFeatureRows_SparseWindowSkipped(t *testing.T) {
	closeTS := int64(1_700_000_000)
	sample := MarketSample{MarketID: "m1", CloseTS: closeTS}
	// Lookups resolubles (muestra muy vieja) pero ventana de 60m con
	// menos de 4 muestras.
	series := PriceSeries{
		{TS: closeTS - 10_000_000, Price: 0.5},
		{TS: closeTS - 60*60, Price: 0.5},
		{TS: closeTS - 30*60, Price: 0.5},
	}

	assert.Empty(t, BuildFeatureRows(sample, series))
}

func TestBuildFeatureRows_Momentum(t *testing.T) {
	closeTS := int64(1_700_000_000)
	sample := MarketSample{MarketID: "m1", CloseTS: closeTS}
	// Precio que sube 0.001 por minuto.
	var series PriceSeries
	for i := 200; i >= 0; i-- {
		series = append(series, PricePoint{
			TS:    closeTS - int64(i)*60,
			Price: 0.5 + float64(200-i)*0.001,
		})
	}

	rows := BuildFeatureRows(sample, series)
	require.NotEmpty(t, rows)
	first := rows[0] // horizonte 5
	assert.InDelta(t, 0.005, first.Mom5, 1e-9)
	assert.InDelta(t, 0.015, first.Mom15, 1e-9)
	assert.InDelta(t, 0.060, first.Mom60, 1e-9)
	assert.InDelta(t, 0.060, first.Range60, 1e-9)
	assert.Greater(t, first.Std60, 0.0)
}

// --- ComputeLiveFeatures ---

func TestComputeLiveFeatures_MissingDataIsAbsent(t *testing.T) {
	now := int64(1_700_000_000)
	// Serie que empieza hace 30 minutos: el lookback de 60m no resuelve.
	series := denseSeries(now, 30, 0.5)

	_, ok := ComputeLiveFeatures(series, now)
	assert.False(t, ok)
}

func TestComputeLiveFeatures_Complete(t *testing.T) {
	now := int64(1_700_000_000)
	series := denseSeries(now, 120, 0.42)

	f, ok := ComputeLiveFeatures(series, now)
	require.True(t, ok)
	assert.Equal(t, 0.42, f.P)
	assert.Equal(t, 0.0, f.Mom60)
	assert.InDelta(t, 0.08, f.DistMid, 1e-9)
}

// --- Momentum / Volatility ---

func TestMomentum_InsufficientHistory(t *testing.T) {
	now := int64(1_700_000_000)
	series := PriceSeries{{TS: now, Price: 0.5}}

	_, ok := Momentum(series, now, 5)
	assert.False(t, ok)
}

func TestVolatility_NeedsTwoSamples(t *testing.T) {
	now := int64(1_700_000_000)
	series := PriceSeries{{TS: now, Price: 0.5}}

	_, ok := Volatility(series, now, 60)
	assert.False(t, ok)
}

func TestVolatility_KnownValue(t *testing.T) {
	now := int64(1_700_000_000)
	series := PriceSeries{
		{TS: now - 120, Price: 0.40},
		{TS: now - 60, Price: 0.50},
		{TS: now, Price: 0.60},
	}
	// pstdev([0.4, 0.5, 0.6]) = sqrt(0.02/3) ≈ 0.08165
	v, ok := Volatility(series, now, 60)
	assert.True(t, ok)
	assert.InDelta(t, 0.08165, v, 0.0001)
}

func TestPstdev(t *testing.T) {
	assert.Equal(t, 0.0, pstdev(nil))
	assert.Equal(t, 0.0, pstdev([]float64{0.5}))
	assert.InDelta(t, 0.5, pstdev([]float64{0, 1}), 1e-9)
}
