package replay_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polylab/internal/replay"
)

func TestSimulator_Buy_AddsSlippageAndFee(t *testing.T) {
	sim := replay.NewSimulator(0.005, 0.0001)
	ts := time.Unix(closeTS, 0).UTC()

	trade := sim.SimulateFill("m1", "buy", "m1_yes", 0.50, 100, "high_prob_harvesting", ts)

	assert.NotEmpty(t, trade.ID)
	assert.True(t, ts.Equal(trade.Timestamp))
	assert.Greater(t, trade.Price, 0.50)
	assert.Greater(t, trade.Fee, 0.0)

	assert.InDelta(t, 0.0025, trade.Slippage, 1e-9)
	assert.InDelta(t, 0.5025, trade.Price, 1e-9)
	assert.InDelta(t, 0.005, trade.Fee, 1e-9)
	// 0.5025×100 + 0.005
	assert.InDelta(t, 50.255, trade.TotalCost, 1e-9)
	assert.Equal(t, "high_prob_harvesting", trade.Strategy)
}

func TestSimulator_Sell_SubtractsSlippage(t *testing.T) {
	sim := replay.NewSimulator(0.005, 0.0001)

	trade := sim.SimulateFill("m1", "sell", "m1_yes", 0.50, 100, "s", time.Now())

	assert.Less(t, trade.Price, 0.50)
	assert.InDelta(t, 0.4975, trade.Price, 1e-9)
}

func TestSimulator_AccumulatesTradeLog(t *testing.T) {
	sim := replay.NewSimulator(0.005, 0.0001)
	ts := time.Now()

	first := sim.SimulateFill("m1", "buy", "m1_yes", 0.60, 10, "s", ts)
	second := sim.SimulateFill("m2", "buy", "m2_no", 0.80, 20, "s", ts)

	trades := sim.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, first.ID, trades[0].ID)
	assert.Equal(t, second.ID, trades[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSimulator_ZeroPercentagesFillAtQuote(t *testing.T) {
	sim := replay.NewSimulator(0, 0)

	trade := sim.SimulateFill("m1", "buy", "m1_yes", 0.42, 50, "s", time.Now())

	assert.InDelta(t, 0.42, trade.Price, 1e-9)
	assert.Zero(t, trade.Slippage)
	assert.Zero(t, trade.Fee)
	assert.InDelta(t, 21.0, trade.TotalCost, 1e-9)
}
