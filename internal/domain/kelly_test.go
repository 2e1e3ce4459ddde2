package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKelly_Full_NoEdge(t *testing.T) {
	k := NewKelly(0.25, 0.06)
	assert.Equal(t, 0.0, k.Full(0.50, 0.50))
	assert.Equal(t, 0.0, k.Full(0.40, 0.50))
}

func TestKelly_Full_WithEdge(t *testing.T) {
	k := NewKelly(0.25, 0.06)
	// (0.60 - 0.50) / (1 - 0.50) = 0.20
	assert.InDelta(t, 0.20, k.Full(0.60, 0.50), 1e-9)
}

func TestKelly_Full_PriceAtOne(t *testing.T) {
	k := NewKelly(0.25, 0.06)
	assert.Equal(t, 0.0, k.Full(0.99, 1.0))
}

func TestKelly_Optimal_Scaled(t *testing.T) {
	k := NewKelly(0.25, 0.06)
	// full 0.20 × 0.25 = 0.05, bajo el cap
	assert.InDelta(t, 0.05, k.Optimal(0.60, 0.50), 1e-9)
}

func TestKelly_Optimal_Capped(t *testing.T) {
	k := NewKelly(0.5, 0.06)
	// full = (0.9-0.5)/0.5 = 0.8; 0.8 × 0.5 = 0.40 → cap 0.06
	assert.Equal(t, 0.06, k.Optimal(0.90, 0.50))
}

func TestKelly_BetAmount(t *testing.T) {
	k := NewKelly(0.25, 0.06)
	assert.InDelta(t, 500.0, k.BetAmount(10_000, 0.60, 0.50), 1e-6)
	assert.Equal(t, 0.0, k.BetAmount(10_000, 0.50, 0.60))
}

func TestNewKelly_Defaults(t *testing.T) {
	k := NewKelly(0, 0)
	assert.Equal(t, 0.25, k.Fraction)
	assert.Equal(t, 0.06, k.MaxFraction)
}

// --- OutcomeProfit ---

func TestOutcomeProfit_YesWins(t *testing.T) {
	won, pnl := OutcomeProfit("YES", 0.80, true)
	assert.True(t, won)
	// payout 1.00 - coste 0.80×1.01 = 0.192
	assert.InDelta(t, 0.192, pnl, 1e-9)
}

func TestOutcomeProfit_YesLoses(t *testing.T) {
	won, pnl := OutcomeProfit("YES", 0.80, false)
	assert.False(t, won)
	assert.InDelta(t, -0.808, pnl, 1e-9)
}

func TestOutcomeProfit_NoSide(t *testing.T) {
	won, pnl := OutcomeProfit("NO", 0.80, false)
	assert.True(t, won)
	// coste (1-0.80)×1.01 = 0.202 → pnl 0.798
	assert.InDelta(t, 0.798, pnl, 1e-9)

	won, pnl = OutcomeProfit("NO", 0.80, true)
	assert.False(t, won)
	assert.InDelta(t, -0.202, pnl, 1e-9)
}
