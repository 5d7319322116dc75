package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats_NoTrades(t *testing.T) {
	s := ComputeStats(nil, 1000)
	assert.Equal(t, 0, s.TradeCount)
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, 1000.0, s.Balance)
	assert.Equal(t, 0.0, s.ReturnPercent)
}

func TestComputeStats_Mixed(t *testing.T) {
	trades := []Trade{
		{Profit: 10, ProfitPercent: 10},
		{Profit: -30, ProfitPercent: -20},
		{Profit: 0, ProfitPercent: 0},
		{Profit: 5, ProfitPercent: 4},
	}
	s := ComputeStats(trades, 1000)

	assert.Equal(t, 4, s.TradeCount)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses, "break-even counts as a loss")
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.InDelta(t, -15.0, s.TotalProfit, 1e-9)
	assert.InDelta(t, -1.5, s.AvgProfitPercent, 1e-9)
	assert.Equal(t, 10.0, s.BestTrade)
	assert.Equal(t, -30.0, s.WorstTrade)
	assert.InDelta(t, 30.0, s.MaxDrawdown, 1e-9)
	assert.InDelta(t, 985.0, s.Balance, 1e-9)
	assert.InDelta(t, -1.5, s.ReturnPercent, 1e-9)
}

func TestComputeStats_WinRateBounds(t *testing.T) {
	all := ComputeStats([]Trade{{Profit: 1}, {Profit: 2}}, 100)
	none := ComputeStats([]Trade{{Profit: -1}}, 100)
	assert.Equal(t, 100.0, all.WinRate)
	assert.Equal(t, 0.0, none.WinRate)
}

func TestPosition_Close(t *testing.T) {
	p := Position{EntryDate: "2024-01-01", EntryPrice: 100, Basis: BasisClose, Side: SideLong, Status: StatusOpen}
	tr := p.Close(1, Fill{Date: "2024-01-02", Price: 110, Basis: BasisClose})
	assert.Equal(t, 10.0, tr.Profit)
	assert.InDelta(t, 10.0, tr.ProfitPercent, 1e-9)
	assert.Equal(t, StatusClosed, tr.Status)
	assert.Equal(t, 1, tr.Seq)
	assert.True(t, tr.Win())
}

// --- Config ---

func TestBacktestConfig_DefaultIsValid(t *testing.T) {
	cfg := DefaultBacktestConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime())
}

func TestBacktestConfig_Invalid(t *testing.T) {
	cases := map[string]func(*BacktestConfig){
		"strategy": func(c *BacktestConfig) { c.Strategy = "MOON" },
		"basis":    func(c *BacktestConfig) { c.PriceBasis = "HIGH" },
		"month":    func(c *BacktestConfig) { c.StartMonth = 13 },
		"weekday":  func(c *BacktestConfig) { c.BuyWeekday = 7 },
		"capital":  func(c *BacktestConfig) { c.InitialCapital = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultBacktestConfig()
			mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestMAVisibility(t *testing.T) {
	v := DefaultMAVisibility()
	assert.Equal(t, []int{5, 10, 20, 60}, v.Visible())
	assert.NoError(t, v.Set(240, true))
	assert.NoError(t, v.Set(5, false))
	assert.Equal(t, []int{10, 20, 60, 240}, v.Visible())
	assert.Error(t, v.Set(7, true))
}
