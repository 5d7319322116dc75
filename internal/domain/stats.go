package domain

import "github.com/shopspring/decimal"

// Stats are derived from closed trades only; an open position never counts.
type Stats struct {
	TradeCount       int     `json:"tradeCount"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"winRate"` // percent, 0 with no trades
	TotalProfit      float64 `json:"totalProfit"`
	AvgProfitPercent float64 `json:"avgProfitPercent"`
	BestTrade        float64 `json:"bestTrade"`
	WorstTrade       float64 `json:"worstTrade"`
	MaxDrawdown      float64 `json:"maxDrawdown"` // of realized cumulative profit, >= 0
	InitialCapital   float64 `json:"initialCapital"`
	Balance          float64 `json:"balance"`
	ReturnPercent    float64 `json:"returnPercent"`
}

// ComputeStats aggregates trades. Profit sums use decimal arithmetic so the
// balance does not drift over long runs.
func ComputeStats(trades []Trade, initialCapital float64) Stats {
	s := Stats{InitialCapital: initialCapital, Balance: initialCapital}
	if len(trades) == 0 {
		return s
	}

	total := decimal.Zero
	pctSum := decimal.Zero
	var peak, drawdown decimal.Decimal
	for i, t := range trades {
		p := decimal.NewFromFloat(t.Profit)
		total = total.Add(p)
		pctSum = pctSum.Add(decimal.NewFromFloat(t.ProfitPercent))

		if t.Win() {
			s.Wins++
		} else {
			s.Losses++
		}
		if i == 0 || t.Profit > s.BestTrade {
			s.BestTrade = t.Profit
		}
		if i == 0 || t.Profit < s.WorstTrade {
			s.WorstTrade = t.Profit
		}

		if total.GreaterThan(peak) {
			peak = total
		}
		if dd := peak.Sub(total); dd.GreaterThan(drawdown) {
			drawdown = dd
		}
	}

	n := decimal.NewFromInt(int64(len(trades)))
	s.TradeCount = len(trades)
	s.WinRate = float64(s.Wins) / float64(s.TradeCount) * 100
	s.TotalProfit = total.InexactFloat64()
	s.AvgProfitPercent = pctSum.Div(n).InexactFloat64()
	s.MaxDrawdown = drawdown.InexactFloat64()
	s.Balance = decimal.NewFromFloat(initialCapital).Add(total).InexactFloat64()
	if initialCapital > 0 {
		s.ReturnPercent = total.Div(decimal.NewFromFloat(initialCapital)).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return s
}
