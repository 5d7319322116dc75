package strategy

import "github.com/forfunphy/stockmove/internal/domain"

// dayMS is one calendar day in milliseconds.
const dayMS = 24 * 60 * 60 * 1000

// NextDayFlip buys when flat and sells on the first bar at least one
// calendar day after entry.
type NextDayFlip struct{}

func (NextDayFlip) Kind() domain.StrategyKind { return domain.StrategyNextDayFlip }

func (NextDayFlip) Decide(bar domain.Bar, _ domain.BacktestConfig, pos *domain.Position) domain.Decision {
	if pos == nil {
		return domain.DecisionEnter
	}
	if bar.Timestamp-pos.EntryTimestamp >= dayMS {
		return domain.DecisionExit
	}
	return domain.DecisionHold
}
