package strategy

import "github.com/forfunphy/stockmove/internal/domain"

// Manual never trades on its own; orders come from ManualBuy/ManualSell.
type Manual struct{}

func (Manual) Kind() domain.StrategyKind { return domain.StrategyManual }

func (Manual) Decide(domain.Bar, domain.BacktestConfig, *domain.Position) domain.Decision {
	return domain.DecisionHold
}
