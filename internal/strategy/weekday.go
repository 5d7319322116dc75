package strategy

import "github.com/forfunphy/stockmove/internal/domain"

// Weekday buys on the configured buy weekday and sells on the sell weekday.
// With a position open only the exit is evaluated, so a bar whose weekday
// matches both rules closes the position and does not reopen it.
type Weekday struct{}

func (Weekday) Kind() domain.StrategyKind { return domain.StrategyWeekday }

func (Weekday) Decide(bar domain.Bar, cfg domain.BacktestConfig, pos *domain.Position) domain.Decision {
	day := bar.Weekday()
	if pos != nil {
		if day == cfg.SellWeekday {
			return domain.DecisionExit
		}
		return domain.DecisionHold
	}
	if day == cfg.BuyWeekday {
		return domain.DecisionEnter
	}
	return domain.DecisionHold
}
