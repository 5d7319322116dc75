package domain

import (
	"fmt"
	"strings"
	"time"
)

// StrategyKind identifies one member of the closed strategy set.
type StrategyKind string

const (
	StrategyNextDayFlip StrategyKind = "BUY_TODAY_SELL_TOMORROW"
	StrategyWeekday     StrategyKind = "WEEKDAY_STRATEGY"
	StrategyManual      StrategyKind = "MANUAL"
)

// StrategyKinds lists every known strategy in display order.
var StrategyKinds = []StrategyKind{StrategyNextDayFlip, StrategyWeekday, StrategyManual}

// Valid reports whether k is a known strategy.
func (k StrategyKind) Valid() bool {
	for _, s := range StrategyKinds {
		if s == k {
			return true
		}
	}
	return false
}

// PriceBasis selects which bar field fills entries and exits.
type PriceBasis string

const (
	BasisOpen  PriceBasis = "OPEN"
	BasisClose PriceBasis = "CLOSE"
)

// Valid reports whether b is OPEN or CLOSE.
func (b PriceBasis) Valid() bool {
	return b == BasisOpen || b == BasisClose
}

// PriceOf returns the bar's price for this basis.
func (b PriceBasis) PriceOf(bar Bar) float64 {
	if b == BasisOpen {
		return bar.Open
	}
	return bar.Close
}

// BacktestConfig is the user-chosen configuration for one run.
// It is immutable for the lifetime of a run.
type BacktestConfig struct {
	Strategy       StrategyKind `json:"strategy"`
	PriceBasis     PriceBasis   `json:"priceBasis"`
	StartYear      int          `json:"startYear"`
	StartMonth     time.Month   `json:"startMonth"`
	BuyWeekday     time.Weekday `json:"buyWeekday"`
	SellWeekday    time.Weekday `json:"sellWeekday"`
	InitialCapital float64      `json:"initialCapital"`
}

// DefaultBacktestConfig returns the configuration a fresh session starts with.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		Strategy:       StrategyNextDayFlip,
		PriceBasis:     BasisClose,
		StartYear:      2024,
		StartMonth:     time.January,
		BuyWeekday:     time.Monday,
		SellWeekday:    time.Wednesday,
		InitialCapital: 1_000_000,
	}
}

// StartTime is the first day of the configured start month at 00:00 UTC.
func (c BacktestConfig) StartTime() time.Time {
	return time.Date(c.StartYear, c.StartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// Validate rejects structurally invalid configurations. Start dates outside
// the data are not an error; the controller clamps them.
func (c BacktestConfig) Validate() error {
	var problems []string
	if !c.Strategy.Valid() {
		problems = append(problems, fmt.Sprintf("unknown strategy %q", c.Strategy))
	}
	if !c.PriceBasis.Valid() {
		problems = append(problems, fmt.Sprintf("unknown price basis %q", c.PriceBasis))
	}
	if c.StartMonth < time.January || c.StartMonth > time.December {
		problems = append(problems, fmt.Sprintf("start month %d out of range", c.StartMonth))
	}
	if c.StartYear < 1 || c.StartYear > 9999 {
		problems = append(problems, fmt.Sprintf("start year %d out of range", c.StartYear))
	}
	if !validWeekday(c.BuyWeekday) {
		problems = append(problems, fmt.Sprintf("buy weekday %d out of range", c.BuyWeekday))
	}
	if !validWeekday(c.SellWeekday) {
		problems = append(problems, fmt.Sprintf("sell weekday %d out of range", c.SellWeekday))
	}
	if c.InitialCapital <= 0 {
		problems = append(problems, "initial capital must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func validWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}
