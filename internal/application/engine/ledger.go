package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/forfunphy/stockmove/internal/domain"
)

// Ledger tracks the single open position, the closed trades and the cash
// balance of one run. It is not safe for concurrent use; the controller
// serializes access.
type Ledger struct {
	initial  float64
	balance  decimal.Decimal
	position *domain.Position
	trades   []domain.Trade
}

// NewLedger returns an empty ledger with balance = initialCapital.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		initial: initialCapital,
		balance: decimal.NewFromFloat(initialCapital),
	}
}

// Enter opens a long position at fill. It fails without side effects when a
// position is already open.
func (l *Ledger) Enter(fill domain.Fill) (domain.Position, error) {
	if l.position != nil {
		return domain.Position{}, fmt.Errorf("engine.Enter: %w", domain.ErrPositionOpen)
	}
	p := domain.Position{
		EntryDate:      fill.Date,
		EntryTimestamp: fill.Timestamp,
		EntryPrice:     fill.Price,
		Basis:          fill.Basis,
		Side:           domain.SideLong,
		Status:         domain.StatusOpen,
	}
	l.position = &p
	return p, nil
}

// Exit closes the open position at fill and books the profit.
func (l *Ledger) Exit(fill domain.Fill) (domain.Trade, error) {
	if l.position == nil {
		return domain.Trade{}, fmt.Errorf("engine.Exit: %w", domain.ErrNoPosition)
	}
	if fill.Basis != l.position.Basis {
		return domain.Trade{}, fmt.Errorf("engine.Exit: %s vs %s: %w", fill.Basis, l.position.Basis, domain.ErrBasisMismatch)
	}
	t := l.position.Close(len(l.trades)+1, fill)
	l.trades = append(l.trades, t)
	l.balance = l.balance.Add(decimal.NewFromFloat(t.Profit))
	l.position = nil
	return t, nil
}

// Position returns a copy of the open position, or nil when flat.
func (l *Ledger) Position() *domain.Position {
	if l.position == nil {
		return nil
	}
	p := *l.position
	return &p
}

// Trades returns a copy of the closed trades in close order.
func (l *Ledger) Trades() []domain.Trade {
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Balance is initial capital plus realized profit.
func (l *Ledger) Balance() float64 {
	return l.balance.InexactFloat64()
}

// Stats derives the run statistics from closed trades.
func (l *Ledger) Stats() domain.Stats {
	s := domain.ComputeStats(l.trades, l.initial)
	s.Balance = l.Balance()
	return s
}
