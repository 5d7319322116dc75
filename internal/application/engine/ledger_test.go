package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forfunphy/stockmove/internal/application/engine"
	"github.com/forfunphy/stockmove/internal/domain"
)

func fill(date string, price float64) domain.Fill {
	return domain.Fill{Date: date, Price: price, Basis: domain.BasisClose}
}

func TestLedger_EnterExit(t *testing.T) {
	l := engine.NewLedger(1000)

	p, err := l.Enter(fill("2024-01-01", 100))
	require.NoError(t, err)
	assert.Equal(t, domain.SideLong, p.Side)
	assert.Equal(t, domain.StatusOpen, p.Status)
	require.NotNil(t, l.Position())

	tr, err := l.Exit(fill("2024-01-02", 112.5))
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Seq)
	assert.InDelta(t, 12.5, tr.Profit, 1e-9)
	assert.InDelta(t, 12.5, tr.ProfitPercent, 1e-9)
	assert.Nil(t, l.Position())
	assert.InDelta(t, 1012.5, l.Balance(), 1e-9)
}

func TestLedger_SecondEnterRejectedWithoutMutation(t *testing.T) {
	l := engine.NewLedger(1000)
	_, err := l.Enter(fill("2024-01-01", 100))
	require.NoError(t, err)

	_, err = l.Enter(fill("2024-01-02", 50))
	assert.True(t, errors.Is(err, domain.ErrPositionOpen))
	assert.Equal(t, 100.0, l.Position().EntryPrice)
	assert.Empty(t, l.Trades())
}

func TestLedger_ExitWhenFlat(t *testing.T) {
	l := engine.NewLedger(1000)
	_, err := l.Exit(fill("2024-01-02", 50))
	assert.True(t, errors.Is(err, domain.ErrNoPosition))
	assert.Equal(t, 1000.0, l.Balance())
}

func TestLedger_ExitBasisMismatch(t *testing.T) {
	l := engine.NewLedger(1000)
	_, err := l.Enter(fill("2024-01-01", 100))
	require.NoError(t, err)

	_, err = l.Exit(domain.Fill{Date: "2024-01-02", Price: 120, Basis: domain.BasisOpen})
	assert.True(t, errors.Is(err, domain.ErrBasisMismatch))
	assert.NotNil(t, l.Position(), "position stays open")
}

func TestLedger_TradesIsACopy(t *testing.T) {
	l := engine.NewLedger(1000)
	_, _ = l.Enter(fill("2024-01-01", 100))
	_, _ = l.Exit(fill("2024-01-02", 90))

	trades := l.Trades()
	trades[0].Profit = 1e9
	assert.InDelta(t, -10.0, l.Trades()[0].Profit, 1e-9)
}

func TestLedger_StatsIgnoreOpenPosition(t *testing.T) {
	l := engine.NewLedger(1000)
	_, _ = l.Enter(fill("2024-01-01", 100))
	_, _ = l.Exit(fill("2024-01-02", 110))
	_, _ = l.Enter(fill("2024-01-03", 110))

	s := l.Stats()
	assert.Equal(t, 1, s.TradeCount)
	assert.Equal(t, 100.0, s.WinRate)
	assert.InDelta(t, 1010.0, s.Balance, 1e-9)
}
