package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/forfunphy/stockmove/internal/adapters/notify"
	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSnapshot() domain.Snapshot {
	trades := []domain.Trade{
		{Seq: 1, EntryDate: "2024-01-02", EntryPrice: 590, ExitDate: "2024-01-03", ExitPrice: 578, Profit: -12, ProfitPercent: -2.03},
		{Seq: 2, EntryDate: "2024-01-04", EntryPrice: 580, ExitDate: "2024-01-05", ExitPrice: 593, Profit: 13, ProfitPercent: 2.24},
	}
	return domain.Snapshot{
		Code:   "2330",
		Name:   "TSMC",
		RunID:  "0123456789abcdef",
		Config: domain.DefaultBacktestConfig(),
		Trades: trades,
		Stats:  domain.ComputeStats(trades, 1_000_000),
	}
}

func TestConsole_Report(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Report(context.Background(), makeSnapshot()))

	out := buf.String()
	assert.Contains(t, out, "2330 TSMC")
	assert.Contains(t, out, "BUY_TODAY_SELL_TOMORROW")
	assert.Contains(t, out, "run 01234567")
	assert.Contains(t, out, "2024-01-04")
	assert.Contains(t, out, "-12.00")
	assert.Contains(t, out, "+13.00")
	assert.Contains(t, out, "win rate 50.0%")
	assert.Contains(t, out, "1000001.00")
}

func TestConsole_Report_NoTradesWithOpenPosition(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	snap := domain.Snapshot{
		Code:       "0050",
		Config:     domain.DefaultBacktestConfig(),
		Position:   &domain.Position{EntryDate: "2024-01-02", EntryPrice: 100},
		Unrealized: 3.5,
		Stats:      domain.ComputeStats(nil, 1000),
	}
	require.NoError(t, n.Report(context.Background(), snap))

	out := buf.String()
	assert.Contains(t, out, "no closed trades")
	assert.Contains(t, out, "unrealized +3.50")
	assert.Contains(t, out, "win rate 0.0%")
}

func TestConsole_OnTick(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)
	ctx := context.Background()
	bar := domain.Bar{Date: "2024-01-02", Close: 101}

	n.OnTick(ctx, domain.TickEvent{Code: "X", Bar: bar, Decision: domain.DecisionHold})
	assert.Empty(t, buf.String(), "quiet mode skips plain bars")

	n.OnTick(ctx, domain.TickEvent{Code: "X", Bar: bar, Opened: &domain.Position{EntryPrice: 101, Basis: domain.BasisClose}})
	n.OnTick(ctx, domain.TickEvent{Code: "X", Bar: bar, Closed: &domain.Trade{Seq: 1, ExitPrice: 105, Profit: 4, ProfitPercent: 3.96}})
	n.OnTick(ctx, domain.TickEvent{Code: "X", Bar: bar, Stopped: true})

	out := buf.String()
	assert.Contains(t, out, "BUY  @ 101.00 (CLOSE)")
	assert.Contains(t, out, "SELL @ 105.00  pnl +4.00 (+3.96%)  #1")
	assert.Contains(t, out, "end of data")
}

func TestConsole_OnTick_Verbose(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)
	ma := 100.25
	n.OnTick(context.Background(), domain.TickEvent{Code: "X", Bar: domain.Bar{Date: "2024-01-09", Close: 101, MA: domain.MovingAverages{MA5: &ma}}})
	assert.Contains(t, buf.String(), "close 101.00  ma5 100.25")
}

func TestConsole_PrintInstrumentsAndRuns(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintInstruments(nil)
	n.PrintRuns(nil)
	assert.Contains(t, buf.String(), "No instruments imported")
	assert.Contains(t, buf.String(), "No runs recorded")

	buf.Reset()
	n.PrintInstruments([]domain.Instrument{{Code: "2330", Name: "TSMC", Bars: 242, FirstDate: "2024-01-02", LastDate: "2024-12-31"}})
	n.PrintRuns([]ports.RunInfo{{ID: "abcdef0123456789", Code: "2330", Config: domain.DefaultBacktestConfig(), StartedAt: time.Now(), TradeCount: 3, Profit: 12.5}})

	out := buf.String()
	assert.Contains(t, out, "242")
	assert.Contains(t, out, "2024-12-31")
	assert.Contains(t, out, "abcdef01")
	assert.Contains(t, out, "+12.50")
}

func TestConsole_PrintImport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	var skipped []domain.SkippedRow
	for i := 0; i < 7; i++ {
		skipped = append(skipped, domain.SkippedRow{Line: i + 2, Code: "X", Reason: "bad"})
	}
	n.PrintImport(domain.NormalizeReport{Accepted: 10}, skipped, 1)

	out := buf.String()
	assert.Contains(t, out, "Imported 10 bars for 1 instruments (7 rows skipped)")
	assert.Contains(t, out, "line 2 X: bad")
	assert.Contains(t, out, "... 2 more")
}
