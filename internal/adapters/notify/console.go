package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// Console implementa ports.Notifier sobre la terminal.
type Console struct {
	out     io.Writer
	verbose bool // imprime cada tick, no solo los trades
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole crea un notifier que escribe en stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter crea un notifier con writer propio (tests).
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// OnTick imprime una línea por trade, o por barra en modo verbose.
func (c *Console) OnTick(_ context.Context, ev domain.TickEvent) {
	switch {
	case ev.Stopped:
		fmt.Fprintf(c.out, "[%s] %s end of data\n", ev.Bar.Date, ev.Code)
	case ev.Opened != nil:
		fmt.Fprintf(c.out, "[%s] %s BUY  @ %s (%s)\n",
			ev.Bar.Date, ev.Code, price(ev.Opened.EntryPrice), ev.Opened.Basis)
	case ev.Closed != nil:
		t := ev.Closed
		fmt.Fprintf(c.out, "[%s] %s SELL @ %s  pnl %s (%s)  #%d\n",
			ev.Bar.Date, ev.Code, price(t.ExitPrice), signed(t.Profit), pct(t.ProfitPercent), t.Seq)
	case c.verbose:
		fmt.Fprintf(c.out, "[%s] %s close %s  %s\n",
			ev.Bar.Date, ev.Code, price(ev.Bar.Close), maLine(ev.Bar))
	}
}

// Report imprime la tabla de trades y las estadísticas de la corrida.
func (c *Console) Report(_ context.Context, snap domain.Snapshot) error {
	fmt.Fprintf(c.out, "\n=== %s %s | %s | basis %s | run %s ===\n",
		snap.Code, snap.Name, snap.Config.Strategy, snap.Config.PriceBasis, shortID(snap.RunID))

	if len(snap.Trades) == 0 {
		fmt.Fprintln(c.out, "  no closed trades")
	} else {
		c.printTrades(snap.Trades)
	}
	if snap.Position != nil {
		fmt.Fprintf(c.out, "  open: bought %s @ %s, unrealized %s\n",
			snap.Position.EntryDate, price(snap.Position.EntryPrice), signed(snap.Unrealized))
	}
	c.printStats(snap.Stats)
	return nil
}

func (c *Console) printTrades(trades []domain.Trade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Buy", "Exit", "Sell", "P&L", "P&L %")
	for _, t := range trades {
		table.Append(
			fmt.Sprintf("%d", t.Seq),
			t.EntryDate,
			price(t.EntryPrice),
			t.ExitDate,
			price(t.ExitPrice),
			signed(t.Profit),
			pct(t.ProfitPercent),
		)
	}
	table.Render()
}

func (c *Console) printStats(s domain.Stats) {
	fmt.Fprintf(c.out, "\n  Trades: %d  (W %d / L %d)  win rate %.1f%%\n", s.TradeCount, s.Wins, s.Losses, s.WinRate)
	fmt.Fprintf(c.out, "  Total P&L: %s  avg %s  best %s  worst %s\n",
		signed(s.TotalProfit), pct(s.AvgProfitPercent), signed(s.BestTrade), signed(s.WorstTrade))
	fmt.Fprintf(c.out, "  Max drawdown: %s\n", price(s.MaxDrawdown))
	fmt.Fprintf(c.out, "  Balance: %s -> %s  (%s)\n\n", price(s.InitialCapital), price(s.Balance), pct(s.ReturnPercent))
}

// PrintInstruments lista el catálogo importado.
func (c *Console) PrintInstruments(instruments []domain.Instrument) {
	if len(instruments) == 0 {
		fmt.Fprintln(c.out, "No instruments imported")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Code", "Name", "Bars", "From", "To")
	for _, in := range instruments {
		table.Append(in.Code, in.Name, fmt.Sprintf("%d", in.Bars), in.FirstDate, in.LastDate)
	}
	table.Render()
}

// PrintRuns lista las corridas del diario, la más reciente primero.
func (c *Console) PrintRuns(runs []ports.RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No runs recorded")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Started", "Code", "Strategy", "Basis", "Trades", "P&L")
	for _, r := range runs {
		table.Append(
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Code,
			string(r.Config.Strategy),
			string(r.Config.PriceBasis),
			fmt.Sprintf("%d", r.TradeCount),
			signed(r.Profit),
		)
	}
	table.Render()
}

// PrintImport resume una importación y las primeras filas descartadas.
func (c *Console) PrintImport(rep domain.NormalizeReport, skipped []domain.SkippedRow, instruments int) {
	fmt.Fprintf(c.out, "Imported %d bars for %d instruments (%d rows skipped)\n",
		rep.Accepted, instruments, len(skipped))
	for i, s := range skipped {
		if i == 5 {
			fmt.Fprintf(c.out, "  ... %d more\n", len(skipped)-5)
			break
		}
		fmt.Fprintf(c.out, "  line %d %s: %s\n", s.Line, s.Code, s.Reason)
	}
}

func maLine(b domain.Bar) string {
	var parts []string
	for _, w := range domain.MAWindows {
		if v, ok := b.MA.Get(w); ok {
			parts = append(parts, fmt.Sprintf("ma%d %.2f", w, v))
		}
	}
	return strings.Join(parts, " ")
}

func price(v float64) string  { return fmt.Sprintf("%.2f", v) }
func signed(v float64) string { return fmt.Sprintf("%+.2f", v) }
func pct(v float64) string    { return fmt.Sprintf("%+.2f%%", v) }

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
