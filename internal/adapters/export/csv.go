package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/forfunphy/stockmove/internal/domain"
)

var tradeHeader = []string{
	"seq",
	"entry_date",
	"entry_price",
	"exit_date",
	"exit_price",
	"basis",
	"profit",
	"profit_pct",
	"cum_profit",
}

// WriteTradesCSV writes closed trades with a running cumulative profit.
func WriteTradesCSV(w io.Writer, trades []domain.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return fmt.Errorf("export.WriteTradesCSV: header: %w", err)
	}

	var cum float64
	for _, t := range trades {
		cum += t.Profit
		row := []string{
			strconv.Itoa(t.Seq),
			t.EntryDate,
			fmtFloat(t.EntryPrice),
			t.ExitDate,
			fmtFloat(t.ExitPrice),
			string(t.Basis),
			fmtFloat(t.Profit),
			fmtFloat(t.ProfitPercent),
			fmtFloat(cum),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export.WriteTradesCSV: seq %d: %w", t.Seq, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTradesFile creates path and writes trades to it.
func WriteTradesFile(path string, trades []domain.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export.WriteTradesFile: %w", err)
	}
	if err := WriteTradesCSV(f, trades); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 4, 64)
}
