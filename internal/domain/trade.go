package domain

// Side es siempre LONG: no se modela la venta en corto.
type Side string

const SideLong Side = "LONG"

// TradeStatus distingue una posición abierta de un trade cerrado.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// Fill es una ejecución inmediata al precio base de la barra.
type Fill struct {
	Date      string
	Timestamp int64
	Price     float64
	Basis     PriceBasis
}

// FillAt builds the fill for bar at the given basis.
func FillAt(bar Bar, basis PriceBasis) Fill {
	return Fill{Date: bar.Date, Timestamp: bar.Timestamp, Price: basis.PriceOf(bar), Basis: basis}
}

// Position is the single open long holding, if any.
type Position struct {
	EntryDate      string      `json:"entryDate"`
	EntryTimestamp int64       `json:"entryTimestamp"`
	EntryPrice     float64     `json:"entryPrice"`
	Basis          PriceBasis  `json:"basis"`
	Side           Side        `json:"side"`
	Status         TradeStatus `json:"status"`
}

// Unrealized returns the paper profit at price.
func (p Position) Unrealized(price float64) float64 {
	return price - p.EntryPrice
}

// Trade es una posición cerrada. Los trades son append-only.
type Trade struct {
	Seq            int         `json:"seq"`
	EntryDate      string      `json:"entryDate"`
	EntryTimestamp int64       `json:"entryTimestamp"`
	EntryPrice     float64     `json:"entryPrice"`
	ExitDate       string      `json:"exitDate"`
	ExitTimestamp  int64       `json:"exitTimestamp"`
	ExitPrice      float64     `json:"exitPrice"`
	Basis          PriceBasis  `json:"basis"`
	Side           Side        `json:"side"`
	Profit         float64     `json:"profit"`
	ProfitPercent  float64     `json:"profitPercent"`
	Status         TradeStatus `json:"status"`
}

// Win indica si el trade ganó dinero. Break-even cuenta como pérdida.
func (t Trade) Win() bool { return t.Profit > 0 }

// Close turns the position into a trade at the exit fill.
func (p Position) Close(seq int, exit Fill) Trade {
	profit := exit.Price - p.EntryPrice
	var pct float64
	if p.EntryPrice != 0 {
		pct = profit / p.EntryPrice * 100
	}
	return Trade{
		Seq:            seq,
		EntryDate:      p.EntryDate,
		EntryTimestamp: p.EntryTimestamp,
		EntryPrice:     p.EntryPrice,
		ExitDate:       exit.Date,
		ExitTimestamp:  exit.Timestamp,
		ExitPrice:      exit.Price,
		Basis:          p.Basis,
		Side:           p.Side,
		Profit:         profit,
		ProfitPercent:  pct,
		Status:         StatusClosed,
	}
}

// Decision is the output of a strategy for one bar.
type Decision string

const (
	DecisionEnter Decision = "ENTER"
	DecisionExit  Decision = "EXIT"
	DecisionHold  Decision = "HOLD"
)
