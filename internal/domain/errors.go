package domain

import "errors"

var (
	ErrPositionOpen      = errors.New("a position is already open")
	ErrNoPosition        = errors.New("no open position")
	ErrBasisMismatch     = errors.New("exit basis differs from entry basis")
	ErrNotManual         = errors.New("manual orders require the MANUAL strategy")
	ErrInvalidConfig     = errors.New("invalid backtest configuration")
	ErrEmptyImport       = errors.New("import produced no usable bars")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrNoData            = errors.New("no data loaded")
)
