package domain

import "time"

// MAWindows son las ventanas de media móvil precalculadas para cada barra.
var MAWindows = [...]int{5, 10, 20, 60, 120, 240}

// MovingAverages guarda una media opcional por cada ventana de MAWindows.
// nil significa que la serie tenía menos de w barras en ese punto.
type MovingAverages struct {
	MA5   *float64 `json:"ma5,omitempty"`
	MA10  *float64 `json:"ma10,omitempty"`
	MA20  *float64 `json:"ma20,omitempty"`
	MA60  *float64 `json:"ma60,omitempty"`
	MA120 *float64 `json:"ma120,omitempty"`
	MA240 *float64 `json:"ma240,omitempty"`
}

// Get devuelve la media de la ventana w y si está presente.
func (m MovingAverages) Get(w int) (float64, bool) {
	p := m.field(w)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

func (m *MovingAverages) set(w int, v float64) {
	if p := m.field(w); p != nil {
		*p = &v
	}
}

func (m *MovingAverages) field(w int) **float64 {
	switch w {
	case 5:
		return &m.MA5
	case 10:
		return &m.MA10
	case 20:
		return &m.MA20
	case 60:
		return &m.MA60
	case 120:
		return &m.MA120
	case 240:
		return &m.MA240
	}
	return nil
}

// Bar es el registro OHLCV diario de un instrumento. No se modifica después
// de normalizar: el resto del código recibe copias o slices de solo lectura.
type Bar struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Date      string         `json:"date"` // YYYY-MM-DD
	Open      float64        `json:"open"`
	High      float64        `json:"high"`
	Low       float64        `json:"low"`
	Close     float64        `json:"close"`
	Volume    float64        `json:"volume"`
	Timestamp int64          `json:"timestamp"` // ms Unix de Date a las 00:00 UTC
	MA        MovingAverages `json:"ma"`
}

// Time devuelve la fecha de la barra a medianoche UTC.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Weekday sale de la fecha calendario, no de la posición de la barra.
func (b Bar) Weekday() time.Weekday {
	return b.Time().Weekday()
}

// RawRecord es una fila parseada de la tabla de entrada, antes de normalizar.
type RawRecord struct {
	Line   int
	Date   string
	Code   string
	Name   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SkippedRow registra por qué una fila no entró en ninguna serie.
type SkippedRow struct {
	Line   int    `json:"line"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}
