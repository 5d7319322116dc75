package domain

import (
	"sort"
	"time"
)

// Series es el historial de barras de un instrumento, en orden cronológico.
type Series struct {
	Code string
	Name string
	Bars []Bar
}

// Len devuelve la cantidad de barras.
func (s Series) Len() int { return len(s.Bars) }

// IndexAtOrAfter devuelve el primer índice con fecha >= t, o -1.
func (s Series) IndexAtOrAfter(t time.Time) int {
	ms := t.UnixMilli()
	i := sort.Search(len(s.Bars), func(i int) bool { return s.Bars[i].Timestamp >= ms })
	if i == len(s.Bars) {
		return -1
	}
	return i
}

// Catalog mapea código de instrumento a serie y recuerda el orden de aparición.
type Catalog struct {
	order  []string
	series map[string]Series
}

// Len devuelve la cantidad de instrumentos.
func (c Catalog) Len() int { return len(c.order) }

// Codes devuelve los códigos en orden de aparición.
func (c Catalog) Codes() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Get devuelve la serie de code.
func (c Catalog) Get(code string) (Series, bool) {
	s, ok := c.series[code]
	return s, ok
}

// First devuelve el primer instrumento de la entrada.
func (c Catalog) First() (Series, bool) {
	if len(c.order) == 0 {
		return Series{}, false
	}
	return c.series[c.order[0]], true
}

// Instrument resume una serie del catálogo.
type Instrument struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Bars      int    `json:"bars"`
	FirstDate string `json:"firstDate"`
	LastDate  string `json:"lastDate"`
}

// Instruments lista el catálogo en orden de aparición.
func (c Catalog) Instruments() []Instrument {
	out := make([]Instrument, 0, len(c.order))
	for _, code := range c.order {
		s := c.series[code]
		out = append(out, Instrument{
			Code:      code,
			Name:      s.Name,
			Bars:      s.Len(),
			FirstDate: s.Bars[0].Date,
			LastDate:  s.Bars[s.Len()-1].Date,
		})
	}
	return out
}

// NormalizeReport resume lo que Normalize aceptó y descartó.
type NormalizeReport struct {
	Rows     int
	Accepted int
	Skipped  []SkippedRow
}

// Normalize agrupa los registros por instrumento y ordena cada grupo por fecha.
// Descarta filas con fechas inválidas o repetidas y precalcula las medias
// móviles. No hace I/O: quien llama decide cómo mostrar el reporte.
func Normalize(records []RawRecord) (Catalog, NormalizeReport) {
	rep := NormalizeReport{Rows: len(records)}
	cat := Catalog{series: make(map[string]Series)}
	groups := make(map[string][]Bar)

	for _, r := range records {
		t, err := ParseDate(r.Date)
		if err != nil {
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: r.Line, Code: r.Code, Reason: err.Error()})
			continue
		}
		if _, seen := groups[r.Code]; !seen {
			cat.order = append(cat.order, r.Code)
		}
		vol := r.Volume
		if vol < 0 {
			vol = 0
		}
		groups[r.Code] = append(groups[r.Code], Bar{
			Code:      r.Code,
			Name:      r.Name,
			Date:      t.Format("2006-01-02"),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    vol,
			Timestamp: t.UnixMilli(),
		})
	}

	for _, code := range cat.order {
		bars := groups[code]
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

		unique := bars[:0]
		for _, b := range bars {
			if n := len(unique); n > 0 && unique[n-1].Timestamp == b.Timestamp {
				rep.Skipped = append(rep.Skipped, SkippedRow{Code: code, Reason: "duplicate date " + b.Date})
				continue
			}
			unique = append(unique, b)
		}

		ComputeMovingAverages(unique)
		rep.Accepted += len(unique)
		cat.series[code] = Series{Code: code, Name: unique[0].Name, Bars: unique}
	}

	return cat, rep
}

// NewCatalog arma un catálogo con series ya normalizadas, respetando el orden.
// Se usa cuando las series vuelven del storage.
func NewCatalog(series ...Series) Catalog {
	cat := Catalog{series: make(map[string]Series, len(series))}
	for _, s := range series {
		if s.Len() == 0 {
			continue
		}
		if _, dup := cat.series[s.Code]; !dup {
			cat.order = append(cat.order, s.Code)
		}
		cat.series[s.Code] = s
	}
	return cat
}
