package domain

import "fmt"

// MAVisibility is the display-only set of moving averages shown on the chart.
// The engine never reads it.
type MAVisibility struct {
	MA5   bool `json:"ma5"`
	MA10  bool `json:"ma10"`
	MA20  bool `json:"ma20"`
	MA60  bool `json:"ma60"`
	MA120 bool `json:"ma120"`
	MA240 bool `json:"ma240"`
}

// DefaultMAVisibility shows the short and medium averages.
func DefaultMAVisibility() MAVisibility {
	return MAVisibility{MA5: true, MA10: true, MA20: true, MA60: true}
}

// Set changes the visibility of window w.
func (v *MAVisibility) Set(w int, on bool) error {
	switch w {
	case 5:
		v.MA5 = on
	case 10:
		v.MA10 = on
	case 20:
		v.MA20 = on
	case 60:
		v.MA60 = on
	case 120:
		v.MA120 = on
	case 240:
		v.MA240 = on
	default:
		return fmt.Errorf("no moving average for window %d", w)
	}
	return nil
}

// Visible lists the windows that are switched on, in ascending order.
func (v MAVisibility) Visible() []int {
	flags := [...]bool{v.MA5, v.MA10, v.MA20, v.MA60, v.MA120, v.MA240}
	var out []int
	for i, w := range MAWindows {
		if flags[i] {
			out = append(out, w)
		}
	}
	return out
}
