package domain

// ComputeMovingAverages fills bar.MA for every window in MAWindows using a
// rolling sum over Close. Bars must already be in chronological order.
func ComputeMovingAverages(bars []Bar) {
	for _, w := range MAWindows {
		var sum float64
		for i := range bars {
			sum += bars[i].Close
			if i >= w {
				sum -= bars[i-w].Close
			}
			if i < w-1 {
				bars[i].MA.clear(w)
				continue
			}
			bars[i].MA.set(w, sum/float64(w))
		}
	}
}

func (m *MovingAverages) clear(w int) {
	if p := m.field(w); p != nil {
		*p = nil
	}
}
