package strategy

import (
	"math"

	"crossback/internal/domain"
)

// Generate computes the fast and slow trailing means of Close and derives a
// position for every bar where both are defined. Bars before the slow window
// fills are dropped, so a series of n >= slow bars yields n-slow+1 rows and a
// shorter series yields none. Windows must satisfy 0 < fast < slow; any other
// pair yields no rows.
//
// The position is PositionLong only when the fast mean is strictly above the
// slow mean; ties resolve to PositionShort. A window whose closes are all
// identical averages to exactly that close, so a flat market always ties.
func Generate(bars []domain.Bar, fast, slow int) []domain.SignalRow {
	if fast <= 0 || fast >= slow || len(bars) < slow {
		return nil
	}

	rows := make([]domain.SignalRow, 0, len(bars)-slow+1)
	var fastSum, slowSum rollingSum
	run := 0 // consecutive identical closes ending at i
	for i, b := range bars {
		if i > 0 && b.Close == bars[i-1].Close {
			run++
		} else {
			run = 1
		}
		fastSum.add(b.Close)
		slowSum.add(b.Close)
		if i >= fast {
			fastSum.add(-bars[i-fast].Close)
		}
		if i >= slow {
			slowSum.add(-bars[i-slow].Close)
		}
		if i < slow-1 {
			continue
		}

		row := domain.SignalRow{
			Timestamp: b.Timestamp,
			Close:     b.Close,
			FastAvg:   windowMean(&fastSum, fast, run, b.Close),
			SlowAvg:   windowMean(&slowSum, slow, run, b.Close),
			Position:  domain.PositionShort,
		}
		if row.FastAvg > row.SlowAvg {
			row.Position = domain.PositionLong
		}
		rows = append(rows, row)
	}
	return rows
}

func windowMean(s *rollingSum, window, run int, last float64) float64 {
	if run >= window {
		return last
	}
	return s.value() / float64(window)
}

// rollingSum is a Neumaier-compensated running sum.
type rollingSum struct {
	sum, comp float64
}

func (r *rollingSum) add(x float64) {
	t := r.sum + x
	if math.Abs(r.sum) >= math.Abs(x) {
		r.comp += (r.sum - t) + x
	} else {
		r.comp += (x - t) + r.sum
	}
	r.sum = t
}

func (r *rollingSum) value() float64 {
	return r.sum + r.comp
}
