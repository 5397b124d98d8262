package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossback/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes ...float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    "BTC/USD",
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Close:     c,
		}
	}
	return bars
}

func constantCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func TestGenerateRowCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{4, 5, 9, 20, 57} {
		bars := make([]float64, n)
		for i := range bars {
			bars[i] = float64(100 + i%7)
		}
		rows := Generate(barsFromCloses(bars...), 2, 4)
		require.Len(t, rows, n-4+1, "n=%d", n)
		assert.Equal(t, t0.Add(3*time.Minute), rows[0].Timestamp, "first row is the bar that fills the slow window")
		assert.Equal(t, t0.Add(time.Duration(n-1)*time.Minute), rows[len(rows)-1].Timestamp)
	}
}

func TestGenerateShortSeries(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Generate(nil, 2, 4))
	assert.Empty(t, Generate(barsFromCloses(1, 2, 3), 2, 4))
	assert.Empty(t, Generate(barsFromCloses(1, 2, 3, 4), 0, 4))
}

func TestGenerateRequiresFastBelowSlow(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(1, 2, 3, 4, 5, 6)
	assert.Nil(t, Generate(bars, 4, 2))
	assert.Nil(t, Generate(bars, 3, 3))
}

func TestGenerateAverages(t *testing.T) {
	t.Parallel()

	rows := Generate(barsFromCloses(10, 10, 10, 10, 20, 30, 5, 5, 5, 5), 2, 4)
	require.Len(t, rows, 7)

	tests := []struct {
		fast, slow float64
		pos        domain.Position
	}{
		{10, 10, domain.PositionShort},
		{15, 12.5, domain.PositionLong},
		{25, 17.5, domain.PositionLong},
		{17.5, 16.25, domain.PositionLong},
		{5, 15, domain.PositionShort},
		{5, 11.25, domain.PositionShort},
		{5, 5, domain.PositionShort},
	}
	for i, tt := range tests {
		assert.InDelta(t, tt.fast, rows[i].FastAvg, 1e-9, "row %d fast", i)
		assert.InDelta(t, tt.slow, rows[i].SlowAvg, 1e-9, "row %d slow", i)
		assert.Equal(t, tt.pos, rows[i].Position, "row %d position", i)
	}
}

func TestGenerateTieIsShort(t *testing.T) {
	t.Parallel()

	rows := Generate(barsFromCloses(constantCloses(300, 100)...), DefaultFastWindow, DefaultSlowWindow)
	require.Len(t, rows, 300-DefaultSlowWindow+1)
	for i, r := range rows {
		require.Equal(t, r.FastAvg, r.SlowAvg, "row %d", i)
		require.Equal(t, domain.PositionShort, r.Position, "row %d", i)
	}
}

func TestGenerateFlatFractionalPriceTies(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{43251.37, 1.7, 0.1, 100.1, 67012.93} {
		rows := Generate(barsFromCloses(constantCloses(2000, price)...), DefaultFastWindow, DefaultSlowWindow)
		require.Len(t, rows, 2000-DefaultSlowWindow+1, "price %v", price)
		for i, r := range rows {
			require.Equal(t, price, r.FastAvg, "price %v row %d fast", price, i)
			require.Equal(t, price, r.SlowAvg, "price %v row %d slow", price, i)
			require.Equal(t, domain.PositionShort, r.Position, "price %v row %d", price, i)
		}
	}
}

func TestGenerateFlatAfterVolatileRun(t *testing.T) {
	t.Parallel()

	// Large swings followed by a long flat stretch: once both windows see
	// only the flat price the means tie exactly.
	var closes []float64
	for i := 0; i < 500; i++ {
		closes = append(closes, 43000+float64(i%13)*977.31-float64(i%7)*0.07)
	}
	closes = append(closes, constantCloses(600, 43251.37)...)

	rows := Generate(barsFromCloses(closes...), DefaultFastWindow, DefaultSlowWindow)
	flatFrom := len(rows) - (600 - DefaultSlowWindow + 1)
	for i := flatFrom; i < len(rows); i++ {
		require.Equal(t, rows[i].FastAvg, rows[i].SlowAvg, "row %d", i)
		require.Equal(t, domain.PositionShort, rows[i].Position, "row %d", i)
	}
}

func TestGenerateCompensatedSum(t *testing.T) {
	t.Parallel()

	// Alternating magnitudes that lose precision in a plain running sum.
	var closes []float64
	for i := 0; i < 5000; i++ {
		if i%2 == 0 {
			closes = append(closes, 1e8+0.1)
		} else {
			closes = append(closes, 0.3)
		}
	}
	rows := Generate(barsFromCloses(closes...), 2, 4)
	for i, r := range rows {
		require.InDelta(t, (1e8+0.4)/2, r.FastAvg, 1e-7, "row %d fast", i)
		require.InDelta(t, (1e8+0.4)/2, r.SlowAvg, 1e-7, "row %d slow", i)
	}
}

func TestGenerateIsPure(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5)
	before := append([]domain.Bar(nil), bars...)

	first := Generate(bars, 3, 5)
	second := Generate(bars, 3, 5)

	assert.Equal(t, first, second)
	assert.Equal(t, before, bars)
}
