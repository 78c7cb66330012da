package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulate_ConstantPrice(t *testing.T) {
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 1300
	}
	acc, err := Accumulate(prices, 1_000_000)
	require.NoError(t, err)

	assert.InDelta(t, 1300, acc.EffectivePrice, 1e-9)
	assert.InDelta(t, 12_000_000.0/1300, acc.Units, 1e-9)
	assert.Equal(t, 12_000_000.0, acc.Contributed)
	for i, p := range acc.EffectivePrices {
		assert.InDelta(t, 1300, p, 1e-9, "purchase %d", i+1)
	}
}

func TestAccumulate_HarmonicMean(t *testing.T) {
	acc, err := Accumulate([]float64{100, 200}, 100)
	require.NoError(t, err)
	// 1 unit + 0.5 unit for 200 spent
	assert.InDelta(t, 1.5, acc.Units, 1e-12)
	assert.InDelta(t, 200/1.5, acc.EffectivePrice, 1e-9)
	assert.InDelta(t, 100, acc.EffectivePrices[0], 1e-12)
	assert.InDelta(t, acc.EffectivePrice, acc.EffectivePrices[1], 1e-9)
}

func TestAccumulate_MonotonicCumulativeAverage(t *testing.T) {
	down := []float64{1500, 1420, 1390, 1300, 1250, 1111, 1000}
	acc, err := Accumulate(down, 50)
	require.NoError(t, err)
	for i := 1; i < len(acc.EffectivePrices); i++ {
		assert.LessOrEqual(t, acc.EffectivePrices[i], acc.EffectivePrices[i-1], "step %d", i)
	}

	up := []float64{1000, 1001, 1050, 1200, 1201, 1400}
	acc, err = Accumulate(up, 50)
	require.NoError(t, err)
	for i := 1; i < len(acc.EffectivePrices); i++ {
		assert.GreaterOrEqual(t, acc.EffectivePrices[i], acc.EffectivePrices[i-1], "step %d", i)
	}
}

func TestAccumulate_Degenerate(t *testing.T) {
	_, err := Accumulate(nil, 100)
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)

	_, err = Accumulate([]float64{10, -1}, 100)
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)
}
