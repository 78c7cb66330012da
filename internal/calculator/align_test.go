package calculator

import (
	"testing"
	"time"

	"DCASimulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(points ...model.PricePoint) *model.PriceSeries {
	return &model.PriceSeries{Symbol: "TEST", Points: points, Earliest: points[0].Time}
}

func TestAlign_CarriesLastObservationForward(t *testing.T) {
	s := series(
		model.PricePoint{Time: date(2024, 1, 2), Close: 10},
		model.PricePoint{Time: date(2024, 1, 5), Close: 12},
		model.PricePoint{Time: date(2024, 1, 9), Close: 11},
	)
	grid := []time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 4), date(2024, 1, 5), date(2024, 1, 31)}
	got := Align(s, grid)
	require.Len(t, got, len(grid))

	assert.False(t, got[0].OK, "grid date before first observation has no value")
	assert.Equal(t, model.SamplePoint{Time: date(2024, 1, 2), Price: 10, OK: true}, got[1])
	assert.Equal(t, 10.0, got[2].Price)
	assert.Equal(t, 12.0, got[3].Price)
	assert.Equal(t, 11.0, got[4].Price)
}

func TestEarliestAdjustment(t *testing.T) {
	s := series(model.PricePoint{Time: date(2003, 12, 1), Close: 1190})

	start, adjusted := EarliestAdjustment(s, date(2000, 1, 1))
	assert.True(t, adjusted)
	assert.Equal(t, date(2003, 12, 1), start)

	start, adjusted = EarliestAdjustment(s, date(2010, 1, 1))
	assert.False(t, adjusted)
	assert.Equal(t, date(2010, 1, 1), start)
}

func TestMultiply_FallsBackToParity(t *testing.T) {
	a := []model.SamplePoint{
		{Time: date(2024, 1, 1), Price: 100, OK: true},
		{Time: date(2024, 2, 1), Price: 110, OK: true},
		{Time: date(2024, 3, 1)},
	}
	b := []model.SamplePoint{
		{Time: date(2024, 1, 1), Price: 1300, OK: true},
		{Time: date(2024, 2, 1)},
		{Time: date(2024, 3, 1), Price: 1350, OK: true},
	}
	got, missing, err := Multiply(a, b, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, missing)
	assert.Equal(t, 130000.0, got[0].Price)
	assert.Equal(t, 110.0, got[1].Price)
	assert.False(t, got[2].OK)

	_, _, err = Multiply(a, b[:1], 1)
	assert.Error(t, err)
}

func TestPrices_RejectsGapsAndNonPositive(t *testing.T) {
	_, err := Prices([]model.SamplePoint{{Time: date(2024, 1, 1)}})
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)

	_, err = Prices([]model.SamplePoint{{Time: date(2024, 1, 1), Price: 0, OK: true}})
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)

	p, err := Prices([]model.SamplePoint{{Price: 3, OK: true}, {Price: 4, OK: true}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, p)
}

func TestLastPrice(t *testing.T) {
	_, err := LastPrice(nil)
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)

	p, err := LastPrice([]model.SamplePoint{{Price: 3, OK: true}, {Price: 7, OK: true}})
	require.NoError(t, err)
	assert.Equal(t, 7.0, p)
}
