package simulator

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"DCASimulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	series       map[string]*model.PriceSeries
	latest       map[string]float64
	historyCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{series: map[string]*model.PriceSeries{}, latest: map[string]float64{}}
}

func (f *fakeProvider) History(symbol string, _, to time.Time) (*model.PriceSeries, error) {
	f.historyCalls++
	s, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	out := &model.PriceSeries{Symbol: symbol, Earliest: s.Earliest}
	for _, p := range s.Points {
		if !p.Time.After(to) {
			out.Points = append(out.Points, p)
		}
	}
	return out, nil
}

func (f *fakeProvider) LatestPrice(symbol string) (float64, error) {
	p, ok := f.latest[symbol]
	if !ok {
		return 0, errors.New("no quote")
	}
	return p, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daily builds a daily series from `from` to `to` with price(i) for the i-th day.
func daily(symbol string, from, to time.Time, price func(i int) float64) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: symbol, Earliest: from}
	for d, i := from, 0; !d.After(to); d, i = d.AddDate(0, 0, 1), i+1 {
		s.Points = append(s.Points, model.PricePoint{Time: d, Close: price(i)})
	}
	return s
}

func constant(v float64) func(int) float64 { return func(int) float64 { return v } }

func baseParams() model.SimulationParams {
	return model.SimulationParams{
		Ticker:        "USDKRW=X",
		TotalYears:    1,
		PurchaseYears: 1,
		HoldingYears:  0,
		Frequency:     model.MonthStart,
		Maturity:      day(2024, 7, 1),
		Contribution:  1_000_000,
		RiskDelta:     1,
	}
}

func TestSimulate_ConstantPriceEndToEnd(t *testing.T) {
	fp := newFakeProvider()
	fp.series["USDKRW=X"] = daily("USDKRW=X", day(2020, 1, 1), day(2024, 12, 31), constant(1300))
	fp.latest["USDKRW=X"] = 1300

	res, err := NewEngine(fp).Simulate(baseParams())
	require.NoError(t, err)

	assert.Equal(t, 12, res.PurchaseCount())
	assert.Equal(t, 12_000_000.0, res.TotalContributed)
	assert.InDelta(t, 9230.77, res.UnitsPurchased, 0.01)
	assert.InDelta(t, 1300, res.EffectivePrice, 1e-9)
	assert.Equal(t, res.UnitsPurchased, res.UnitsFinal)
	assert.Equal(t, 0.0, res.ConversionYears)
	assert.InDelta(t, 12_000_000, res.FinalValue, 1e-6)
	assert.InDelta(t, 0, res.ProfitRatio, 1e-12)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, day(2023, 7, 1), res.Timeline.Start)
	assert.Equal(t, day(2024, 7, 1), res.Timeline.PurchaseEnd)
	assert.Equal(t, day(2024, 7, 1), res.Timeline.End)
	assert.Equal(t, day(2023, 7, 1), res.PurchaseDates[0])
	assert.Equal(t, day(2024, 6, 1), res.PurchaseDates[11])
}

func TestSimulate_PhasedRates(t *testing.T) {
	fp := newFakeProvider()
	fp.series["X"] = daily("X", day(2010, 1, 1), day(2024, 12, 31), constant(100))
	fp.latest["X"] = 100

	p := baseParams()
	p.Ticker = "X"
	p.TotalYears, p.PurchaseYears, p.HoldingYears = 5, 2, 1
	p.HoldingRate, p.ConversionRate = 5, 3
	p.Contribution = 1000

	res, err := NewEngine(fp).Simulate(p)
	require.NoError(t, err)

	assert.Equal(t, 24, res.PurchaseCount())
	assert.InDelta(t, 240, res.UnitsPurchased, 1e-9)
	assert.InDelta(t, 252, res.UnitsAfterHold, 1e-9)
	assert.InDelta(t, 2.0, res.ConversionYears, 1e-12)
	assert.InDelta(t, 252*1.03*1.03, res.UnitsFinal, 1e-9)
	assert.InDelta(t, 252*1.03*1.03*100, res.FinalValue, 1e-6)
	assert.Equal(t, day(2019, 7, 1), res.Timeline.Start)
	assert.Equal(t, day(2021, 7, 1), res.Timeline.PurchaseEnd)
	assert.Equal(t, day(2022, 7, 1), res.Timeline.HoldingEnd)
}

func TestSimulate_PhasesFillingTotalPeriodExactly(t *testing.T) {
	periods := [][3]float64{{0.3, 0.1, 0.2}, {1.2, 0.9, 0.3}, {0.7, 0.4, 0.3}, {3.3, 3, 0.3}}
	for _, pr := range periods {
		fp := newFakeProvider()
		fp.series["X"] = daily("X", day(2015, 1, 1), day(2024, 12, 31), constant(100))
		fp.latest["X"] = 100

		p := baseParams()
		p.Ticker = "X"
		p.TotalYears, p.PurchaseYears, p.HoldingYears = pr[0], pr[1], pr[2]
		p.HoldingRate, p.ConversionRate = 2, 5

		res, err := NewEngine(fp).Simulate(p)
		require.NoError(t, err, "%v", pr)
		assert.Equal(t, 0.0, res.ConversionYears, "%v", pr)
		assert.InDelta(t, res.UnitsAfterHold, res.UnitsFinal, 1e-12, "%v", pr)
	}
}

func TestSimulate_ConfigurationRejectedBeforeFetch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SimulationParams)
	}{
		{"purchase plus holding exceeds total", func(p *model.SimulationParams) { p.PurchaseYears, p.HoldingYears = 0.8, 0.5 }},
		{"zero contribution", func(p *model.SimulationParams) { p.Contribution = 0 }},
		{"negative contribution", func(p *model.SimulationParams) { p.Contribution = -10 }},
		{"zero purchase period", func(p *model.SimulationParams) { p.PurchaseYears = 0 }},
		{"zero total period", func(p *model.SimulationParams) { p.TotalYears = 0 }},
		{"negative holding", func(p *model.SimulationParams) { p.HoldingYears = -1 }},
		{"unknown frequency", func(p *model.SimulationParams) { p.Frequency = "hourly" }},
		{"missing fx ticker", func(p *model.SimulationParams) { p.CrossCurrency = true }},
		{"missing maturity", func(p *model.SimulationParams) { p.Maturity = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider()
			p := baseParams()
			tt.mutate(&p)

			_, err := NewEngine(fp).Simulate(p)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Equal(t, 0, fp.historyCalls, "no price data may be requested")
		})
	}
}

func TestSimulate_StartAdjustedToEarliestData(t *testing.T) {
	fp := newFakeProvider()
	fp.series["USDKRW=X"] = daily("USDKRW=X", day(2003, 12, 1), day(2006, 12, 31), constant(1200))
	fp.latest["USDKRW=X"] = 1200

	p := baseParams()
	p.Maturity = day(2005, 1, 1)
	p.TotalYears, p.PurchaseYears = 3, 1

	res, err := NewEngine(fp).Simulate(p)
	require.NoError(t, err)

	assert.Equal(t, day(2002, 1, 1), res.Timeline.RequestedStart)
	assert.Equal(t, day(2003, 12, 1), res.Timeline.Start)
	assert.Equal(t, day(2004, 12, 1), res.Timeline.PurchaseEnd)
	assert.Equal(t, 12, res.PurchaseCount())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, model.DataRangeAdjusted, res.Warnings[0].Kind)
}

func TestSimulate_IncompatibleCadence(t *testing.T) {
	fp := newFakeProvider()
	fp.series["USDKRW=X"] = daily("USDKRW=X", day(2020, 1, 1), day(2024, 12, 31), constant(1300))

	p := baseParams()
	p.TotalYears, p.PurchaseYears = 1.0/52, 1.0/52

	_, err := NewEngine(fp).Simulate(p)
	assert.ErrorIs(t, err, ErrIncompatibleConfiguration)
	assert.NotErrorIs(t, err, ErrConfiguration)
}

func TestSimulate_NonPositivePriceIsDegenerate(t *testing.T) {
	fp := newFakeProvider()
	fp.series["BAD"] = daily("BAD", day(2023, 1, 1), day(2024, 12, 31), func(i int) float64 {
		if i > 200 && i < 260 {
			return 0
		}
		return 10
	})

	p := baseParams()
	p.Ticker = "BAD"
	_, err := NewEngine(fp).Simulate(p)
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)
}

func TestSimulate_CrossCurrency(t *testing.T) {
	fp := newFakeProvider()
	fp.series["SPY"] = daily("SPY", day(2020, 1, 1), day(2024, 12, 31), constant(100))
	fp.series["USDKRW=X"] = daily("USDKRW=X", day(2020, 1, 1), day(2024, 12, 31), constant(1300))
	fp.latest["SPY"] = 110
	fp.latest["USDKRW=X"] = 1400

	p := baseParams()
	p.Ticker, p.CrossCurrency, p.FXTicker = "SPY", true, "USDKRW=X"

	res, err := NewEngine(fp).Simulate(p)
	require.NoError(t, err)
	assert.InDelta(t, 130_000, res.EffectivePrice, 1e-6)
	assert.InDelta(t, 130_000, res.ExitPrice, 1e-9)
	assert.InDelta(t, 110*1400, res.CurrentPrice, 1e-9)
	assert.Empty(t, res.Warnings)
}

func TestSimulate_CrossCurrencyFallsBackToParity(t *testing.T) {
	fp := newFakeProvider()
	fp.series["SPY"] = daily("SPY", day(2020, 1, 1), day(2024, 12, 31), constant(100))
	fp.latest["SPY"] = 100

	p := baseParams()
	p.Ticker, p.CrossCurrency, p.FXTicker = "SPY", true, "USDKRW=X"

	res, err := NewEngine(fp).Simulate(p)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.ExitPrice, 1e-9)
	assert.InDelta(t, 100, res.CurrentPrice, 1e-9)

	var kinds []model.WarningKind
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, model.MissingExternalQuote)
	assert.GreaterOrEqual(t, len(res.Warnings), 2, "history and latest-rate fallbacks are both reported")
}

func TestSimulate_MissingLatestQuoteIsFlagged(t *testing.T) {
	fp := newFakeProvider()
	fp.series["USDKRW=X"] = daily("USDKRW=X", day(2020, 1, 1), day(2024, 12, 31), constant(1300))

	res, err := NewEngine(fp).Simulate(baseParams())
	require.NoError(t, err)
	assert.Equal(t, 1300.0, res.CurrentPrice)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, model.MissingExternalQuote, res.Warnings[0].Kind)
}

func TestScenarios_ShareDataAndOrderOutcomes(t *testing.T) {
	fp := newFakeProvider()
	fp.series["X"] = daily("X", day(2010, 1, 1), day(2024, 12, 31), func(i int) float64 { return 100 + float64(i%90) })
	fp.latest["X"] = 120

	p := baseParams()
	p.Ticker = "X"
	p.TotalYears, p.PurchaseYears, p.HoldingYears = 10, 3, 2
	p.HoldingRate, p.ConversionRate, p.RiskDelta = 4, 3, 1.5

	set, err := NewEngine(fp).Scenarios(p)
	require.NoError(t, err)
	assert.Equal(t, 1, fp.historyCalls, "price data is aligned once for all scenarios")

	assert.Greater(t, set.Optimistic.FinalValue, set.Base.FinalValue)
	assert.Greater(t, set.Base.FinalValue, set.Pessimistic.FinalValue)
	assert.Equal(t, set.Base.UnitsPurchased, set.Optimistic.UnitsPurchased)
	assert.Equal(t, set.Base.UnitsPurchased, set.Pessimistic.UnitsPurchased)
	assert.Equal(t, 5.5, set.Optimistic.HoldingRate)
	assert.Equal(t, 1.5, set.Pessimistic.ConversionRate)
	assert.Same(t, &set.Base.PurchasePrices[0], &set.Pessimistic.PurchasePrices[0])
}

func TestScenarios_PropagatesFatalError(t *testing.T) {
	fp := newFakeProvider()
	fp.series["X"] = daily("X", day(2010, 1, 1), day(2024, 12, 31), constant(10))

	p := baseParams()
	p.Ticker = "X"
	p.TotalYears, p.PurchaseYears, p.HoldingYears = 3, 1, 0.5
	p.ConversionRate, p.RiskDelta = -50, 60

	_, err := NewEngine(fp).Scenarios(p)
	assert.ErrorIs(t, err, ErrDivisionDegeneracy)
	assert.ErrorContains(t, err, "pessimistic")
}

func TestMergeWarnings(t *testing.T) {
	a := model.Warning{Kind: model.DataRangeAdjusted, Message: "a"}
	b := model.Warning{Kind: model.MissingExternalQuote, Message: "b"}
	assert.Equal(t, []model.Warning{a, b}, MergeWarnings([]model.Warning{a}, []model.Warning{b, a}))
}
