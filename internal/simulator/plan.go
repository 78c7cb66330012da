package simulator

import (
	"errors"
	"fmt"
	"log"
	"time"

	"DCASimulator/internal/calculator"
	"DCASimulator/internal/model"
)

// PriceProvider resolves a ticker to its price history and latest quote.
type PriceProvider interface {
	History(symbol string, from, to time.Time) (*model.PriceSeries, error)
	LatestPrice(symbol string) (float64, error)
}

// Plan is the aligned market data of one configuration. It is computed once
// and shared read-only by every run derived from it.
type Plan struct {
	Params          model.SimulationParams
	Timeline        model.Timeline
	Grid            []time.Time
	Samples         []model.SamplePoint // instrument price, times FX when cross-currency
	PurchaseDates   []time.Time
	PurchasePrices  []float64
	ConversionYears float64
	ExitPrice       float64
	CurrentPrice    float64
	Warnings        []model.Warning
}

// Engine runs simulations against a price provider.
type Engine struct {
	Provider PriceProvider
}

// NewEngine creates a new Engine.
func NewEngine(provider PriceProvider) *Engine {
	return &Engine{Provider: provider}
}

// Prepare validates p, loads the price history and aligns it onto the
// sampling grid. Configuration errors are returned before any fetch.
func (e *Engine) Prepare(p model.SimulationParams) (*Plan, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	end := calculator.DateOf(p.Maturity)
	requested := calculator.AddMonths(end, -calculator.YearsToMonths(p.TotalYears))

	series, err := e.Provider.History(p.Ticker, requested, end)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Ticker, err)
	}

	pl := &Plan{Params: p, ConversionYears: p.ConversionYears()}

	start, adjusted := calculator.EarliestAdjustment(series, requested)
	if adjusted {
		pl.warn(model.DataRangeAdjusted, "requested start %s precedes available data, starting from %s",
			requested.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	purchaseEnd := minTime(calculator.AddMonths(start, calculator.YearsToMonths(p.PurchaseYears)), end)
	holdingEnd := minTime(calculator.AddMonths(purchaseEnd, calculator.YearsToMonths(p.HoldingYears)), end)
	pl.Timeline = model.Timeline{
		RequestedStart: requested,
		Start:          start,
		PurchaseEnd:    purchaseEnd,
		HoldingEnd:     holdingEnd,
		End:            end,
	}

	pl.Grid = calculator.BuildGrid(start, end, p.Frequency)
	pl.PurchaseDates = calculator.PurchaseWindow(pl.Grid, purchaseEnd)
	if len(pl.Grid) == 0 || len(pl.PurchaseDates) == 0 {
		return nil, fmt.Errorf("%w: %s sampling yields %d samples and %d purchases between %s and %s",
			ErrIncompatibleConfiguration, p.Frequency, len(pl.Grid), len(pl.PurchaseDates),
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	native := calculator.Align(series, pl.Grid)
	pl.Samples = native
	var fxSamples []model.SamplePoint
	if p.CrossCurrency {
		fxSamples = e.alignFX(pl, requested, end)
		composite, missing, err := calculator.Multiply(native, fxSamples, 1)
		if err != nil {
			return nil, err
		}
		if missing > 0 {
			pl.warn(model.MissingExternalQuote, "%s: %d of %d samples valued at parity (rate 1)",
				p.FXTicker, missing, len(pl.Grid))
		}
		pl.Samples = composite
	}

	if pl.PurchasePrices, err = calculator.Prices(pl.Samples[:len(pl.PurchaseDates)]); err != nil {
		return nil, fmt.Errorf("purchase prices of %s: %w", p.Ticker, err)
	}
	if pl.ExitPrice, err = calculator.LastPrice(pl.Samples); err != nil {
		return nil, fmt.Errorf("exit price of %s: %w", p.Ticker, err)
	}
	pl.CurrentPrice = e.currentPrice(pl, native, fxSamples)

	return pl, nil
}

// alignFX aligns the exchange-rate history. A failed lookup leaves every
// sample empty so the composite falls back to parity.
func (e *Engine) alignFX(pl *Plan, from, to time.Time) []model.SamplePoint {
	fx, err := e.Provider.History(pl.Params.FXTicker, from, to)
	if err != nil {
		pl.warn(model.MissingExternalQuote, "exchange-rate history %s unavailable, valuing at parity: %v",
			pl.Params.FXTicker, err)
		return calculator.Align(nil, pl.Grid)
	}
	return calculator.Align(fx, pl.Grid)
}

// currentPrice values the instrument at its latest quote. Failed lookups fall
// back to the last sampled price and parity FX.
func (e *Engine) currentPrice(pl *Plan, native, fxSamples []model.SamplePoint) float64 {
	price, err := e.Provider.LatestPrice(pl.Params.Ticker)
	if err != nil {
		price = native[len(native)-1].Price
		pl.warn(model.MissingExternalQuote, "latest quote of %s unavailable, using last sampled price %.4f: %v",
			pl.Params.Ticker, price, err)
	}
	if !pl.Params.CrossCurrency {
		return price
	}
	rate, err := e.Provider.LatestPrice(pl.Params.FXTicker)
	if err != nil {
		rate = 1
		pl.warn(model.MissingExternalQuote, "latest exchange rate %s unavailable, valuing at parity: %v",
			pl.Params.FXTicker, err)
	}
	return price * rate
}

func (pl *Plan) warn(kind model.WarningKind, format string, args ...any) {
	w := model.Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	log.Printf("[WARN] %s", w)
	pl.Warnings = append(pl.Warnings, w)
}

// Run executes one simulation over the plan's data. It is a pure function of
// the plan and its arguments.
func (pl *Plan) Run(contribution, holdingRate, conversionRate float64) (*model.SimulationResult, error) {
	if !(contribution > 0) {
		return nil, fmt.Errorf("%w: contribution must be positive, got %v", ErrConfiguration, contribution)
	}
	acc, err := calculator.Accumulate(pl.PurchasePrices, contribution)
	if err != nil {
		return nil, err
	}
	g, err := calculator.Grow(acc.Units, holdingRate, conversionRate, pl.ConversionYears)
	if err != nil {
		if errors.Is(err, calculator.ErrNegativeConversion) {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return nil, err
	}
	finalValue, profit, err := calculator.Value(g.UnitsFinal, pl.ExitPrice, acc.Contributed)
	if err != nil {
		return nil, err
	}

	return &model.SimulationResult{
		Contribution:     contribution,
		HoldingRate:      holdingRate,
		ConversionRate:   conversionRate,
		PurchaseDates:    pl.PurchaseDates,
		PurchasePrices:   pl.PurchasePrices,
		EffectivePrices:  acc.EffectivePrices,
		TotalContributed: acc.Contributed,
		UnitsPurchased:   acc.Units,
		EffectivePrice:   acc.EffectivePrice,
		UnitsAfterHold:   g.UnitsAfterHold,
		UnitsFinal:       g.UnitsFinal,
		ConversionYears:  pl.ConversionYears,
		ExitPrice:        pl.ExitPrice,
		CurrentPrice:     pl.CurrentPrice,
		FinalValue:       finalValue,
		ProfitRatio:      profit,
		Timeline:         pl.Timeline,
		Warnings:         append([]model.Warning(nil), pl.Warnings...),
	}, nil
}

// Simulate prepares the data for p and runs it once with p's own rates.
func (e *Engine) Simulate(p model.SimulationParams) (*model.SimulationResult, error) {
	pl, err := e.Prepare(p)
	if err != nil {
		return nil, err
	}
	return pl.Run(p.Contribution, p.HoldingRate, p.ConversionRate)
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
