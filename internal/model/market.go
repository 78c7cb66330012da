package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one closing price observation.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries holds the closing prices of one symbol, strictly increasing in time.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	Earliest  time.Time // earliest observation the source can provide
	FetchedAt time.Time
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Points) }

// SamplePoint is a price aligned onto a grid timestamp. OK is false when no
// observation exists at or before Time.
type SamplePoint struct {
	Time  time.Time
	Price float64
	OK    bool
}

// ClosesFromBars converts candlestick bars into a closing price series.
func ClosesFromBars(symbol string, bars []OHLCV) *PriceSeries {
	pts := make([]PricePoint, len(bars))
	for i, b := range bars {
		pts[i] = PricePoint{Time: b.Time, Close: b.Close}
	}
	s := &PriceSeries{Symbol: symbol, Points: pts, FetchedAt: time.Now()}
	if len(pts) > 0 {
		s.Earliest = pts[0].Time
	}
	return s
}
