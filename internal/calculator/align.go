package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"DCASimulator/internal/model"
)

// Align maps series onto grid with last-observation-carried-forward. A grid
// date earlier than the first observation yields a sample with OK unset.
func Align(series *model.PriceSeries, grid []time.Time) []model.SamplePoint {
	out := make([]model.SamplePoint, len(grid))
	var pts []model.PricePoint
	if series != nil {
		pts = series.Points
	}
	for i, t := range grid {
		out[i].Time = t
		// first observation strictly after t, the one before it is the latest at or before t
		j := sort.Search(len(pts), func(k int) bool { return pts[k].Time.After(t) })
		if j > 0 {
			out[i].Price = pts[j-1].Close
			out[i].OK = true
		}
	}
	return out
}

// EarliestAdjustment reports whether start precedes the earliest available
// observation and, if so, returns the date the caller must start from instead.
func EarliestAdjustment(series *model.PriceSeries, start time.Time) (time.Time, bool) {
	if series == nil {
		return start, false
	}
	earliest := series.Earliest
	if earliest.IsZero() && len(series.Points) > 0 {
		earliest = series.Points[0].Time
	}
	if earliest.IsZero() || !start.Before(earliest) {
		return start, false
	}
	return earliest, true
}

// Multiply builds the composite series a×b sample by sample. Where b has no
// value the fallback rate is used instead; the number of such samples is returned.
func Multiply(a, b []model.SamplePoint, fallback float64) ([]model.SamplePoint, int, error) {
	if len(a) != len(b) {
		return nil, 0, fmt.Errorf("multiply: length mismatch %d != %d", len(a), len(b))
	}
	out := make([]model.SamplePoint, len(a))
	missing := 0
	for i := range a {
		out[i] = a[i]
		if !a[i].OK {
			continue
		}
		rate := b[i].Price
		if !b[i].OK {
			rate = fallback
			missing++
		}
		out[i].Price = a[i].Price * rate
	}
	return out, missing, nil
}

// Prices extracts the sample prices, failing on gaps and non-positive values.
func Prices(samples []model.SamplePoint) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if !s.OK {
			return nil, fmt.Errorf("no price on or before %s: %w", s.Time.Format("2006-01-02"), ErrDivisionDegeneracy)
		}
		if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
			return nil, fmt.Errorf("invalid price %v on %s: %w", s.Price, s.Time.Format("2006-01-02"), ErrDivisionDegeneracy)
		}
		out[i] = s.Price
	}
	return out, nil
}

// LastPrice returns the last aligned sample, used as the exit price.
func LastPrice(samples []model.SamplePoint) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("no samples: %w", ErrDivisionDegeneracy)
	}
	p, err := Prices(samples[len(samples)-1:])
	if err != nil {
		return 0, err
	}
	return p[0], nil
}
