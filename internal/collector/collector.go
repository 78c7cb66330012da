package collector

import (
	"fmt"
	"log"
	"sort"
	"time"

	"DCASimulator/internal/calculator"
	"DCASimulator/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	Bars       []model.OHLCV
	LatestErr  error
	HistoryErr error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ string, from, to time.Time) ([]model.OHLCV, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if m.Bars != nil {
		var out []model.OHLCV
		for _, b := range m.Bars {
			if !b.Time.After(to) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	return generateMockBars(m.Price, from, to), nil
}

func (m *MockFetcher) FetchLatestPrice(_ string) (float64, error) {
	if m.LatestErr != nil {
		return 0, m.LatestErr
	}
	return m.Price, nil
}

func generateMockBars(price float64, from, to time.Time) []model.OHLCV {
	var bars []model.OHLCV
	for d := calculator.DateOf(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000000,
		})
	}
	return bars
}

// Collector is the price provider: it fetches through a Fetcher and caches
// results with separate TTLs for history and latest quotes.
type Collector struct {
	Fetcher    Fetcher
	HistoryTTL time.Duration
	LatestTTL  time.Duration
	cache      *Cache
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, historyTTL, latestTTL time.Duration) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		HistoryTTL: historyTTL,
		LatestTTL:  latestTTL,
		cache:      NewCache(),
	}
}

// History returns the closing price series of symbol over [from, to]. The
// series' Earliest field is the first date the source could provide.
func (c *Collector) History(symbol string, from, to time.Time) (*model.PriceSeries, error) {
	key := fmt.Sprintf("history|%s|%s|%s", symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if v, ok := c.cache.Get(key); ok {
		return v.(*model.PriceSeries), nil
	}

	bars, err := c.Fetcher.FetchHistory(symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch history %s: no data between %s and %s",
			symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	series := model.ClosesFromBars(symbol, bars)
	log.Printf("[INFO] %s: fetched %d bars for %s (%s ~ %s)", c.Fetcher.Name(), len(bars), symbol,
		series.Earliest.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02"))
	c.cache.Set(key, series, c.HistoryTTL)
	return series, nil
}

// LatestPrice returns the most recent quote of symbol.
func (c *Collector) LatestPrice(symbol string) (float64, error) {
	key := "latest|" + symbol
	if v, ok := c.cache.Get(key); ok {
		return v.(float64), nil
	}
	price, err := c.Fetcher.FetchLatestPrice(symbol)
	if err != nil {
		return 0, fmt.Errorf("fetch latest price %s: %w", symbol, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("fetch latest price %s: invalid price %v", symbol, price)
	}
	c.cache.Set(key, price, c.LatestTTL)
	return price, nil
}

// Refresh drops all cached data so the next request goes to the source. It
// returns the number of entries dropped.
func (c *Collector) Refresh() int {
	n := c.cache.Clear()
	log.Printf("[INFO] price cache cleared (%d entries)", n)
	return n
}

// normalizeBars sorts bars by date and keeps the last bar of each calendar date.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		b.Time = calculator.DateOf(b.Time)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}
