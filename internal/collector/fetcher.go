package collector

import (
	"time"

	"DCASimulator/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns daily bars covering [from, to], or the closest
	// available subset when the source has no data that far back.
	FetchHistory(symbol string, from, to time.Time) ([]model.OHLCV, error)
	FetchLatestPrice(symbol string) (float64, error)
	Name() string
}

// tradingDate returns the calendar date of a bar stamped at unix second ts on
// an exchange in loc, as 00:00 UTC of that date.
func tradingDate(ts int64, loc *time.Location) time.Time {
	local := time.Unix(ts, 0).In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
